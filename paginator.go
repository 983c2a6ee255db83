package invoicer

import "log/slog"

// Page is one page of the current assignment: a contiguous slice of the
// invoice items starting at Offset.
type Page struct {
	Index  int
	Offset int
	Count  int
	First  bool
	Last   bool
	// Oversized is set when a single item overflowed the page on its own.
	// The item is kept there and rendered clipped.
	Oversized bool
}

// Paginator owns the page assignment of one document: how many items each
// page holds. It starts with every item on one page and only ever moves
// items forward, one per overflow event, so the page count never shrinks.
//
// Each page has a [Probe]. Probes post overflow events to the paginator's
// queue, and [Paginator.Drain] applies them in order. The paginator is the
// only mutator of the assignment and is not safe for concurrent use.
type Paginator struct {
	counts    []int
	oversized []bool
	probes    []*Probe
	queue     []int
	log       *slog.Logger
}

// NewPaginator returns a paginator for n items, all on the first page.
func NewPaginator(n int, log *slog.Logger) *Paginator {
	if n < 0 {
		n = 0
	}
	if log == nil {
		log = slog.Default()
	}
	p := &Paginator{log: log}
	p.addPage(n)
	return p
}

func (p *Paginator) addPage(count int) {
	i := len(p.counts)
	p.counts = append(p.counts, count)
	p.oversized = append(p.oversized, false)
	p.probes = append(p.probes, NewProbe(func() { p.Post(i) }))
}

// Len returns the number of pages.
func (p *Paginator) Len() int {
	return len(p.counts)
}

// Total returns the number of items across all pages.
func (p *Paginator) Total() int {
	n := 0
	for _, c := range p.counts {
		n += c
	}
	return n
}

// Assignment returns a copy of the per-page item counts.
func (p *Paginator) Assignment() []int {
	out := make([]int, len(p.counts))
	copy(out, p.counts)
	return out
}

// Probe returns the probe attached to page i.
func (p *Paginator) Probe(i int) *Probe {
	return p.probes[i]
}

// Post queues an overflow event for page i.
func (p *Paginator) Post(i int) {
	p.queue = append(p.queue, i)
}

// Pending reports how many events are queued.
func (p *Paginator) Pending() int {
	return len(p.queue)
}

// Drain applies every queued event in posting order and returns the pages
// whose overflow actually moved an item.
func (p *Paginator) Drain() []int {
	applied := []int{}
	for len(p.queue) > 0 {
		i := p.queue[0]
		p.queue = p.queue[1:]
		if p.Overflow(i) {
			applied = append(applied, i)
		}
	}
	p.queue = nil
	return applied
}

// Overflow moves the last item of page i to page i+1, creating that page if
// needed. It reports whether an item was moved. Events for unknown or empty
// pages are ignored, and a page is never emptied below one item: a lone
// item that does not fit marks the page oversized instead. The mark only
// holds while the page's count is unchanged.
func (p *Paginator) Overflow(i int) bool {
	if i < 0 || i >= len(p.counts) {
		p.log.Warn("overflow for unknown page ignored", "page", i, "pages", len(p.counts))
		return false
	}
	switch p.counts[i] {
	case 0:
		return false
	case 1:
		if !p.oversized[i] {
			p.oversized[i] = true
			p.log.Warn("line item taller than a page, rendering clipped", "page", i)
		}
		return false
	}

	p.counts[i]--
	p.oversized[i] = false
	if i+1 == len(p.counts) {
		p.addPage(0)
		// The overflowing page is no longer the last one.
		p.probes[i].Reset()
	}
	p.counts[i+1]++
	p.oversized[i+1] = false
	p.log.Debug("item moved forward", "from", i, "to", i+1, "assignment", p.counts)
	return true
}

// Pages derives the page slices from the assignment by prefix sums.
func (p *Paginator) Pages() []Page {
	pages := make([]Page, len(p.counts))
	offset := 0
	for i, c := range p.counts {
		pages[i] = Page{
			Index:     i,
			Offset:    offset,
			Count:     c,
			First:     i == 0,
			Last:      i == len(p.counts)-1,
			Oversized: p.oversized[i],
		}
		offset += c
	}
	return pages
}

// Items returns the slice of items shown on pg.
func (pg Page) Items(items []LineItem) []LineItem {
	end := pg.Offset + pg.Count
	if end > len(items) {
		end = len(items)
	}
	if pg.Offset >= end {
		return nil
	}
	return items[pg.Offset:end]
}
