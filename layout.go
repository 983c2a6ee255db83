package invoicer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
)

// Surface is a layout engine that can display a rendered document and
// report per-page [Metrics] once layout has been committed.
//
// Measure must return one entry per rendered page, in document order.
type Surface interface {
	Load(ctx context.Context, html string) error
	Measure(ctx context.Context) ([]Metrics, error)
}

// Pass describes one render/measure cycle of a [Layout].
type Pass struct {
	Number int `json:"pass"`
	// Assignment is the page assignment that was rendered in this pass.
	Assignment []int `json:"assignment"`
	// Overflowed lists the pages that pushed an item forward.
	Overflowed []int `json:"overflowed"`
}

// Document is a paginated invoice at fixpoint.
type Document struct {
	HTML       string
	Pages      []Page
	Assignment []int
	Passes     int
}

// LayoutConfig controls a [Layout]. The zero value is usable.
type LayoutConfig struct {
	// MaxPasses bounds the number of render/measure cycles. Zero selects
	// 4*items + 8.
	MaxPasses int

	// Trace, when set, is called after every pass.
	Trace func(Pass)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Layout drives the pagination of one invoice against a [Surface] until no
// page overflows.
type Layout struct {
	inv       *Invoice
	renderer  *Renderer
	pag       *Paginator
	maxPasses int
	trace     func(Pass)
	log       *slog.Logger
}

// NewLayout prepares the pagination of inv, rendered with r.
func NewLayout(inv *Invoice, r *Renderer, cfg LayoutConfig) *Layout {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("invoice", inv.Number)

	maxPasses := cfg.MaxPasses
	if maxPasses <= 0 {
		maxPasses = 4*len(inv.Items) + 8
	}
	return &Layout{
		inv:       inv,
		renderer:  r,
		pag:       NewPaginator(len(inv.Items), log),
		maxPasses: maxPasses,
		trace:     cfg.Trace,
		log:       log,
	}
}

// Paginator exposes the underlying page assignment.
func (l *Layout) Paginator() *Paginator {
	return l.pag
}

// Run renders, loads and measures the document repeatedly, applying the
// overflow events of each pass, until a pass moves no item. The returned
// document holds the HTML of that final pass.
func (l *Layout) Run(ctx context.Context, s Surface) (*Document, error) {
	for pass := 1; ; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pass > l.maxPasses {
			return nil, fmt.Errorf("%w: %d passes, assignment %v", ErrNoFixpoint, l.maxPasses, l.pag.Assignment())
		}

		pages := l.pag.Pages()
		var buf bytes.Buffer
		if err := l.renderer.Render(&buf, l.inv, pages); err != nil {
			return nil, err
		}
		html := buf.String()

		if err := s.Load(ctx, html); err != nil {
			return nil, fmt.Errorf("invoicer: loading pass %d: %w", pass, err)
		}
		metrics, err := s.Measure(ctx)
		if err != nil {
			return nil, fmt.Errorf("invoicer: measuring pass %d: %w", pass, err)
		}
		if len(metrics) != len(pages) {
			return nil, fmt.Errorf("%w: rendered %d, measured %d", ErrPageMismatch, len(pages), len(metrics))
		}

		assignment := l.pag.Assignment()
		for i, m := range metrics {
			probe := l.pag.Probe(i)
			// The page frame does not depend on the probe state, so the
			// constrained commit reuses the layout that was just measured.
			if probe.Commit(m) == Measured {
				probe.Commit(m)
			}
		}
		moved := l.pag.Drain()

		l.log.Debug("pagination pass", "pass", pass, "assignment", assignment, "overflowed", moved)
		if l.trace != nil {
			l.trace(Pass{Number: pass, Assignment: assignment, Overflowed: moved})
		}

		if len(moved) == 0 {
			l.log.Info("pagination settled", "pass", pass, "pages", len(pages))
			return &Document{
				HTML:       html,
				Pages:      l.pag.Pages(),
				Assignment: assignment,
				Passes:     pass,
			}, nil
		}
	}
}
