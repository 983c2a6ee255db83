package invoicer

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sum(counts []int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

func TestPaginator_Initial(t *testing.T) {
	p := NewPaginator(10, quietLogger())
	assert.Equal(t, []int{10}, p.Assignment())

	pages := p.Pages()
	require.Len(t, pages, 1)
	assert.True(t, pages[0].First)
	assert.True(t, pages[0].Last)
	assert.Equal(t, 10, pages[0].Count)
}

func TestPaginator_Empty(t *testing.T) {
	p := NewPaginator(0, quietLogger())
	assert.Equal(t, []int{0}, p.Assignment())
	assert.False(t, p.Overflow(0))
	assert.Equal(t, []int{0}, p.Assignment())
}

func TestPaginator_OverflowMovesOneItemForward(t *testing.T) {
	p := NewPaginator(10, quietLogger())

	require.True(t, p.Overflow(0))
	assert.Equal(t, []int{9, 1}, p.Assignment())

	require.True(t, p.Overflow(0))
	assert.Equal(t, []int{8, 2}, p.Assignment())

	require.True(t, p.Overflow(1))
	assert.Equal(t, []int{8, 1, 1}, p.Assignment())
}

func TestPaginator_Guards(t *testing.T) {
	p := NewPaginator(2, quietLogger())
	assert.False(t, p.Overflow(-1))
	assert.False(t, p.Overflow(5))

	require.True(t, p.Overflow(0))
	// A lone item is kept and the page is marked oversized.
	assert.False(t, p.Overflow(0))
	assert.Equal(t, []int{1, 1}, p.Assignment())
	assert.True(t, p.Pages()[0].Oversized)
	assert.False(t, p.Pages()[1].Oversized)
}

func TestPaginator_OversizedClearedWhenCountChanges(t *testing.T) {
	p := NewPaginator(3, quietLogger())
	require.True(t, p.Overflow(0))
	assert.False(t, p.Overflow(1))
	require.True(t, p.Pages()[1].Oversized)

	// Page 0 pushes another item behind the lone one.
	require.True(t, p.Overflow(0))
	assert.Equal(t, []int{1, 2}, p.Assignment())
	assert.False(t, p.Pages()[1].Oversized)

	// The tall item moves on and takes the mark with it once it
	// overflows alone again.
	require.True(t, p.Overflow(1))
	assert.False(t, p.Overflow(2))
	assert.Equal(t, []int{1, 1, 1}, p.Assignment())
	pages := p.Pages()
	assert.False(t, pages[1].Oversized)
	assert.True(t, pages[2].Oversized)
}

func TestPaginator_PagesPrefixSums(t *testing.T) {
	p := NewPaginator(7, quietLogger())
	for _, i := range []int{0, 0, 0, 1, 0} {
		p.Overflow(i)
	}
	require.Equal(t, []int{3, 3, 1}, p.Assignment())

	pages := p.Pages()
	offsets := []int{0, 3, 6}
	for i, pg := range pages {
		assert.Equal(t, i, pg.Index)
		assert.Equal(t, offsets[i], pg.Offset)
		assert.Equal(t, i == 0, pg.First)
		assert.Equal(t, i == 2, pg.Last)
	}

	items := sampleInvoice(7).Items
	assert.Equal(t, items[3:6], pages[1].Items(items))
	assert.Equal(t, items[6:], pages[2].Items(items))
}

func TestPaginator_ProbesPostToQueue(t *testing.T) {
	p := NewPaginator(5, quietLogger())
	probe := p.Probe(0)
	probe.Commit(Metrics{Available: 100})
	probe.Commit(Metrics{Available: 100, Content: 200})

	assert.Equal(t, 1, p.Pending())
	assert.Equal(t, []int{0}, p.Drain())
	assert.Zero(t, p.Pending())
	assert.Equal(t, []int{4, 1}, p.Assignment())
	assert.Equal(t, Measuring, p.Probe(1).State())
}

func TestPaginator_DrainInPostingOrder(t *testing.T) {
	p := NewPaginator(6, quietLogger())
	p.Overflow(0)
	p.Overflow(0)
	// [4, 2]: page 1 overflows first, then page 0.
	p.Post(1)
	p.Post(0)
	assert.Equal(t, []int{1, 0}, p.Drain())
	assert.Equal(t, []int{3, 2, 1}, p.Assignment())
}

func TestPaginator_ConservationProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n <= 40; n++ {
		p := NewPaginator(n, quietLogger())
		for step := 0; step < 200; step++ {
			p.Post(rng.Intn(p.Len() + 1))
			if rng.Intn(3) == 0 {
				p.Drain()
			}
			counts := p.Assignment()
			require.Equal(t, n, sum(counts), "items conserved (n=%d step=%d)", n, step)
			for i, c := range counts {
				require.GreaterOrEqual(t, c, 0, "page %d negative", i)
			}
		}
		p.Drain()
		assert.Equal(t, n, p.Total())
	}
}

func TestPaginator_NeverMergesPages(t *testing.T) {
	p := NewPaginator(4, quietLogger())
	p.Overflow(0)
	p.Overflow(1)
	before := p.Len()
	for i := 0; i < 10; i++ {
		p.Overflow(i % 3)
		assert.GreaterOrEqual(t, p.Len(), before)
		before = p.Len()
	}
}
