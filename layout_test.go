package invoicer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(DefaultFormatter(), ThemeLight, nil)
	require.NoError(t, err)
	return r
}

func runLayout(t *testing.T, inv *Invoice, s Surface, cfg LayoutConfig) (*Document, []Pass, error) {
	t.Helper()
	var passes []Pass
	cfg.Trace = func(p Pass) { passes = append(passes, p) }
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	doc, err := NewLayout(inv, newTestRenderer(t), cfg).Run(context.Background(), s)
	return doc, passes, err
}

func TestLayout_TenItemsPageFitsNine(t *testing.T) {
	m := defaultBoxModel()
	m.Row = 70
	m.SubLine = 0
	m.FootRow = 0

	doc, passes, err := runLayout(t, sampleInvoice(10), newFakeSurface(m), LayoutConfig{})
	require.NoError(t, err)

	assert.Equal(t, []Pass{
		{Number: 1, Assignment: []int{10}, Overflowed: []int{0}},
		{Number: 2, Assignment: []int{9, 1}, Overflowed: []int{}},
	}, passes)
	assert.Equal(t, []int{9, 1}, doc.Assignment)
	assert.Equal(t, 2, doc.Passes)
}

func TestLayout_Trace(t *testing.T) {
	_, passes, err := runLayout(t, sampleInvoice(25), newFakeSurface(defaultBoxModel()), LayoutConfig{})
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.AssertJson(t, "layout_trace", passes)
}

func TestLayout_FixpointIsStable(t *testing.T) {
	inv := sampleInvoice(25)
	surface := newFakeSurface(defaultBoxModel())
	layout := NewLayout(inv, newTestRenderer(t), LayoutConfig{Logger: quietLogger()})

	first, err := layout.Run(context.Background(), surface)
	require.NoError(t, err)

	again, err := layout.Run(context.Background(), surface)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Passes, "a settled layout needs a single confirming pass")
	assert.Equal(t, first.Assignment, again.Assignment)
	assert.Equal(t, first.HTML, again.HTML)
}

func TestLayout_ConservesItems(t *testing.T) {
	for _, n := range []int{0, 1, 2, 9, 10, 40, 120} {
		doc, passes, err := runLayout(t, sampleInvoice(n), newFakeSurface(defaultBoxModel()), LayoutConfig{})
		require.NoError(t, err, "n=%d", n)
		for _, p := range passes {
			assert.Equal(t, n, sum(p.Assignment), "n=%d pass=%d", n, p.Number)
		}
		assert.Equal(t, n, sum(doc.Assignment))
	}
}

func TestLayout_ReturnsHTMLOfFinalPass(t *testing.T) {
	surface := newFakeSurface(defaultBoxModel())
	doc, _, err := runLayout(t, sampleInvoice(30), surface, LayoutConfig{})
	require.NoError(t, err)

	assert.Equal(t, doc.Passes, surface.loads)
	assert.Equal(t, surface.loaded[len(surface.loaded)-1], doc.HTML)
}

func TestLayout_OversizedItemsTerminate(t *testing.T) {
	m := defaultBoxModel()
	m.Row = 2000

	doc, _, err := runLayout(t, sampleInvoice(3), newFakeSurface(m), LayoutConfig{})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 1, 1}, doc.Assignment)
	for _, pg := range doc.Pages {
		assert.True(t, pg.Oversized, "page %d", pg.Index)
	}
}

func TestLayout_OversizedItemBehindFillingPage(t *testing.T) {
	inv := sampleInvoice(0)
	for i := 1; i <= 32; i++ {
		inv.Items = append(inv.Items, LineItem{ID: int64(i), Description: fmt.Sprintf("Item %d", i), Units: 1, Price: 100, VAT: 0.19})
	}
	inv.Items = append(inv.Items, LineItem{
		ID:          99,
		Description: "Archive migration" + strings.Repeat("\nbatch", 60),
		Units:       1,
		Price:       100,
		VAT:         0.19,
	})

	doc, _, err := runLayout(t, inv, newFakeSurface(defaultBoxModel()), LayoutConfig{})
	require.NoError(t, err)
	assert.Equal(t, 33, sum(doc.Assignment))

	last := doc.Pages[len(doc.Pages)-1]
	require.Len(t, last.Items(inv.Items), 1)
	assert.Equal(t, int64(99), last.Items(inv.Items)[0].ID)
	assert.True(t, last.Oversized)
	for _, pg := range doc.Pages[:len(doc.Pages)-1] {
		assert.False(t, pg.Oversized, "page %d holds %v", pg.Index, pg.Items(inv.Items))
	}
}

func TestLayout_MaxPasses(t *testing.T) {
	_, passes, err := runLayout(t, sampleInvoice(25), newFakeSurface(defaultBoxModel()), LayoutConfig{MaxPasses: 3})
	require.ErrorIs(t, err, ErrNoFixpoint)
	assert.Len(t, passes, 3)
}

type extraPageSurface struct{ *fakeSurface }

func (s extraPageSurface) Measure(ctx context.Context) ([]Metrics, error) {
	m, err := s.fakeSurface.Measure(ctx)
	return append(m, Metrics{}), err
}

func TestLayout_PageMismatch(t *testing.T) {
	s := extraPageSurface{newFakeSurface(defaultBoxModel())}
	_, _, err := runLayout(t, sampleInvoice(3), s, LayoutConfig{})
	require.ErrorIs(t, err, ErrPageMismatch)
}

func TestLayout_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	layout := NewLayout(sampleInvoice(3), newTestRenderer(t), LayoutConfig{Logger: quietLogger()})
	_, err := layout.Run(ctx, newFakeSurface(defaultBoxModel()))
	require.ErrorIs(t, err, context.Canceled)
}
