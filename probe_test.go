package invoicer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbe_MeasuresBeforeChecking(t *testing.T) {
	fired := 0
	p := NewProbe(func() { fired++ })
	assert.Equal(t, Measuring, p.State())

	// Content far above the budget: the first commit only measures.
	got := p.Commit(Metrics{Available: 600, Content: 5000})
	assert.Equal(t, Measured, got)
	assert.Equal(t, Constrained, p.State())
	assert.Zero(t, fired, "never fires for an unmeasured container")

	budget, ok := p.Budget()
	assert.True(t, ok)
	assert.Equal(t, 600.0, budget)
}

func TestProbe_FitsStaysConstrained(t *testing.T) {
	fired := 0
	p := NewProbe(func() { fired++ })
	p.Commit(Metrics{Available: 600})

	for i := 0; i < 3; i++ {
		assert.Equal(t, Fits, p.Commit(Metrics{Available: 600, Content: 600}))
	}
	assert.Equal(t, Constrained, p.State())
	assert.Zero(t, fired)
}

func TestProbe_OverflowFiresOnceAndRemeasures(t *testing.T) {
	fired := 0
	p := NewProbe(func() { fired++ })
	p.Commit(Metrics{Available: 600})

	assert.Equal(t, Overflowed, p.Commit(Metrics{Available: 600, Content: 601}))
	assert.Equal(t, 1, fired)
	assert.Equal(t, Measuring, p.State())
	_, ok := p.Budget()
	assert.False(t, ok, "stale budget must be discarded")

	// The next commit takes a fresh budget instead of firing again.
	assert.Equal(t, Measured, p.Commit(Metrics{Available: 700, Content: 650}))
	assert.Equal(t, 1, fired)
	assert.Equal(t, Fits, p.Commit(Metrics{Available: 700, Content: 650}))
}

func TestProbe_NilCallback(t *testing.T) {
	p := NewProbe(nil)
	p.Commit(Metrics{Available: 10})
	assert.Equal(t, Overflowed, p.Commit(Metrics{Content: 20}))
}

func TestProbe_Reset(t *testing.T) {
	p := NewProbe(nil)
	p.Commit(Metrics{Available: 10})
	p.Reset()
	assert.Equal(t, Measuring, p.State())
}

func TestProbeState_String(t *testing.T) {
	assert.Equal(t, "measuring", Measuring.String())
	assert.Equal(t, "constrained", Constrained.String())
	assert.Equal(t, "overflowed", Overflowed.String())
	assert.Equal(t, "fits", Fits.String())
	assert.Equal(t, "measured", Measured.String())
}
