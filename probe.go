package invoicer

// Metrics is what a layout surface reports for one page after a layout
// commit, in CSS pixels.
type Metrics struct {
	// Available is the height the page's content area is given by its
	// layout parent.
	Available float64 `json:"available"`
	// Content is the scrollable height of the content actually rendered.
	Content float64 `json:"content"`
}

// ProbeState is the phase of a [Probe].
type ProbeState int

const (
	// Measuring waits for a commit to record the page budget.
	Measuring ProbeState = iota
	// Constrained holds a budget and checks content against it.
	Constrained
)

func (s ProbeState) String() string {
	switch s {
	case Measuring:
		return "measuring"
	case Constrained:
		return "constrained"
	default:
		return "unknown"
	}
}

// Signal is the outcome of a single [Probe.Commit].
type Signal int

const (
	// Measured means the commit only recorded a budget.
	Measured Signal = iota
	// Fits means the content is within the budget.
	Fits
	// Overflowed means the content exceeded the budget and the overflow
	// callback has been invoked.
	Overflowed
)

func (s Signal) String() string {
	switch s {
	case Measured:
		return "measured"
	case Fits:
		return "fits"
	case Overflowed:
		return "overflowed"
	default:
		return "unknown"
	}
}

// Probe detects whether a page's content outgrows the height available to
// it. It is a two-phase state machine driven by layout commits: the first
// commit records the budget, later commits compare the content against it.
// The callback fires at most once per overflow; the budget is then dropped
// so the next cycle starts from a fresh measurement.
//
// A Probe is not safe for concurrent use. It lives on the pagination loop.
type Probe struct {
	state      ProbeState
	budget     float64
	onOverflow func()
}

// NewProbe returns a Probe in the [Measuring] state.
func NewProbe(onOverflow func()) *Probe {
	return &Probe{onOverflow: onOverflow}
}

// State reports the current phase.
func (p *Probe) State() ProbeState {
	return p.state
}

// Budget returns the recorded page budget. ok is false while measuring.
func (p *Probe) Budget() (budget float64, ok bool) {
	return p.budget, p.state == Constrained
}

// Commit feeds the metrics of one layout commit to the probe.
func (p *Probe) Commit(m Metrics) Signal {
	if p.state == Measuring {
		p.budget = m.Available
		p.state = Constrained
		return Measured
	}

	if m.Content <= p.budget {
		return Fits
	}

	p.Reset()
	if p.onOverflow != nil {
		p.onOverflow()
	}
	return Overflowed
}

// Reset discards the budget and returns to [Measuring].
func (p *Probe) Reset() {
	p.state = Measuring
	p.budget = 0
}
