package invoicer

import "fmt"

// PageSize represents paper dimensions in centimeters.
type PageSize struct {
	Width  float64 // Width in centimeters.
	Height float64 // Height in centimeters.
}

// A4 is the only paper format invoices are laid out for.
var A4 = PageSize{Width: 21.0, Height: 29.7}

// Margin represents page margins in centimeters.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// UniformMargin returns a Margin with the same value on all sides.
func UniformMargin(cm float64) Margin {
	return Margin{Top: cm, Right: cm, Bottom: cm, Left: cm}
}

// PageConfig controls the page frame every invoice page is drawn in.
//
// The margins are applied inside each page box rather than by the PDF
// printer, so that the measured page and the printed sheet are the same
// rectangle. A nil PageConfig means [DefaultPageConfig]; a zero Margin
// means 1 cm on all sides.
type PageConfig struct {
	// Margin specifies page margins in centimeters. Defaults to 1 cm on all sides.
	Margin Margin

	// PrintBackground enables printing of background colors and images.
	// It is on in DefaultPageConfig.
	PrintBackground bool
}

// DefaultPageConfig returns a PageConfig with sensible defaults.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Margin:          UniformMargin(1.0),
		PrintBackground: true,
	}
}

// resolved returns a PageConfig with all zero values replaced by defaults.
func (p *PageConfig) resolved() PageConfig {
	d := DefaultPageConfig()
	if p == nil {
		return d
	}
	r := *p
	if r.Margin == (Margin{}) {
		r.Margin = d.Margin
	}
	return r
}

// cmToInches converts centimeters to inches.
func cmToInches(cm float64) float64 {
	return cm / 2.54
}

// paperDimensions returns the A4 width and height in inches.
func paperDimensions() (width, height float64) {
	return cmToInches(A4.Width), cmToInches(A4.Height)
}

// padding returns the margins as a CSS padding shorthand.
func (m Margin) padding() string {
	return fmt.Sprintf("%gcm %gcm %gcm %gcm", m.Top, m.Right, m.Bottom, m.Left)
}
