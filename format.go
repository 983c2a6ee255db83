package invoicer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders money amounts and dates for one locale and currency.
// It is passed explicitly to the [Renderer]; nothing in the package keeps
// a global formatter.
type Formatter struct {
	// Locale selects digit grouping and the decimal separator.
	Locale language.Tag

	// Currency is the unit of every amount on the invoice.
	Currency currency.Unit

	// FractionDigits overrides the number of decimals shown. Zero keeps
	// the currency's standard scale.
	FractionDigits int

	// DateLayout is a time.Format layout for the issue date.
	// Defaults to "2006-01-02".
	DateLayout string
}

// DefaultFormatter formats euros in English.
func DefaultFormatter() Formatter {
	return Formatter{
		Locale:     language.English,
		Currency:   currency.EUR,
		DateLayout: "2006-01-02",
	}
}

func (f Formatter) resolved() Formatter {
	d := DefaultFormatter()
	if f.Currency == (currency.Unit{}) {
		f.Currency = d.Currency
	}
	if f.DateLayout == "" {
		f.DateLayout = d.DateLayout
	}
	return f
}

// scale returns how many minor-unit decimals the currency has.
func (f Formatter) scale() int {
	scale, _ := currency.Standard.Rounding(f.Currency)
	return scale
}

// Money formats an amount given in minor units, e.g. 4456 as "€ 44.56".
// The amount is scaled as a decimal, so every int64 prints exactly.
func (f Formatter) Money(minor int64) string {
	f = f.resolved()
	digits := f.scale()
	if f.FractionDigits > 0 {
		digits = f.FractionDigits
	}
	amount := decimal.New(minor, -int32(f.scale())).Round(int32(digits))
	p := message.NewPrinter(f.Locale)

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	// x/text only takes floats or integers, so the whole part goes through
	// the printer for grouping and the fraction is appended verbatim.
	whole := amount.Truncate(0)
	s := sign + p.Sprint(number.Decimal(whole.IntPart()))
	if digits > 0 {
		frac := amount.Sub(whole).StringFixed(int32(digits))
		s += decimalSeparator(p) + strings.TrimPrefix(frac, "0.")
	}
	return p.Sprintf("%v %v", currency.Symbol(f.Currency), s)
}

// decimalSeparator returns the printer locale's fraction separator.
func decimalSeparator(p *message.Printer) string {
	s := p.Sprint(number.Decimal(1.5, number.Scale(1)))
	return strings.TrimSuffix(strings.TrimPrefix(s, "1"), "5")
}

// Rate formats a VAT rate with every significant digit, e.g. 0.075 as
// "7.5 %". Breakdown rows are grouped by exact rate, so distinct rates
// never share a label.
func (f Formatter) Rate(rate float64) string {
	return decimal.NewFromFloat(rate).Shift(2).String() + " %"
}

// Date formats the issue date.
func (f Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(f.resolved().DateLayout)
}
