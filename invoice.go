package invoicer

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Party identifies the issuer or the client of an invoice.
type Party struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

// LineItem is a single billed line. Price is expressed in minor currency
// units (cents for EUR) so that totals never accumulate floating-point drift.
type LineItem struct {
	ID          int64   `json:"id" yaml:"id"`
	Description string  `json:"description" yaml:"description"`
	Units       int64   `json:"units" yaml:"units"`
	Price       int64   `json:"price" yaml:"price"`
	VAT         float64 `json:"vat" yaml:"vat"`
}

// Subtotal returns Units * Price in minor units, VAT excluded.
func (it LineItem) Subtotal() int64 {
	return it.Units * it.Price
}

// Title returns the first line of the description.
func (it LineItem) Title() string {
	title, _, _ := strings.Cut(it.Description, "\n")
	return title
}

// SubLines returns the description lines following the title, if any.
func (it LineItem) SubLines() []string {
	_, rest, ok := strings.Cut(it.Description, "\n")
	if !ok {
		return nil
	}
	return strings.Split(rest, "\n")
}

// Invoice is the immutable input document. Nothing in this package
// modifies an Invoice once it has been handed over.
type Invoice struct {
	Number string     `json:"number" yaml:"number"`
	Issuer Party      `json:"issuer" yaml:"issuer"`
	Client Party      `json:"client" yaml:"client"`
	Issued time.Time  `json:"issued" yaml:"issued"`
	Items  []LineItem `json:"items" yaml:"items"`
}

// VATGroup is the VAT accumulated over every item sharing one rate.
type VATGroup struct {
	Rate   float64 `json:"rate"`
	Amount int64   `json:"amount"`
}

// Total returns the pre-VAT grand total in minor units.
func (inv *Invoice) Total() int64 {
	return PageSubtotal(inv.Items)
}

// TotalWithVAT returns the VAT-inclusive grand total in minor units,
// rounded half away from zero once, after summing.
func (inv *Invoice) TotalWithVAT() int64 {
	sum := decimal.Zero
	for _, it := range inv.Items {
		sum = sum.Add(it.gross())
	}
	return sum.Round(0).IntPart()
}

// VATBreakdown groups the VAT of all items by exact rate, ascending.
// Rates whose accumulated VAT is zero are left out. Each group is rounded
// on its own, so the groups need not add up to TotalWithVAT - Total.
func (inv *Invoice) VATBreakdown() []VATGroup {
	acc := make(map[float64]decimal.Decimal)
	for _, it := range inv.Items {
		acc[it.VAT] = acc[it.VAT].Add(it.vat())
	}

	groups := make([]VATGroup, 0, len(acc))
	for rate, amount := range acc {
		if amount.IsZero() {
			continue
		}
		groups = append(groups, VATGroup{Rate: rate, Amount: amount.Round(0).IntPart()})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Rate < groups[j].Rate })
	return groups
}

// vat returns the unrounded VAT of the item.
func (it LineItem) vat() decimal.Decimal {
	return decimal.NewFromInt(it.Subtotal()).Mul(decimal.NewFromFloat(it.VAT))
}

// gross returns the unrounded VAT-inclusive subtotal of the item.
func (it LineItem) gross() decimal.Decimal {
	return decimal.NewFromInt(it.Subtotal()).Add(it.vat())
}

// PageSubtotal sums the pre-VAT subtotals of items.
func PageSubtotal(items []LineItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Subtotal()
	}
	return sum
}
