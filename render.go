package invoicer

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Theme selects the color scheme of the rendered pages.
type Theme string

const (
	// ThemeAuto follows the host's prefers-color-scheme preference.
	ThemeAuto Theme = "auto"
	// ThemeLight forces the light palette.
	ThemeLight Theme = "light"
	// ThemeDark forces the dark palette.
	ThemeDark Theme = "dark"
)

// ParseTheme maps a name to a Theme. The empty string selects ThemeAuto.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case "", ThemeAuto:
		return ThemeAuto, nil
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("invoicer: unknown theme %q", s)
}

// Renderer turns an invoice and a page assignment into paginated HTML.
type Renderer struct {
	tmpl   *template.Template
	format Formatter
	theme  Theme
	page   PageConfig
}

// NewRenderer parses the embedded page template. A nil page config uses
// [DefaultPageConfig].
func NewRenderer(f Formatter, theme Theme, pg *PageConfig) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/invoice.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("invoicer: parsing template: %w", err)
	}
	if theme == "" {
		theme = ThemeAuto
	}
	return &Renderer{
		tmpl:   tmpl,
		format: f.resolved(),
		theme:  theme,
		page:   pg.resolved(),
	}, nil
}

type documentView struct {
	Number       string
	Issuer       Party
	Client       Party
	Issued       string
	Theme        Theme
	Padding      string
	PageHeight   string
	PageWidth    string
	Pages        []pageView
	Total        string
	VAT          []vatView
	TotalWithVAT string
}

type pageView struct {
	Number    int
	Of        int
	First     bool
	Last      bool
	Oversized bool
	Items     []itemView
	Subtotal  string
}

type itemView struct {
	ID       string
	Title    string
	SubLines []string
	Units    string
	Price    string
	VAT      string
	Subtotal string
	Odd      bool
}

type vatView struct {
	Rate   string
	Amount string
}

// Render writes the HTML of every page in pages. The first page carries the
// full header, later pages a compact one; only the last page carries the
// grand total and VAT summary, the others a page subtotal.
func (r *Renderer) Render(w io.Writer, inv *Invoice, pages []Page) error {
	f := r.format
	view := documentView{
		Number:     inv.Number,
		Issuer:     inv.Issuer,
		Client:     inv.Client,
		Issued:     f.Date(inv.Issued),
		Theme:      r.theme,
		Padding:    r.page.Margin.padding(),
		PageWidth:  fmt.Sprintf("%gcm", A4.Width),
		PageHeight: fmt.Sprintf("%gcm", A4.Height),
		Pages:      make([]pageView, 0, len(pages)),
	}

	for _, pg := range pages {
		items := pg.Items(inv.Items)
		pv := pageView{
			Number:    pg.Index + 1,
			Of:        len(pages),
			First:     pg.First,
			Last:      pg.Last,
			Oversized: pg.Oversized,
			Items:     make([]itemView, 0, len(items)),
			Subtotal:  f.Money(PageSubtotal(items)),
		}
		for j, it := range items {
			pv.Items = append(pv.Items, itemView{
				ID:       strconv.FormatInt(it.ID, 10),
				Title:    it.Title(),
				SubLines: it.SubLines(),
				Units:    strconv.FormatInt(it.Units, 10),
				Price:    f.Money(it.Price),
				VAT:      f.Rate(it.VAT),
				Subtotal: f.Money(it.Subtotal()),
				Odd:      (pg.Offset+j)%2 == 1,
			})
		}
		view.Pages = append(view.Pages, pv)
	}

	if len(pages) > 0 && pages[len(pages)-1].Last {
		view.Total = f.Money(inv.Total())
		view.TotalWithVAT = f.Money(inv.TotalWithVAT())
		for _, g := range inv.VATBreakdown() {
			view.VAT = append(view.VAT, vatView{Rate: f.Rate(g.Rate), Amount: f.Money(g.Amount)})
		}
	}

	if err := r.tmpl.ExecuteTemplate(w, "invoice.html.tmpl", view); err != nil {
		return fmt.Errorf("invoicer: rendering %s: %w", inv.Number, err)
	}
	return nil
}
