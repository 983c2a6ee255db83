package invoicer

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// boxModel is a deterministic stand-in for a browser's box layout: every
// part of a rendered page has a fixed height.
type boxModel struct {
	PageHeight    float64
	FullHeader    float64
	CompactHeader float64
	Folio         float64
	Head          float64
	Row           float64
	SubLine       float64
	FootRow       float64
}

func defaultBoxModel() boxModel {
	return boxModel{
		PageHeight:    1000,
		FullHeader:    300,
		CompactHeader: 60,
		Folio:         20,
		Head:          30,
		Row:           50,
		SubLine:       20,
		FootRow:       10,
	}
}

// fakeSurface lays out the HTML produced by the Renderer with a boxModel.
// It parses the markup, so it only sees what the template really emits.
type fakeSurface struct {
	model  boxModel
	doc    *html.Node
	loads  int
	loaded []string
}

func newFakeSurface(m boxModel) *fakeSurface {
	return &fakeSurface{model: m}
}

func (s *fakeSurface) Load(_ context.Context, markup string) error {
	doc, err := htmlquery.Parse(strings.NewReader(markup))
	if err != nil {
		return err
	}
	s.doc = doc
	s.loads++
	s.loaded = append(s.loaded, markup)
	return nil
}

func (s *fakeSurface) Measure(_ context.Context) ([]Metrics, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("nothing loaded")
	}
	var out []Metrics
	for _, page := range findAll(s.doc, "section", "page") {
		out = append(out, s.measurePage(page))
	}
	return out, nil
}

func (s *fakeSurface) measurePage(page *html.Node) Metrics {
	m := s.model
	available := m.PageHeight - m.Folio
	switch {
	case len(findAll(page, "header", "full")) > 0:
		available -= m.FullHeader
	case len(findAll(page, "header", "compact")) > 0:
		available -= m.CompactHeader
	}

	content := m.Head
	for _, row := range findAll(page, "tr", "item") {
		content += m.Row + m.SubLine*float64(len(findAll(row, "span", "sub")))
	}
	for _, foot := range findAll(page, "tfoot", "") {
		content += m.FootRow * float64(len(findAll(foot, "tr", "")))
	}
	return Metrics{Available: available, Content: content}
}

// findAll returns the descendants of n with the given tag carrying class
// (any class when class is empty).
func findAll(n *html.Node, tag, class string) []*html.Node {
	expr := ".//" + tag
	if class != "" {
		expr += fmt.Sprintf("[contains(concat(' ', normalize-space(@class), ' '), ' %s ')]", class)
	}
	return htmlquery.Find(n, expr)
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

func attr(n *html.Node, key string) string {
	return htmlquery.SelectAttr(n, key)
}

// text returns the concatenated text content of n.
func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
