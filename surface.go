package invoicer

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// measureScript reports, for every page, the height its content area is
// allotted by the page frame and the height of the content inside it.
const measureScript = `Array.from(document.querySelectorAll('section.page')).map(function (page) {
  var probe = page.querySelector('.probe');
  return {available: probe.clientHeight, content: probe.scrollHeight};
})`

// chromeSurface is a [Surface] backed by one browser tab. Layout is
// measured under print media so that it matches the exported PDF.
type chromeSurface struct {
	tab   context.Context
	theme Theme
}

func newChromeSurface(tab context.Context, theme Theme) *chromeSurface {
	return &chromeSurface{tab: tab, theme: theme}
}

func (s *chromeSurface) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(s.tab, actions...)
}

// open starts the tab and sets up media emulation.
func (s *chromeSurface) open(ctx context.Context) error {
	var features []*emulation.MediaFeature
	if s.theme != ThemeAuto {
		features = append(features, &emulation.MediaFeature{Name: "prefers-color-scheme", Value: string(s.theme)})
	}
	if err := s.run(ctx, emulation.SetEmulatedMedia().WithMedia("print").WithFeatures(features)); err != nil {
		return fmt.Errorf("invoicer: opening tab: %w", err)
	}
	return nil
}

// Load replaces the tab's document with html.
func (s *chromeSurface) Load(ctx context.Context, html string) error {
	return s.run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("section.page", chromedp.ByQuery),
	)
}

// Measure forces a layout and returns per-page metrics.
func (s *chromeSurface) Measure(ctx context.Context) ([]Metrics, error) {
	var metrics []Metrics
	if err := s.run(ctx, chromedp.Evaluate(measureScript, &metrics)); err != nil {
		return nil, err
	}
	return metrics, nil
}

// PrintPDF prints the loaded document on A4 sheets. Margins are owned by
// the page frames, so the printer adds none.
func (s *chromeSurface) PrintPDF(ctx context.Context, pg PageConfig) ([]byte, error) {
	width, height := paperDimensions()

	var buf []byte
	if err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = page.PrintToPDF().
			WithPaperWidth(width).
			WithPaperHeight(height).
			WithMarginTop(0).
			WithMarginRight(0).
			WithMarginBottom(0).
			WithMarginLeft(0).
			WithPrintBackground(pg.PrintBackground).
			WithPreferCSSPageSize(true).
			Do(ctx)
		return err
	})); err != nil {
		return nil, err
	}
	return buf, nil
}
