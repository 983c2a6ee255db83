package invoicer

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
)

// Converter paginates invoices in headless Chrome and exports them to PDF.
//
// A Converter manages a headless browser instance that is reused across
// documents. Each document is laid out in its own tab, so a Converter is
// safe for concurrent use.
//
// Call [Converter.Close] when the Converter is no longer needed to release
// browser resources.
type Converter struct {
	cfg           converterConfig
	renderer      *Renderer
	page          PageConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewConverter creates a Converter with the given options.
//
// It starts a headless browser in the background. The caller must call
// [Converter.Close] when finished.
func NewConverter(opts ...Option) (*Converter, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	renderer, err := NewRenderer(cfg.format, cfg.theme, cfg.page)
	if err != nil {
		return nil, err
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser(context.Background(), cfg.log)
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("invoicer: starting browser: %w", err)
	}
	cfg.log.Debug("browser started", "path", cfg.chromePath, "headless", cfg.headless)

	return &Converter{
		cfg:           cfg,
		renderer:      renderer,
		page:          cfg.page.resolved(),
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases all resources held by the Converter, including the
// browser process. Close is idempotent.
func (c *Converter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.browserCancel()
	c.allocCancel()
	return nil
}

// Paginate lays out inv until no page overflows and returns the paginated
// HTML.
func (c *Converter) Paginate(ctx context.Context, inv *Invoice) (*Document, error) {
	doc, _, err := c.run(ctx, inv, false)
	return doc, err
}

// Export paginates inv and prints the settled layout to PDF. The capture
// happens in the tab that reached the fixpoint, after the last pass, so the
// PDF never holds clipped intermediate layouts.
func (c *Converter) Export(ctx context.Context, inv *Invoice) (*Result, error) {
	doc, data, err := c.run(ctx, inv, true)
	if err != nil {
		return nil, err
	}

	res := &Result{data: data, filename: exportFilename(inv.Number)}
	if n := res.PageCount(); n != len(doc.Pages) {
		c.cfg.log.Warn("printed page count differs from layout",
			"invoice", inv.Number, "layout", len(doc.Pages), "printed", n)
	}
	c.cfg.log.Info("invoice exported",
		"invoice", inv.Number, "pages", len(doc.Pages), "passes", doc.Passes, "bytes", res.Len())
	return res, nil
}

// run paginates inv in a fresh tab and, when capture is set, prints it.
func (c *Converter) run(ctx context.Context, inv *Invoice, capture bool) (*Document, []byte, error) {
	if err := c.checkClosed(); err != nil {
		return nil, nil, err
	}

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	defer tabCancel()
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	surface := newChromeSurface(tabCtx, c.cfg.theme)
	if err := surface.open(ctx); err != nil {
		return nil, nil, err
	}

	layout := NewLayout(inv, c.renderer, LayoutConfig{
		MaxPasses: c.cfg.maxPasses,
		Logger:    c.cfg.log,
	})
	doc, err := layout.Run(ctx, surface)
	if err != nil {
		return nil, nil, err
	}
	if !capture {
		return doc, nil, nil
	}

	data, err := surface.PrintPDF(ctx, c.page)
	if err != nil {
		return nil, nil, fmt.Errorf("invoicer: printing %s: %w", inv.Number, err)
	}
	return doc, data, nil
}

func (c *Converter) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// --- Package-level convenience functions ---

// Export paginates and prints inv using a temporary [Converter].
// This is convenient for one-off exports. For repeated use, create a
// [Converter] with [NewConverter] to reuse the browser instance.
func Export(ctx context.Context, inv *Invoice, opts ...Option) (*Result, error) {
	conv, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.Export(ctx, inv)
}

// Paginate lays out inv using a temporary [Converter].
func Paginate(ctx context.Context, inv *Invoice, opts ...Option) (*Document, error) {
	conv, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.Paginate(ctx, inv)
}
