// Package invoicer renders invoices as paginated HTML and exports them to
// PDF, with pagination measured by a real layout engine (headless Chrome via
// the Chrome DevTools Protocol) rather than precomputed from font metrics.
//
// # Pagination
//
// Every invoice starts with all of its line items on one page. Each page's
// content area is watched by a [Probe]: after a layout commit the probe
// records the height available to the page, then compares the rendered
// content against it. An overflowing page posts an event to the
// [Paginator], which moves that page's last item to the next page and
// triggers another pass. Passes repeat until none overflows:
//
//	conv, err := invoicer.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	doc, err := conv.Paginate(ctx, inv)   // settled HTML, page assignment
//	res, err := conv.Export(ctx, inv)     // PDF of the settled layout
//
// Items only ever move forward and pages are never merged back. A page
// holding a single item that does not fit keeps it and is marked
// oversized, and [LayoutConfig.MaxPasses] bounds the reflow loop.
//
// Any layout engine can drive the loop through the [Surface] interface:
//
//	layout := invoicer.NewLayout(inv, renderer, invoicer.LayoutConfig{})
//	doc, err := layout.Run(ctx, surface)
//
// # Totals
//
// Amounts are integer minor units. [Invoice.Total], [Invoice.VATBreakdown]
// and [Invoice.TotalWithVAT] are computed once per invoice and shown on the
// last page only; earlier pages carry their own subtotal. A [Formatter]
// (locale, currency, decimals) is passed explicitly to the [Renderer].
//
// # Output
//
// A [Result] gives flexible access to the generated PDF bytes:
//
//	res.Bytes()                       // []byte
//	res.Base64()                      // base64 string (RFC 4648)
//	res.Reader()                      // *bytes.Reader
//	res.WriteTo(w)                    // io.WriterTo
//	res.WriteToFile(res.Filename(), 0o644)
//
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload]:
//
//	conv, err := invoicer.NewConverter(invoicer.WithAutoDownload())
package invoicer
