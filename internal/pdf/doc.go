// Package pdf reads the PDF files the exporter produces: it resolves the
// cross-reference data, walks the page tree and extracts page text in
// reading order. It is a reader for checking output, not a general PDF
// library; encryption and incremental-update edge cases are out of reach.
package pdf
