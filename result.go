package invoicer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/porticus-lab/invoicer/internal/pdf"
)

// Result holds an exported invoice PDF and provides helpers for common
// output formats such as raw bytes, base64 encoding, and streaming readers.
//
// It is safe to call its methods multiple times; the underlying data is
// never modified.
type Result struct {
	data     []byte
	filename string
}

// NewResult wraps PDF bytes produced elsewhere, served under filename.
func NewResult(data []byte, filename string) *Result {
	return &Result{data: data, filename: filename}
}

// Bytes returns the raw PDF content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Base64 returns the PDF encoded as a standard base64 string (RFC 4648).
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the PDF content.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the PDF in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

// Filename returns the generated download name of the PDF.
func (r *Result) Filename() string {
	return r.filename
}

// ContentDisposition returns the header value serving the PDF as a
// download.
func (r *Result) ContentDisposition() string {
	return fmt.Sprintf("attachment; filename=%q", r.filename)
}

// PageCount returns the number of pages in the PDF's page tree, or 0 when
// the data is not a readable PDF.
func (r *Result) PageCount() int {
	doc, err := pdf.Load(r.data)
	if err != nil {
		return 0
	}
	n, err := doc.NumPages()
	if err != nil {
		return 0
	}
	return n
}

// PageTexts extracts the text of every printed page, one string per page
// with lines in reading order.
func (r *Result) PageTexts() ([]string, error) {
	doc, err := pdf.Load(r.data)
	if err != nil {
		return nil, err
	}
	return doc.Text()
}

// filenameUnsafe matches characters not kept in generated filenames.
var filenameUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// exportFilename returns "invoice-<number>-<suffix>.pdf" with a random
// suffix so repeated downloads do not collide.
func exportFilename(number string) string {
	number = strings.Trim(filenameUnsafe.ReplaceAllString(number, "-"), "-")
	if number == "" {
		number = "draft"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("invoice-%s-%s.pdf", number, suffix)
}
