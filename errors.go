package invoicer

import "errors"

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Converter].
	ErrClosed = errors.New("invoicer: converter is closed")

	// ErrNoFixpoint is returned when pagination keeps reflowing past the
	// configured pass limit.
	ErrNoFixpoint = errors.New("invoicer: pagination did not reach a fixpoint")

	// ErrPageMismatch is returned when a layout surface reports metrics for
	// a different number of pages than were rendered.
	ErrPageMismatch = errors.New("invoicer: measured page count does not match rendered pages")
)
