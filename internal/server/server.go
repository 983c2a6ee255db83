// Package server exposes invoice export over HTTP.
//
//	GET /invoices/{number}.pdf   PDF download (201, attachment)
//	GET /invoices/{number}       paginated HTML
//	GET /healthz                 liveness
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/porticus-lab/invoicer"
	"github.com/porticus-lab/invoicer/internal/store"
)

// Loader fetches invoices by number. It returns an error wrapping
// store.ErrNotFound for unknown numbers.
type Loader interface {
	Load(ctx context.Context, number string) (*invoicer.Invoice, error)
}

// Exporter paginates invoices and prints them. *invoicer.Converter
// satisfies it.
type Exporter interface {
	Paginate(ctx context.Context, inv *invoicer.Invoice) (*invoicer.Document, error)
	Export(ctx context.Context, inv *invoicer.Invoice) (*invoicer.Result, error)
}

// Server serves invoices from a Loader through an Exporter.
type Server struct {
	loader   Loader
	exporter Exporter
	log      *slog.Logger
	mux      *http.ServeMux
}

// New returns a Server. A nil logger uses slog.Default().
func New(loader Loader, exporter Exporter, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		loader:   loader,
		exporter: exporter,
		log:      log,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /invoices/{file}", s.handleInvoice)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// ServeHTTP tags every request with an id and logs its outcome.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-Id", id)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	s.mux.ServeHTTP(rec, r)

	s.log.Info("request",
		"id", id,
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start),
	)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	number, pdf := strings.CutSuffix(file, ".pdf")
	if number == "" {
		http.NotFound(w, r)
		return
	}

	inv, err := s.loader.Load(r.Context(), number)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, fmt.Sprintf("invoice %s not found", number), http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, r, "loading invoice", number, err)
		return
	}

	if !pdf {
		doc, err := s.exporter.Paginate(r.Context(), inv)
		if err != nil {
			s.fail(w, r, "paginating invoice", number, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, doc.HTML)
		return
	}

	res, err := s.exporter.Export(r.Context(), inv)
	if err != nil {
		s.fail(w, r, "exporting invoice", number, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", res.ContentDisposition())
	w.Header().Set("Content-Length", fmt.Sprint(res.Len()))
	w.WriteHeader(http.StatusCreated)
	if _, err := res.WriteTo(w); err != nil {
		s.log.Warn("writing pdf", "invoice", number, "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, what, number string, err error) {
	s.log.Error(what, "invoice", number, "id", w.Header().Get("X-Request-Id"), "error", err)
	if r.Context().Err() != nil {
		// Client went away; nobody reads the body.
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
