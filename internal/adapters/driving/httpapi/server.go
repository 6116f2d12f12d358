// Package httpapi serves search over HTTP.
//
// Routes:
//
//	GET /api/search?q=term   documents containing term
//	GET /api/all             every document
//	GET /api/runs/latest     most recent ingestion report
//	GET /healthz             search engine reachability
//
// An empty result set answers 404 and an unreachable search engine 503.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-docsearch/internal/logger"
)

const (
	shutdownTimeout = 10 * time.Second

	noResultsMessage = "No files found containing the search term."
)

// requestTimeout bounds each /api request. A var so tests can shorten it.
var requestTimeout = 30 * time.Second

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("httpapi: search service is required")

// Ports aggregates the driving ports the HTTP server uses.
type Ports struct {
	// Search runs queries. Required.
	Search driving.SearchService

	// Runs exposes ingestion history. Optional.
	Runs driving.RunHistory

	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

// Server routes HTTP requests to the search service.
type Server struct {
	ports  Ports
	router chi.Router
}

// NewServer builds the router.
func NewServer(ports Ports) (*Server, error) {
	if ports.Search == nil {
		return nil, ErrMissingSearchService
	}

	s := &Server{ports: ports}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(deadline(requestTimeout))
		r.Get("/search", s.handleSearch)
		r.Get("/all", s.handleAll)
		r.Get("/runs/latest", s.handleLatestRun)
	})

	if ports.MCP != nil {
		r.Mount("/mcp", ports.MCP)
	}

	s.router = r
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled, then drains open requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type searchResponse struct {
	Results []domain.SearchHit `json:"results"`
}

type messageResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("q") {
		writeJSON(w, http.StatusBadRequest, messageResponse{Error: "query parameter q is required"})
		return
	}
	s.search(w, r, q.Get("q"))
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	s.search(w, r, "")
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, term string) {
	hits, err := s.ports.Search.Search(r.Context(), term)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(hits) == 0 {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: noResultsMessage})
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: hits})
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	if s.ports.Runs == nil {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "run history is not configured"})
		return
	}
	report, err := s.ports.Runs.Latest(r.Context())
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "no ingestion run recorded"})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Search.HealthCheck(r.Context()); err != nil {
		logger.Warn("http: health check: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrConnection), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	logger.Error("http: %s %s: %v", r.Method, r.URL.Path, err)
	writeJSON(w, status, messageResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("http: encoding response: %v", err)
	}
}

// deadline bounds the request context. Unlike middleware.Timeout it writes
// nothing itself; handlers report the expiry through writeError.
func deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestLogger logs each request at debug level through the package logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("http: %s", logger.Fields(
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		))
	})
}
