// Package dashboard serves the scraped datasets and the review sentiment
// view over HTTP.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/observability"
	"github.com/IshaanNene/ShopScope/internal/sentiment"
	"github.com/IshaanNene/ShopScope/internal/storage"
	"github.com/IshaanNene/ShopScope/internal/types"
)

// section is one loaded dataset, or the error that prevented loading it.
type section struct {
	table *storage.Table
	err   error
}

// Server serves the dashboard.
type Server struct {
	cfg        config.DashboardConfig
	year       int
	rng        *rand.Rand
	classifier sentiment.Classifier
	metrics    *observability.Metrics
	logger     *slog.Logger

	sections map[types.Kind]section
}

// Option customizes a Server.
type Option func(*Server)

// WithFallbackYear sets the year of synthesized review dates.
func WithFallbackYear(year int) Option {
	return func(s *Server) { s.year = year }
}

// WithRand sets the random source for synthesized review dates.
func WithRand(rng *rand.Rand) Option {
	return func(s *Server) { s.rng = rng }
}

// WithMetrics counts classifications on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a dashboard server. Call Load before serving.
func New(cfg config.DashboardConfig, classifier sentiment.Classifier, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:        cfg,
		year:       types.DefaultFallbackYear,
		classifier: classifier,
		logger:     logger.With("component", "dashboard"),
		sections:   make(map[types.Kind]section),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the three datasets from the data directory. A file that
// cannot be read is kept as an error for its section only.
func (s *Server) Load() {
	for _, kind := range types.Kinds {
		path := filepath.Join(s.cfg.DataDir, kind.FileName())
		t, err := storage.ReadTable(path)
		if err != nil {
			s.logger.Warn("dataset unavailable", "section", kind, "path", path, "error", err)
			s.sections[kind] = section{err: err}
			continue
		}
		if kind == types.KindReviews {
			PrepareReviews(t, s.year, s.rng)
		}
		s.logger.Info("dataset loaded", "section", kind, "rows", len(t.Rows))
		s.sections[kind] = section{table: t}
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/{section}", s.handleAPI)
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("dashboard shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// query holds the parsed navigation controls.
type query struct {
	kind  types.Kind
	month int
}

func parseQuery(r *http.Request, sectionName string) (query, error) {
	q := query{kind: types.KindProducts, month: 1}
	if sectionName != "" {
		k, err := types.ParseKind(sectionName)
		if err != nil {
			return q, err
		}
		q.kind = k
	}
	if m := r.URL.Query().Get("month"); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil || n < 1 || n > 12 {
			return q, fmt.Errorf("month must be 1-12, got %q", m)
		}
		q.month = n
	}
	return q, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r, r.URL.Query().Get("section"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page := pageData{
		Sections: types.Kinds,
		Active:   q.kind,
		Month:    q.month,
		Months:   monthOptions(),
	}
	sec := s.sections[q.kind]
	switch {
	case sec.err != nil:
		page.Error = fmt.Sprintf("Could not load %s: %v", q.kind.FileName(), sec.err)
	case sec.table == nil:
		page.Error = fmt.Sprintf("%s has not been loaded", q.kind.FileName())
	case q.kind == types.KindReviews:
		page.Reviews = s.reviewsView(r.Context(), sec.table, q.month)
	default:
		page.Table = sec.table
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	cw := brotli.HTTPCompressor(w, r)
	defer cw.Close()
	if err := pageTemplate.Execute(cw, page); err != nil {
		s.logger.Error("render page", "section", q.kind, "error", err)
	}
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r, chi.URLParam(r, "section"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sec := s.sections[q.kind]
	if sec.err != nil || sec.table == nil {
		msg := fmt.Sprintf("%s not loaded", q.kind)
		if sec.err != nil {
			msg = sec.err.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": msg})
		return
	}

	if q.kind == types.KindReviews {
		writeJSON(w, http.StatusOK, s.reviewsView(r.Context(), sec.table, q.month))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"section": q.kind,
		"columns": sec.table.Header,
		"rows":    sec.table.Rows,
	})
}

func (s *Server) reviewsView(ctx context.Context, t *storage.Table, month int) *ReviewsView {
	view := BuildReviewsView(ctx, t.Rows, month, s.year, s.cfg.TopWords, s.classifier)
	if view.SentimentErr != "" {
		s.logger.Warn("sentiment classification failed", "month", month, "error", view.SentimentErr)
	}
	for _, row := range view.Rows {
		if row.Label != "" {
			s.metrics.IncClassification(string(row.Label))
		}
	}
	return view
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
