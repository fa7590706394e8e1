package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors for a scrape run. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry       *prometheus.Registry
	RoundsTotal    *prometheus.CounterVec
	RecordsTotal   *prometheus.CounterVec
	DroppedTotal   *prometheus.CounterVec
	Navigations    *prometheus.CounterVec
	LookupsTotal   *prometheus.CounterVec
	WriteErrors    *prometheus.CounterVec
	RoundDuration  *prometheus.HistogramVec
	Classification *prometheus.CounterVec

	logger *slog.Logger
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	rounds := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscope_rounds_total",
			Help: "Scrape loop rounds by entity and outcome.",
		},
		[]string{"entity", "outcome"},
	)
	records := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscope_records_total",
			Help: "Records accumulated per entity.",
		},
		[]string{"entity"},
	)
	dropped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscope_records_dropped_total",
			Help: "Records dropped by the pipeline per entity.",
		},
		[]string{"entity"},
	)
	navigations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscope_navigations_total",
			Help: "Page navigations by result.",
		},
		[]string{"result"},
	)
	lookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscope_element_lookups_total",
			Help: "Interactive element lookups by outcome.",
		},
		[]string{"outcome"},
	)
	writeErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscope_write_errors_total",
			Help: "Dataset write failures per entity.",
		},
		[]string{"entity"},
	)
	roundDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopscope_round_duration_seconds",
			Help:    "Duration of a single scrape loop round.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entity"},
	)
	classifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscope_classifications_total",
			Help: "Sentiment classifications by label.",
		},
		[]string{"label"},
	)

	registry.MustRegister(rounds, records, dropped, navigations, lookups, writeErrors, roundDuration, classifications)

	return &Metrics{
		Registry:       registry,
		RoundsTotal:    rounds,
		RecordsTotal:   records,
		DroppedTotal:   dropped,
		Navigations:    navigations,
		LookupsTotal:   lookups,
		WriteErrors:    writeErrors,
		RoundDuration:  roundDuration,
		Classification: classifications,
		logger:         logger.With("component", "metrics"),
	}
}

// ObserveRound records one loop round and how long it took.
func (m *Metrics) ObserveRound(entity, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RoundsTotal.WithLabelValues(entity, outcome).Inc()
	m.RoundDuration.WithLabelValues(entity).Observe(d.Seconds())
}

// AddRecords adds n accumulated records for entity.
func (m *Metrics) AddRecords(entity string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsTotal.WithLabelValues(entity).Add(float64(n))
}

// AddDropped adds n pipeline drops for entity.
func (m *Metrics) AddDropped(entity string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DroppedTotal.WithLabelValues(entity).Add(float64(n))
}

// IncNavigation counts one navigation with result "ok" or "error".
func (m *Metrics) IncNavigation(result string) {
	if m == nil {
		return
	}
	m.Navigations.WithLabelValues(result).Inc()
}

// IncLookup counts one element lookup outcome.
func (m *Metrics) IncLookup(outcome string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(outcome).Inc()
}

// IncWriteError counts a failed dataset write.
func (m *Metrics) IncWriteError(entity string) {
	if m == nil {
		return
	}
	m.WriteErrors.WithLabelValues(entity).Inc()
}

// IncClassification counts one classified review.
func (m *Metrics) IncClassification(label string) {
	if m == nil {
		return
	}
	m.Classification.WithLabelValues(label).Inc()
}

// Handler returns the exposition handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// StartServer starts the metrics HTTP server in the background. The
// returned server should be shut down by the caller.
func (m *Metrics) StartServer(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.logger.Info("metrics server starting", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()
	return srv
}

// Shutdown stops a server returned by StartServer.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

// Snapshot returns every counter summed across labels, keyed by metric name.
func (m *Metrics) Snapshot() map[string]float64 {
	out := make(map[string]float64)
	if m == nil {
		return out
	}
	families, err := m.Registry.Gather()
	if err != nil {
		m.logger.Warn("gather metrics", "error", err)
		return out
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				out[mf.GetName()] += c.GetValue()
			}
		}
	}
	return out
}
