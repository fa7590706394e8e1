package observability

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRound("reviews", "clicked", time.Second)
	m.AddRecords("reviews", 3)
	m.IncNavigation("ok")
	m.IncLookup("not_found")
	m.IncWriteError("products")
	m.IncClassification("POSITIVE")
	if len(m.Snapshot()) != 0 {
		t.Error("nil metrics snapshot should be empty")
	}
}

func TestMetricsCount(t *testing.T) {
	m := NewMetrics(testLogger)
	m.ObserveRound("products", "page", 10*time.Millisecond)
	m.ObserveRound("products", "page", 10*time.Millisecond)
	m.AddRecords("products", 56)
	m.AddRecords("products", 0)
	m.IncWriteError("reviews")

	if got := testutil.ToFloat64(m.RoundsTotal.WithLabelValues("products", "page")); got != 2 {
		t.Errorf("rounds = %v, want 2", got)
	}
	snap := m.Snapshot()
	if snap["shopscope_records_total"] != 56 {
		t.Errorf("records = %v, want 56", snap["shopscope_records_total"])
	}
	if snap["shopscope_write_errors_total"] != 1 {
		t.Errorf("write errors = %v, want 1", snap["shopscope_write_errors_total"])
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics(testLogger)
	m.IncNavigation("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `shopscope_navigations_total{result="ok"} 1`) {
		t.Errorf("exposition missing navigation counter:\n%s", body)
	}
}
