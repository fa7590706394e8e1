package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/observability"
	"github.com/IshaanNene/ShopScope/internal/sentiment"
	"github.com/IshaanNene/ShopScope/internal/storage"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const reviewsCSV = "date,review\n" +
	"2023-06-01,Great energy boost and a lovely taste\n" +
	"2023-07-01,Terrible packaging\n" +
	"2023-06-15,The taste was bitter and the bottle broke\n"

func reviewsTable(t *testing.T) *storage.Table {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "reviews.csv")
	if err := os.WriteFile(path, []byte(reviewsCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := storage.ReadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	PrepareReviews(tbl, 2023, nil)
	return tbl
}

func TestFilterByMonth(t *testing.T) {
	tbl := reviewsTable(t)
	got := FilterByMonth(tbl.Rows, 6)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0]["date"] != "2023-06-01" || got[1]["date"] != "2023-06-15" {
		t.Errorf("rows = %v", got)
	}
	if n := len(FilterByMonth(tbl.Rows, 2)); n != 0 {
		t.Errorf("february rows = %d, want 0", n)
	}
}

func TestPrepareReviewsSynthesizesDates(t *testing.T) {
	tbl := &storage.Table{
		Header: []string{"review"},
		Rows:   []map[string]string{{"review": "a"}, {"review": "b"}, {"review": "c"}},
	}
	PrepareReviews(tbl, 2023, rand.New(rand.NewSource(1)))

	if !tbl.Has("date") || !tbl.Has("month") {
		t.Fatalf("header = %v", tbl.Header)
	}
	for i, row := range tbl.Rows {
		if !strings.HasPrefix(row["date"], "2023-") {
			t.Errorf("row %d date = %q", i, row["date"])
		}
		if want := []string{"1", "2", "3"}[i]; row["month"] != want {
			t.Errorf("row %d month = %q, want %s", i, row["month"], want)
		}
	}
}

func TestPrepareReviewsBadDateNeverMatches(t *testing.T) {
	tbl := &storage.Table{
		Header: []string{"date", "review"},
		Rows:   []map[string]string{{"date": "someday", "review": "x"}},
	}
	PrepareReviews(tbl, 2023, nil)
	if tbl.Rows[0]["month"] != "0" {
		t.Errorf("month = %q, want 0", tbl.Rows[0]["month"])
	}
	for m := 1; m <= 12; m++ {
		if n := len(FilterByMonth(tbl.Rows, m)); n != 0 {
			t.Errorf("month %d matched %d rows", m, n)
		}
	}
}

func TestWordFrequencies(t *testing.T) {
	got := WordFrequencies([]string{"The taste is GREAT", "great taste, great price"}, 2)
	want := []WordCount{{"great", 3}, {"taste", 2}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]sentiment.Result{
		{Label: sentiment.Negative, Confidence: 0.6},
		{Label: sentiment.Positive, Confidence: 0.9},
		{Label: sentiment.Negative, Confidence: 0.8},
	})
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	if got[0].Label != sentiment.Positive || got[0].Count != 1 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Label != sentiment.Negative || got[1].Count != 2 || got[1].AvgConfidence < 0.69 || got[1].AvgConfidence > 0.71 {
		t.Errorf("second = %+v", got[1])
	}
}

type failingClassifier struct{}

func (failingClassifier) Model() string { return "broken" }

func (failingClassifier) Classify(context.Context, []string) ([]sentiment.Result, error) {
	return nil, errors.New("model unavailable")
}

func TestBuildReviewsViewClassifierFailure(t *testing.T) {
	tbl := reviewsTable(t)
	view := BuildReviewsView(context.Background(), tbl.Rows, 6, 2023, 100, failingClassifier{})
	if view.SentimentErr == "" {
		t.Fatal("expected sentiment error")
	}
	if view.Total != 2 || len(view.Rows) != 2 {
		t.Errorf("table should survive classifier failure: %+v", view)
	}
	if len(view.Words) == 0 {
		t.Error("word cloud should survive classifier failure")
	}
}

func newTestServer(t *testing.T) (*Server, *observability.Metrics) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"reviews.csv":  reviewsCSV,
		"products.csv": "name,price,description\nBox of Chocolate Candy,24.99,Delicious\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.DefaultConfig().Dashboard
	cfg.DataDir = dir
	m := observability.NewMetrics(testLogger)
	s := New(cfg, sentiment.NewLexicon(""), testLogger, WithMetrics(m))
	s.Load()
	return s, m
}

func get(t *testing.T, h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPIReviewsFiltered(t *testing.T) {
	s, m := newTestServer(t)
	rec := get(t, s.Router(), "/api/reviews?month=6", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var view ReviewsView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Total != 2 || view.MonthName != "Jun" {
		t.Errorf("total=%d month=%q", view.Total, view.MonthName)
	}
	for _, row := range view.Rows {
		if row.Label == "" || row.Confidence < 0 || row.Confidence > 1 {
			t.Errorf("row not classified: %+v", row)
		}
	}
	if view.Rows[0].Label != sentiment.Positive || view.Rows[1].Label != sentiment.Negative {
		t.Errorf("labels = %s, %s", view.Rows[0].Label, view.Rows[1].Label)
	}
	if got := testutil.ToFloat64(m.Classification.WithLabelValues("POSITIVE")); got != 1 {
		t.Errorf("positive classifications = %v, want 1", got)
	}
}

func TestAPIErrors(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		target string
		want   int
	}{
		{"/api/reviews?month=13", http.StatusBadRequest},
		{"/api/orders", http.StatusBadRequest},
		{"/api/testimonials", http.StatusServiceUnavailable},
		{"/api/products", http.StatusOK},
		{"/health", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			if rec := get(t, s.Router(), tt.target, nil); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestIndexSectionError(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s.Router(), "/?section=testimonials", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Could not load testimonials.csv") {
		t.Error("missing section error box")
	}

	// other sections still render
	rec = get(t, s.Router(), "/?section=products", nil)
	if !strings.Contains(rec.Body.String(), "Box of Chocolate Candy") {
		t.Error("products table missing")
	}
}

func TestIndexReviewsBrotli(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s.Router(), "/?section=reviews&month=6", http.Header{"Accept-Encoding": {"br"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if enc := rec.Header().Get("Content-Encoding"); enc != "br" {
		t.Fatalf("Content-Encoding = %q, want br", enc)
	}
	body, err := io.ReadAll(brotli.NewReader(rec.Body))
	if err != nil {
		t.Fatal(err)
	}
	page := string(body)
	if !strings.Contains(page, "Total Reviews in Jun 2023") {
		t.Error("missing month total")
	}
	if !strings.Contains(page, "2023-06-15") || strings.Contains(page, "2023-07-01") {
		t.Error("reviews table not filtered to June")
	}
}
