package storage

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func reviewsDataset(texts ...string) *types.Dataset {
	ds := types.NewDataset(types.KindReviews)
	for i, txt := range texts {
		_ = ds.Append(&types.ReviewRecord{Date: types.SynthesizeDate(2023, i, nil), Review: txt})
	}
	return ds
}

func TestCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStorage(dir, testLogger)

	ds := types.NewDataset(types.KindProducts)
	_ = ds.Append(
		&types.ProductRecord{Name: "Box, of \"Chocolate\"", Price: "$24.99", Description: "multi\nline"},
		&types.ProductRecord{Name: "Potion", Price: "$4.99"},
	)
	if err := s.Write(ds); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "products.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "name,price,description\n") {
		t.Errorf("unexpected header in %q", raw)
	}

	back, err := ReadDataset(s.Path(types.KindProducts), types.KindProducts)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if back.Len() != 2 {
		t.Fatalf("len = %d, want 2", back.Len())
	}
	p := back.Records[0].(*types.ProductRecord)
	if p.Name != "Box, of \"Chocolate\"" || p.Description != "multi\nline" {
		t.Errorf("round trip mismatch: %+v", p)
	}
}

func TestCSVOverwrite(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStorage(dir, testLogger)

	if err := s.Write(reviewsDataset("a", "b", "c")); err != nil {
		t.Fatal(err)
	}
	if err := s.Write(reviewsDataset("only")); err != nil {
		t.Fatal(err)
	}
	back, err := ReadDataset(s.Path(types.KindReviews), types.KindReviews)
	if err != nil {
		t.Fatal(err)
	}
	if back.Len() != 1 || back.Records[0].PrimaryText() != "only" {
		t.Errorf("rewrite should replace the file, got %d records", back.Len())
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestCSVUnwritableKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStorage(dir, testLogger)
	if err := s.Write(reviewsDataset("keep me")); err != nil {
		t.Fatal(err)
	}

	// a regular file where the output directory should be
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := NewCSVStorage(filepath.Join(blocker, "sub"), testLogger)
	err := bad.Write(reviewsDataset("lost"))
	if !errors.Is(err, types.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}

	back, err := ReadDataset(s.Path(types.KindReviews), types.KindReviews)
	if err != nil || back.Records[0].PrimaryText() != "keep me" {
		t.Errorf("previous output should survive, got %v / %v", back, err)
	}
}

func TestEmptyDatasetWritesHeader(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStorage(dir, testLogger)
	if err := s.Write(types.NewDataset(types.KindTestimonials)); err != nil {
		t.Fatal(err)
	}
	tbl, err := ReadTable(s.Path(types.KindTestimonials))
	if err != nil {
		t.Fatal(err)
	}
	if !tbl.Has("review") || !tbl.Has("date") || len(tbl.Rows) != 0 {
		t.Errorf("unexpected table %+v", tbl)
	}
}

func TestNewMultiFormat(t *testing.T) {
	dir := t.TempDir()
	s, err := New(config.StorageConfig{OutputDir: dir, Formats: []string{"csv", "json"}}, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() != "multi" {
		t.Errorf("name = %q", s.Name())
	}
	if err := s.Write(reviewsDataset("x")); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"reviews.csv", "reviews.json"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("missing %s: %v", f, err)
		}
	}
	raw, _ := os.ReadFile(filepath.Join(dir, "reviews.json"))
	if !strings.Contains(string(raw), `"review": "x"`) {
		t.Errorf("unexpected json %s", raw)
	}

	if _, err := New(config.StorageConfig{OutputDir: dir, Formats: []string{"xml"}}, testLogger); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestReadTableMissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, types.ErrIO) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrIO wrapping not-exist, got %v", err)
	}
}
