package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/IshaanNene/ShopScope/internal/types"
)

// writeAtomic writes to a temp file beside path and renames it into place.
func writeAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	committed = true
	return nil
}

// --- CSV Storage ---

// CSVStorage writes each dataset to <dir>/<kind>.csv with a header row.
type CSVStorage struct {
	dir    string
	logger *slog.Logger
}

// NewCSVStorage creates a CSV storage rooted at dir.
func NewCSVStorage(dir string, logger *slog.Logger) *CSVStorage {
	return &CSVStorage{
		dir:    dir,
		logger: logger.With("component", "csv_storage"),
	}
}

func (s *CSVStorage) Name() string { return "csv" }

// Path returns the file a dataset of kind is written to.
func (s *CSVStorage) Path(kind types.Kind) string {
	return filepath.Join(s.dir, kind.FileName())
}

func (s *CSVStorage) Write(ds *types.Dataset) error {
	path := s.Path(ds.Kind)
	err := writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(ds.Header()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		if err := cw.WriteAll(ds.Rows()); err != nil {
			return fmt.Errorf("write rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Path: path, Err: err}
	}

	s.logger.Info("CSV written", "path", path, "records", ds.Len())
	return nil
}

// --- JSON Storage ---

// JSONStorage writes each dataset to <dir>/<kind>.json as an array of
// objects keyed by column.
type JSONStorage struct {
	dir    string
	logger *slog.Logger
}

// NewJSONStorage creates a JSON storage rooted at dir.
func NewJSONStorage(dir string, logger *slog.Logger) *JSONStorage {
	return &JSONStorage{
		dir:    dir,
		logger: logger.With("component", "json_storage"),
	}
}

func (s *JSONStorage) Name() string { return "json" }

// Path returns the file a dataset of kind is written to.
func (s *JSONStorage) Path(kind types.Kind) string {
	return filepath.Join(s.dir, strings.TrimSuffix(kind.FileName(), ".csv")+".json")
}

func (s *JSONStorage) Write(ds *types.Dataset) error {
	path := s.Path(ds.Kind)

	output := make([]map[string]string, len(ds.Records))
	for i, r := range ds.Records {
		output[i] = types.ToMap(r)
	}

	err := writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(output); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		return nil
	})
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Path: path, Err: err}
	}

	s.logger.Info("JSON written", "path", path, "records", ds.Len())
	return nil
}
