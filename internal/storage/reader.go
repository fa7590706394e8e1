package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/IshaanNene/ShopScope/internal/types"
)

// Table is a CSV file read back as rows keyed by header.
type Table struct {
	Header []string
	Rows   []map[string]string
}

// Has reports whether the table has column col.
func (t *Table) Has(col string) bool {
	for _, h := range t.Header {
		if h == col {
			return true
		}
	}
	return false
}

// ReadTable reads a CSV file with a header row. Short rows leave the
// missing columns empty.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.StorageError{Backend: "csv", Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{}, nil
		}
		return nil, &types.StorageError{Backend: "csv", Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	t := &Table{Header: header}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &types.StorageError{Backend: "csv", Path: path, Err: err}
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadDataset reads path back into a dataset of kind.
func ReadDataset(path string, kind types.Kind) (*types.Dataset, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	ds := types.NewDataset(kind)
	for _, row := range t.Rows {
		rec, err := types.RecordFromRow(kind, row)
		if err != nil {
			return nil, err
		}
		if err := ds.Append(rec); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
