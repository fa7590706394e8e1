package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/types"
)

// Storage is the interface for all dataset backends.
type Storage interface {
	// Write persists the whole dataset, replacing any previous output for
	// its kind. A failed write leaves the previous output untouched.
	Write(ds *types.Dataset) error

	// Name returns the storage backend identifier.
	Name() string
}

// New builds the storage for the configured formats. More than one format
// yields a MultiStorage.
func New(cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	var backends []Storage
	for _, f := range cfg.Formats {
		switch f {
		case "csv":
			backends = append(backends, NewCSVStorage(cfg.OutputDir, logger))
		case "json":
			backends = append(backends, NewJSONStorage(cfg.OutputDir, logger))
		default:
			return nil, fmt.Errorf("unsupported storage format %q", f)
		}
	}
	switch len(backends) {
	case 0:
		return nil, fmt.Errorf("no storage format configured")
	case 1:
		return backends[0], nil
	default:
		return NewMultiStorage(backends...), nil
	}
}

// MultiStorage writes every dataset to each backend in order.
type MultiStorage struct {
	backends []Storage
}

// NewMultiStorage fans writes out to backends.
func NewMultiStorage(backends ...Storage) *MultiStorage {
	return &MultiStorage{backends: backends}
}

func (m *MultiStorage) Name() string { return "multi" }

// Write attempts every backend and joins their errors.
func (m *MultiStorage) Write(ds *types.Dataset) error {
	var errs []error
	for _, b := range m.backends {
		if err := b.Write(ds); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Path returns the first backend path for kind, if any backend has one.
func (m *MultiStorage) Path(kind types.Kind) string {
	for _, b := range m.backends {
		if p, ok := b.(interface{ Path(types.Kind) string }); ok {
			return p.Path(kind)
		}
	}
	return ""
}
