package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrElementNotFound = errors.New("element not found")
	ErrIO              = errors.New("dataset write failed")
	ErrExtractionGap   = errors.New("required field missing")
	ErrSessionClosed   = errors.New("browser session closed")
	ErrUnknownKind     = errors.New("unknown record kind")
)

// NavigationError wraps errors that occur while loading a page.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// LookupError wraps errors from element lookups. Timeouts unwrap to
// ErrElementNotFound.
type LookupError struct {
	Selector string
	Err      error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %q: %v", e.Selector, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur during dataset export.
type StorageError struct {
	Backend string
	Path    string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s) %s: %v", e.Backend, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports every storage failure as ErrIO.
func (e *StorageError) Is(target error) bool { return target == ErrIO }

// ClassifyError wraps sentiment classifier failures.
type ClassifyError struct {
	Model string
	Err   error
}

func (e *ClassifyError) Error() string {
	return fmt.Sprintf("classify (%s): %v", e.Model, e.Err)
}

func (e *ClassifyError) Unwrap() error { return e.Err }

// PipelineError wraps errors from a record middleware stage.
type PipelineError struct {
	Stage  string
	Record Record
	Err    error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
