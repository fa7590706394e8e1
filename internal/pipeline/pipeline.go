package pipeline

import (
	"log/slog"

	"github.com/IshaanNene/ShopScope/internal/types"
)

// Middleware processes a record and returns the (possibly modified) record.
// Return nil to drop the record from the pipeline.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a record. Return nil to drop the record.
	Process(rec types.Record) (types.Record, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Default returns the chain every extracted record goes through: whitespace
// cleanup, then the non-empty primary text check.
func Default(logger *slog.Logger) *Pipeline {
	p := New(logger)
	p.Use(NewWhitespaceMiddleware())
	p.Use(&RequiredTextMiddleware{})
	return p
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the record through all middleware in order.
func (p *Pipeline) Process(rec types.Record) (types.Record, error) {
	current := rec

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{
				Stage:  mw.Name(),
				Record: current,
				Err:    err,
			}
		}
		if result == nil {
			p.logger.Debug("record dropped", "stage", mw.Name(), "kind", rec.Kind())
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// ProcessAll runs every record through the chain, preserving order, and
// returns the survivors with the number dropped.
func (p *Pipeline) ProcessAll(records []types.Record) ([]types.Record, int, error) {
	out := make([]types.Record, 0, len(records))
	dropped := 0
	for _, rec := range records {
		result, err := p.Process(rec)
		if err != nil {
			return out, dropped, err
		}
		if result == nil {
			dropped++
			continue
		}
		out = append(out, result)
	}
	return out, dropped, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}
