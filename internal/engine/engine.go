package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/IshaanNene/ShopScope/internal/automation"
	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/fetcher"
	"github.com/IshaanNene/ShopScope/internal/observability"
	"github.com/IshaanNene/ShopScope/internal/parser"
	"github.com/IshaanNene/ShopScope/internal/pipeline"
	"github.com/IshaanNene/ShopScope/internal/storage"
	"github.com/IshaanNene/ShopScope/internal/types"
)

// EntityReport summarizes the scrape and write of one entity.
type EntityReport struct {
	Kind     types.Kind
	Records  int
	Dropped  int
	Rounds   int
	Stop     StopReason
	Path     string
	Err      error
	Duration time.Duration
}

// Report summarizes a run.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Entities []EntityReport
}

// Err joins the errors of every failed entity.
func (r *Report) Err() error {
	var errs []error
	for _, e := range r.Entities {
		if e.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Kind, e.Err))
		}
	}
	return errors.Join(errs...)
}

// Failed reports whether any entity failed.
func (r *Report) Failed() bool {
	return r.Err() != nil
}

// Engine runs the enabled scrape loops one after another on a single
// browser session and writes each dataset.
type Engine struct {
	cfg     *config.Config
	store   storage.Storage
	metrics *observability.Metrics
	logger  *slog.Logger
	loops   []Loop
}

// New wires the loops for every enabled entity onto session. The caller
// owns session and must close it.
func New(cfg *config.Config, session fetcher.Session, store storage.Storage, metrics *observability.Metrics, logger *slog.Logger, opts ...parser.ExtractorOption) (*Engine, error) {
	extractor, err := parser.NewExtractor(cfg.Selectors, cfg.Scrape.FallbackYear, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	deps := &Deps{
		Auto:      automation.NewBrowserAutomation(session, cfg.Scrape.Poll, logger),
		Extractor: extractor,
		Pipeline:  pipeline.Default(logger),
		Metrics:   metrics,
		Logger:    logger,
	}

	e := &Engine{
		cfg:     cfg,
		store:   store,
		metrics: metrics,
		logger:  logger.With("component", "engine"),
	}

	for _, name := range cfg.Scrape.Entities {
		kind, err := types.ParseKind(name)
		if err != nil {
			return nil, err
		}
		switch kind {
		case types.KindProducts:
			e.loops = append(e.loops, NewPaginatedLoop(deps, cfg.Site, cfg.Scrape.Products, cfg.Selectors.Product.Container))
		case types.KindTestimonials:
			e.loops = append(e.loops, NewScrollLoop(deps, cfg.Site.TestimonialsURL(), cfg.Scrape.Testimonials))
		case types.KindReviews:
			e.loops = append(e.loops, NewLoadMoreLoop(deps, cfg.Site.ReviewsURL(), cfg.Scrape.Reviews))
		}
	}
	return e, nil
}

// Loops returns the configured loops in run order.
func (e *Engine) Loops() []Loop {
	return e.loops
}

// Run scrapes and writes every entity in order. A failure in one entity is
// recorded in the report and the run moves on; only cancellation stops it
// early.
func (e *Engine) Run(ctx context.Context) *Report {
	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	logger := e.logger.With("run_id", report.RunID)
	logger.Info("run started", "entities", len(e.loops))

	for _, loop := range e.loops {
		if ctx.Err() != nil {
			logger.Warn("run canceled", "skipped", loop.Kind())
			report.Entities = append(report.Entities, EntityReport{Kind: loop.Kind(), Stop: StopCanceled, Err: ctx.Err()})
			continue
		}
		report.Entities = append(report.Entities, e.runOne(ctx, loop, logger))
	}

	report.Duration = time.Since(report.Started)
	logger.Info("run finished", "duration", report.Duration, "failed", report.Failed())
	return report
}

func (e *Engine) runOne(ctx context.Context, loop Loop, logger *slog.Logger) EntityReport {
	start := time.Now()
	kind := loop.Kind()
	logger = logger.With("entity", kind)
	logger.Info("scrape started")

	res := loop.Run(ctx)
	er := EntityReport{
		Kind:    kind,
		Records: len(res.Records),
		Dropped: res.Dropped,
		Rounds:  len(res.Rounds),
		Stop:    res.Stop,
		Err:     res.Err,
	}

	// keep the previous file when nothing was scraped because of a failure
	if res.Err != nil && len(res.Records) == 0 {
		logger.Error("scrape failed, nothing to write", "stop", res.Stop, "error", res.Err)
		er.Duration = time.Since(start)
		return er
	}

	ds := types.NewDataset(kind)
	if err := ds.Append(res.Records...); err != nil {
		er.Err = errors.Join(er.Err, err)
		er.Duration = time.Since(start)
		return er
	}

	if err := e.store.Write(ds); err != nil {
		e.metrics.IncWriteError(string(kind))
		logger.Error("dataset write failed", "error", err)
		er.Err = errors.Join(er.Err, err)
	} else {
		er.Path = pathOf(e.store, kind)
	}

	er.Duration = time.Since(start)
	logger.Info("scrape finished",
		"records", er.Records,
		"dropped", er.Dropped,
		"rounds", er.Rounds,
		"stop", er.Stop,
		"duration", er.Duration,
	)
	return er
}

func pathOf(s storage.Storage, kind types.Kind) string {
	if p, ok := s.(interface{ Path(types.Kind) string }); ok {
		return p.Path(kind)
	}
	return ""
}
