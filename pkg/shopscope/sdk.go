// Package shopscope provides a public SDK for embedding ShopScope as a library.
//
// Example usage:
//
//	s := shopscope.NewScraper(
//	    shopscope.WithEntities("products", "reviews"),
//	    shopscope.WithOutput("./data", "csv", "json"),
//	    shopscope.WithMaxPages(5),
//	)
//
//	res, err := s.Run(ctx)
//	for _, e := range res.Entities {
//	    fmt.Println(e.Entity, e.Records, e.Path)
//	}
package shopscope

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/engine"
	"github.com/IshaanNene/ShopScope/internal/fetcher"
	"github.com/IshaanNene/ShopScope/internal/sentiment"
	"github.com/IshaanNene/ShopScope/internal/storage"
)

// Scraper is the high-level API for using ShopScope as a library.
type Scraper struct {
	cfg     *config.Config
	logger  *slog.Logger
	session fetcher.Session
}

// Option configures a Scraper.
type Option func(*config.Config)

// WithBaseURL points the scraper at another copy of the storefront.
func WithBaseURL(u string) Option {
	return func(c *config.Config) { c.Site.BaseURL = u }
}

// WithEntities limits the run to the named entities, in the given order.
func WithEntities(entities ...string) Option {
	return func(c *config.Config) { c.Scrape.Entities = entities }
}

// WithOutput sets the output directory and formats.
func WithOutput(dir string, formats ...string) Option {
	return func(c *config.Config) {
		c.Storage.OutputDir = dir
		if len(formats) > 0 {
			c.Storage.Formats = formats
		}
	}
}

// WithHeadless shows or hides the browser window.
func WithHeadless(headless bool) Option {
	return func(c *config.Config) { c.Browser.Headless = headless }
}

// WithMaxPages caps the number of product pages.
func WithMaxPages(n int) Option {
	return func(c *config.Config) { c.Scrape.Products.MaxPages = n }
}

// WithMaxScrolls caps the testimonial scroll rounds. 0 means unbounded.
func WithMaxScrolls(n int) Option {
	return func(c *config.Config) { c.Scrape.Testimonials.MaxRounds = n }
}

// WithMaxClicks caps the load-more clicks.
func WithMaxClicks(n int) Option {
	return func(c *config.Config) { c.Scrape.Reviews.MaxClicks = n }
}

// WithPoll sets how often and how long page state is sampled after each
// interaction.
func WithPoll(interval, timeout time.Duration) Option {
	return func(c *config.Config) {
		c.Scrape.Poll.Interval = interval
		c.Scrape.Poll.Timeout = timeout
	}
}

// WithVerbose enables debug-level logging.
func WithVerbose() Option {
	return func(c *config.Config) { c.Logging.Level = "debug" }
}

// NewScraper creates a new Scraper with the given options.
func NewScraper(opts ...Option) *Scraper {
	cfg := config.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	level := slog.LevelInfo
	if cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return &Scraper{cfg: cfg, logger: logger}
}

// EntityResult summarizes one entity of a run.
type EntityResult struct {
	Entity   string
	Records  int
	Rounds   int
	Stop     string
	Path     string
	Duration time.Duration
	Err      error
}

// Result summarizes a run.
type Result struct {
	RunID    string
	Duration time.Duration
	Entities []EntityResult
}

// Run scrapes every configured entity and writes its dataset. The returned
// error joins the per-entity failures; the Result is complete either way.
func (s *Scraper) Run(ctx context.Context) (*Result, error) {
	if err := config.Validate(s.cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	store, err := storage.New(s.cfg.Storage, s.logger)
	if err != nil {
		return nil, fmt.Errorf("create storage: %w", err)
	}

	session := s.session
	if session == nil {
		bs, err := fetcher.NewBrowserSession(s.cfg.Browser, s.logger)
		if err != nil {
			return nil, fmt.Errorf("open browser: %w", err)
		}
		defer bs.Close()
		session = bs
	}

	eng, err := engine.New(s.cfg, session, store, nil, s.logger)
	if err != nil {
		return nil, err
	}
	report := eng.Run(ctx)

	res := &Result{RunID: report.RunID, Duration: report.Duration}
	for _, e := range report.Entities {
		res.Entities = append(res.Entities, EntityResult{
			Entity:   string(e.Kind),
			Records:  e.Records,
			Rounds:   e.Rounds,
			Stop:     string(e.Stop),
			Path:     e.Path,
			Duration: e.Duration,
			Err:      e.Err,
		})
	}
	return res, report.Err()
}

// Sentiment is the classification of one review.
type Sentiment struct {
	Label      string
	Confidence float64
}

// ClassifyReviews labels texts POSITIVE or NEGATIVE with the built-in
// lexicon model.
func ClassifyReviews(ctx context.Context, texts []string) ([]Sentiment, error) {
	results, err := sentiment.NewLexicon("").Classify(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([]Sentiment, len(results))
	for i, r := range results {
		out[i] = Sentiment{Label: string(r.Label), Confidence: r.Confidence}
	}
	return out, nil
}
