package parser

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/types"
)

// Extractor turns rendered markup into records of one kind. It holds no
// state between calls other than the random source used for synthesized
// dates.
type Extractor struct {
	selectors    config.SelectorsConfig
	fallbackYear int
	reviews      *ReviewChain
	rng          *rand.Rand
	logger       *slog.Logger
}

// ExtractorOption configures the Extractor.
type ExtractorOption func(*Extractor)

// WithRand sets the random source used for synthesized days.
func WithRand(rng *rand.Rand) ExtractorOption {
	return func(e *Extractor) { e.rng = rng }
}

// NewExtractor builds an extractor from the selector configuration. It
// fails when a review strategy cannot be compiled.
func NewExtractor(sel config.SelectorsConfig, fallbackYear int, logger *slog.Logger, opts ...ExtractorOption) (*Extractor, error) {
	if fallbackYear == 0 {
		fallbackYear = types.DefaultFallbackYear
	}
	chain, err := NewReviewChain(sel.Review, logger)
	if err != nil {
		return nil, err
	}

	e := &Extractor{
		selectors:    sel,
		fallbackYear: fallbackYear,
		reviews:      chain,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:       logger.With("component", "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract returns every record of the given kind found in markup, in
// document order. Containers missing a required field are skipped.
func (e *Extractor) Extract(markup string, kind types.Kind) ([]types.Record, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	var records []types.Record
	switch kind {
	case types.KindProducts:
		records = e.extractProducts(root)
	case types.KindTestimonials:
		records = e.extractTestimonials(root)
	case types.KindReviews:
		records, err = e.extractReviews(root)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownKind, kind)
	}

	e.logger.Debug("extracted", "kind", kind, "records", len(records))
	return records, nil
}

func (e *Extractor) extractReviews(root *html.Node) ([]types.Record, error) {
	matches, strategy, err := e.reviews.Extract(root)
	if err != nil {
		return nil, err
	}

	records := make([]types.Record, 0, len(matches))
	for _, m := range matches {
		records = append(records, &types.ReviewRecord{
			Date:   e.resolveDate(m.Date, m.Index),
			Review: m.Text,
		})
	}
	if strategy != "" {
		e.logger.Debug("review strategy matched", "strategy", strategy, "matches", len(matches))
	}
	return records, nil
}

// resolveDate normalizes raw to YYYY-MM-DD, or synthesizes a date from the
// record index when raw is absent or unparseable.
func (e *Extractor) resolveDate(raw string, i int) string {
	if d, ok := NormalizeDate(raw); ok {
		return d
	}
	return types.SynthesizeDate(e.fallbackYear, i, e.rng)
}
