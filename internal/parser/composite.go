package parser

import (
	"fmt"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/IshaanNene/ShopScope/internal/config"
)

// ReviewMatch is one review located by a strategy, before date resolution.
type ReviewMatch struct {
	Index int // position among all matched containers, skipped ones included
	Text  string
	Date  string // raw, possibly empty
}

// ReviewStrategy is one alternative pattern for locating reviews.
type ReviewStrategy interface {
	Name() string
	Match(root *html.Node) ([]ReviewMatch, error)
}

// ReviewChain tries its strategies in order and keeps the matches of the
// first one that finds anything. Results are never merged across
// strategies, so one review is never emitted twice.
type ReviewChain struct {
	strategies []ReviewStrategy
	logger     *slog.Logger
}

// NewReviewChain compiles the configured strategies.
func NewReviewChain(cfg config.ReviewSelectors, logger *slog.Logger) (*ReviewChain, error) {
	chain := &ReviewChain{logger: logger.With("component", "review_chain")}

	for i, s := range cfg.Strategies {
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("%s_%d", s.Type, i)
		}
		switch s.Type {
		case "xpath":
			xs, err := newXPathStrategy(name, s.Selector, s.Text, cfg.Date)
			if err != nil {
				return nil, fmt.Errorf("review strategy %q: %w", name, err)
			}
			chain.strategies = append(chain.strategies, xs)
		default: // "css" or empty defaults to CSS
			chain.strategies = append(chain.strategies, &cssStrategy{
				name:     name,
				selector: s.Selector,
				text:     s.Text,
				date:     cfg.Date,
			})
		}
	}
	return chain, nil
}

// Strategies returns the strategy names in evaluation order.
func (c *ReviewChain) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Extract returns the matches of the first productive strategy and its name.
// No match at all is not an error.
func (c *ReviewChain) Extract(root *html.Node) ([]ReviewMatch, string, error) {
	for _, s := range c.strategies {
		matches, err := s.Match(root)
		if err != nil {
			c.logger.Warn("review strategy failed", "strategy", s.Name(), "error", err)
			continue
		}
		if len(matches) > 0 {
			return matches, s.Name(), nil
		}
	}
	return nil, "", nil
}
