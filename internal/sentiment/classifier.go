// Package sentiment classifies review texts into POSITIVE or NEGATIVE with
// a confidence score.
package sentiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/ShopScope/internal/config"
)

// Label is a sentiment class.
type Label string

const (
	Positive Label = "POSITIVE"
	Negative Label = "NEGATIVE"
)

// Labels lists every label in display order.
var Labels = []Label{Positive, Negative}

// Result is the classification of one text.
type Result struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"` // in [0,1]
}

// Classifier labels texts. Results are index-aligned with the input and
// deterministic for a fixed model.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([]Result, error)
	Model() string
}

// New builds the configured classifier, wrapped in an LRU cache when
// cfg.CacheSize > 0.
func New(cfg config.SentimentConfig, logger *slog.Logger) (Classifier, error) {
	var c Classifier
	switch LLMProvider(cfg.Provider) {
	case "", "lexicon":
		c = NewLexicon(cfg.Model)
	case ProviderOllama, ProviderOpenAI, ProviderCustom:
		c = NewLLMClassifier(LLMConfig{
			Provider:    LLMProvider(cfg.Provider),
			Endpoint:    cfg.Endpoint,
			Model:       cfg.Model,
			APIKey:      cfg.APIKey,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported sentiment provider %q", cfg.Provider)
	}

	if cfg.CacheSize > 0 {
		return NewCached(c, cfg.CacheSize)
	}
	return c, nil
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
