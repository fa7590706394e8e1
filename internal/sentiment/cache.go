package sentiment

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached memoizes another classifier's results per model and text.
type Cached struct {
	inner Classifier
	cache *lru.Cache[string, Result]
}

// NewCached wraps inner with an LRU of the given size.
func NewCached(inner Classifier, size int) (*Cached, error) {
	cache, err := lru.New[string, Result](size)
	if err != nil {
		return nil, fmt.Errorf("create sentiment cache: %w", err)
	}
	return &Cached{inner: inner, cache: cache}, nil
}

func (c *Cached) Model() string { return c.inner.Model() }

// Classify answers from the cache and sends only the misses to the wrapped
// classifier, in one batch.
func (c *Cached) Classify(ctx context.Context, texts []string) ([]Result, error) {
	out := make([]Result, len(texts))
	var missTexts []string
	var missIdx []int
	for i, t := range texts {
		if r, ok := c.cache.Get(c.key(t)); ok {
			out[i] = r
			continue
		}
		missTexts = append(missTexts, t)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	got, err := c.inner.Classify(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, r := range got {
		out[missIdx[j]] = r
		c.cache.Add(c.key(missTexts[j]), r)
	}
	return out, nil
}

func (c *Cached) key(text string) string {
	return c.inner.Model() + "\x00" + text
}

// Len returns the number of cached texts.
func (c *Cached) Len() int { return c.cache.Len() }
