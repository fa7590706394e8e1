package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/IshaanNene/ShopScope/internal/types"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := ValidateURL(cfg.Site.BaseURL); err != nil {
		return fmt.Errorf("site.base_url: %w", err)
	}
	if strings.Count(cfg.Site.ProductsPath, "%d") != 1 {
		return fmt.Errorf("site.products_path must contain exactly one %%d, got %q", cfg.Site.ProductsPath)
	}

	if cfg.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be > 0")
	}
	if cfg.Browser.Proxy != "" {
		if _, err := url.Parse(cfg.Browser.Proxy); err != nil {
			return fmt.Errorf("invalid proxy URL %q: %w", cfg.Browser.Proxy, err)
		}
	}

	if len(cfg.Scrape.Entities) == 0 {
		return fmt.Errorf("scrape.entities must name at least one entity")
	}
	for _, e := range cfg.Scrape.Entities {
		if _, err := types.ParseKind(e); err != nil {
			return fmt.Errorf("scrape.entities: %w", err)
		}
	}
	if cfg.Scrape.FallbackYear < 1 || cfg.Scrape.FallbackYear > 9999 {
		return fmt.Errorf("scrape.fallback_year must be 1-9999, got %d", cfg.Scrape.FallbackYear)
	}
	if cfg.Scrape.Poll.Interval <= 0 {
		return fmt.Errorf("scrape.poll.interval must be > 0")
	}
	if cfg.Scrape.Poll.Timeout < cfg.Scrape.Poll.Interval {
		return fmt.Errorf("scrape.poll.timeout must be >= scrape.poll.interval")
	}
	if cfg.Scrape.Products.MaxPages < 1 {
		return fmt.Errorf("scrape.products.max_pages must be >= 1, got %d", cfg.Scrape.Products.MaxPages)
	}
	if cfg.Scrape.Products.Delay < 0 {
		return fmt.Errorf("scrape.products.delay must be >= 0")
	}
	if cfg.Scrape.Testimonials.ScrollStep < 1 {
		return fmt.Errorf("scrape.testimonials.scroll_step must be >= 1, got %d", cfg.Scrape.Testimonials.ScrollStep)
	}
	if cfg.Scrape.Testimonials.MaxRounds < 0 {
		return fmt.Errorf("scrape.testimonials.max_rounds must be >= 0, got %d", cfg.Scrape.Testimonials.MaxRounds)
	}
	if cfg.Scrape.Reviews.MaxClicks < 0 {
		return fmt.Errorf("scrape.reviews.max_clicks must be >= 0, got %d", cfg.Scrape.Reviews.MaxClicks)
	}
	if cfg.Scrape.Reviews.MaxRounds < 0 {
		return fmt.Errorf("scrape.reviews.max_rounds must be >= 0, got %d", cfg.Scrape.Reviews.MaxRounds)
	}
	if cfg.Scrape.Reviews.ButtonSelector == "" || cfg.Scrape.Reviews.CountSelector == "" {
		return fmt.Errorf("scrape.reviews.button_selector and count_selector are required")
	}

	if cfg.Selectors.Product.Container == "" || cfg.Selectors.Testimonial.Container == "" {
		return fmt.Errorf("selectors.product.container and selectors.testimonial.container are required")
	}
	if len(cfg.Selectors.Review.Strategies) == 0 {
		return fmt.Errorf("selectors.review.strategies must list at least one strategy")
	}
	for i, s := range cfg.Selectors.Review.Strategies {
		if s.Type != "css" && s.Type != "xpath" {
			return fmt.Errorf("selectors.review.strategies[%d].type must be 'css' or 'xpath', got %q", i, s.Type)
		}
		if s.Selector == "" {
			return fmt.Errorf("selectors.review.strategies[%d].selector is required", i)
		}
	}

	validFormats := map[string]bool{"csv": true, "json": true}
	if len(cfg.Storage.Formats) == 0 {
		return fmt.Errorf("storage.formats must list at least one format")
	}
	for _, f := range cfg.Storage.Formats {
		if !validFormats[f] {
			return fmt.Errorf("storage.formats entry %q is not supported (valid: csv, json)", f)
		}
	}

	if cfg.Dashboard.TopWords < 1 {
		return fmt.Errorf("dashboard.top_words must be >= 1, got %d", cfg.Dashboard.TopWords)
	}

	validProviders := map[string]bool{
		"lexicon": true, "ollama": true, "openai": true, "custom": true,
	}
	if !validProviders[cfg.Sentiment.Provider] {
		return fmt.Errorf("sentiment.provider must be lexicon/ollama/openai/custom, got %q", cfg.Sentiment.Provider)
	}
	if cfg.Sentiment.CacheSize < 0 {
		return fmt.Errorf("sentiment.cache_size must be >= 0, got %d", cfg.Sentiment.CacheSize)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks if a URL string is usable as a site root.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

// PageURL returns the absolute URL of the given products page.
func (s SiteConfig) PageURL(page int) string {
	return strings.TrimRight(s.BaseURL, "/") + fmt.Sprintf(s.ProductsPath, page)
}

// TestimonialsURL returns the absolute testimonials URL.
func (s SiteConfig) TestimonialsURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.TestimonialsPath
}

// ReviewsURL returns the absolute reviews URL.
func (s SiteConfig) ReviewsURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.ReviewsPath
}
