package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad base url", func(c *Config) { c.Site.BaseURL = "ftp://x" }, "site.base_url"},
		{"products path without page", func(c *Config) { c.Site.ProductsPath = "/products" }, "products_path"},
		{"unknown entity", func(c *Config) { c.Scrape.Entities = []string{"orders"} }, "scrape.entities"},
		{"zero pages", func(c *Config) { c.Scrape.Products.MaxPages = 0 }, "max_pages"},
		{"negative scroll cap", func(c *Config) { c.Scrape.Testimonials.MaxRounds = -1 }, "testimonials.max_rounds"},
		{"poll timeout below interval", func(c *Config) { c.Scrape.Poll.Timeout = time.Millisecond }, "poll.timeout"},
		{"strategy type", func(c *Config) { c.Selectors.Review.Strategies[0].Type = "regex" }, "strategies[0].type"},
		{"storage format", func(c *Config) { c.Storage.Formats = []string{"parquet"} }, "parquet"},
		{"sentiment provider", func(c *Config) { c.Sentiment.Provider = "bert" }, "sentiment.provider"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shopscope.yaml")
	yaml := `
site:
  base_url: "http://localhost:8080"
scrape:
  entities: ["reviews"]
  reviews:
    max_clicks: 5
storage:
  output_dir: "/tmp/out"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Site.BaseURL != "http://localhost:8080" {
		t.Errorf("base_url = %q", cfg.Site.BaseURL)
	}
	if len(cfg.Scrape.Entities) != 1 || cfg.Scrape.Entities[0] != "reviews" {
		t.Errorf("entities = %v", cfg.Scrape.Entities)
	}
	if cfg.Scrape.Reviews.MaxClicks != 5 {
		t.Errorf("max_clicks = %d, want 5", cfg.Scrape.Reviews.MaxClicks)
	}
	// untouched keys keep their defaults
	if cfg.Scrape.Products.MaxPages != 100 {
		t.Errorf("max_pages = %d, want 100", cfg.Scrape.Products.MaxPages)
	}
	if cfg.Storage.OutputDir != "/tmp/out" {
		t.Errorf("output_dir = %q", cfg.Storage.OutputDir)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SHOPSCOPE_SCRAPE_PRODUCTS_MAX_PAGES", "7")
	t.Setenv("SHOPSCOPE_LOGGING_LEVEL", "debug")

	dir := t.TempDir()
	path := filepath.Join(dir, "shopscope.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  format: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scrape.Products.MaxPages != 7 {
		t.Errorf("max_pages = %d, want 7", cfg.Scrape.Products.MaxPages)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestSiteURLs(t *testing.T) {
	s := DefaultConfig().Site
	if got := s.PageURL(3); got != "https://web-scraping.dev/products?page=3" {
		t.Errorf("PageURL = %q", got)
	}
	if got := s.ReviewsURL(); got != "https://web-scraping.dev/reviews" {
		t.Errorf("ReviewsURL = %q", got)
	}
	if got := s.TestimonialsURL(); got != "https://web-scraping.dev/testimonials/" {
		t.Errorf("TestimonialsURL = %q", got)
	}
}
