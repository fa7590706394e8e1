package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and CLI flags.
// Priority (highest to lowest): CLI flags > env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// A missing .env is fine; a malformed one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("SHOPSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("shopscope")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".shopscope"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides resolve.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("site.base_url", cfg.Site.BaseURL)
	v.SetDefault("site.products_path", cfg.Site.ProductsPath)
	v.SetDefault("site.testimonials_path", cfg.Site.TestimonialsPath)
	v.SetDefault("site.reviews_path", cfg.Site.ReviewsPath)

	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.bin", cfg.Browser.Bin)
	v.SetDefault("browser.proxy", cfg.Browser.Proxy)
	v.SetDefault("browser.stealth", cfg.Browser.Stealth)
	v.SetDefault("browser.window_size", cfg.Browser.WindowSize)
	v.SetDefault("browser.user_agent", cfg.Browser.UserAgent)
	v.SetDefault("browser.navigation_timeout", cfg.Browser.NavigationTimeout)

	v.SetDefault("scrape.entities", cfg.Scrape.Entities)
	v.SetDefault("scrape.fallback_year", cfg.Scrape.FallbackYear)
	v.SetDefault("scrape.poll.interval", cfg.Scrape.Poll.Interval)
	v.SetDefault("scrape.poll.timeout", cfg.Scrape.Poll.Timeout)
	v.SetDefault("scrape.products.max_pages", cfg.Scrape.Products.MaxPages)
	v.SetDefault("scrape.products.expected_per_page", cfg.Scrape.Products.ExpectedPerPage)
	v.SetDefault("scrape.products.delay", cfg.Scrape.Products.Delay)
	v.SetDefault("scrape.testimonials.scroll_step", cfg.Scrape.Testimonials.ScrollStep)
	v.SetDefault("scrape.testimonials.max_rounds", cfg.Scrape.Testimonials.MaxRounds)
	v.SetDefault("scrape.reviews.max_clicks", cfg.Scrape.Reviews.MaxClicks)
	v.SetDefault("scrape.reviews.max_rounds", cfg.Scrape.Reviews.MaxRounds)
	v.SetDefault("scrape.reviews.button_selector", cfg.Scrape.Reviews.ButtonSelector)
	v.SetDefault("scrape.reviews.count_selector", cfg.Scrape.Reviews.CountSelector)
	v.SetDefault("scrape.reviews.find_timeout", cfg.Scrape.Reviews.FindTimeout)

	v.SetDefault("selectors.product.container", cfg.Selectors.Product.Container)
	v.SetDefault("selectors.product.title", cfg.Selectors.Product.Title)
	v.SetDefault("selectors.product.price", cfg.Selectors.Product.Price)
	v.SetDefault("selectors.testimonial.container", cfg.Selectors.Testimonial.Container)
	v.SetDefault("selectors.testimonial.text", cfg.Selectors.Testimonial.Text)
	v.SetDefault("selectors.review.date", cfg.Selectors.Review.Date)

	v.SetDefault("storage.output_dir", cfg.Storage.OutputDir)
	v.SetDefault("storage.formats", cfg.Storage.Formats)

	v.SetDefault("dashboard.addr", cfg.Dashboard.Addr)
	v.SetDefault("dashboard.data_dir", cfg.Dashboard.DataDir)
	v.SetDefault("dashboard.top_words", cfg.Dashboard.TopWords)

	v.SetDefault("sentiment.provider", cfg.Sentiment.Provider)
	v.SetDefault("sentiment.model", cfg.Sentiment.Model)
	v.SetDefault("sentiment.endpoint", cfg.Sentiment.Endpoint)
	v.SetDefault("sentiment.api_key", cfg.Sentiment.APIKey)
	v.SetDefault("sentiment.timeout", cfg.Sentiment.Timeout)
	v.SetDefault("sentiment.cache_size", cfg.Sentiment.CacheSize)
	v.SetDefault("sentiment.max_tokens", cfg.Sentiment.MaxTokens)
	v.SetDefault("sentiment.temperature", cfg.Sentiment.Temperature)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
