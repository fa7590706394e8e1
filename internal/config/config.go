package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for ShopScope.
type Config struct {
	Site      SiteConfig      `mapstructure:"site"      yaml:"site"`
	Browser   BrowserConfig   `mapstructure:"browser"   yaml:"browser"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"    yaml:"scrape"`
	Selectors SelectorsConfig `mapstructure:"selectors" yaml:"selectors"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Sentiment SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   yaml:"metrics"`
}

// SiteConfig locates the three source pages.
type SiteConfig struct {
	BaseURL          string `mapstructure:"base_url"          yaml:"base_url"`
	ProductsPath     string `mapstructure:"products_path"     yaml:"products_path"` // must contain one %d for the page number
	TestimonialsPath string `mapstructure:"testimonials_path" yaml:"testimonials_path"`
	ReviewsPath      string `mapstructure:"reviews_path"      yaml:"reviews_path"`
}

// BrowserConfig controls the automated browser session.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless"           yaml:"headless"`
	Bin               string        `mapstructure:"bin"                yaml:"bin"`
	Proxy             string        `mapstructure:"proxy"              yaml:"proxy"`
	Stealth           bool          `mapstructure:"stealth"            yaml:"stealth"`
	WindowSize        string        `mapstructure:"window_size"        yaml:"window_size"`
	UserAgent         string        `mapstructure:"user_agent"         yaml:"user_agent"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// ScrapeConfig controls the three scrape loops.
type ScrapeConfig struct {
	Entities     []string       `mapstructure:"entities"      yaml:"entities"`
	FallbackYear int            `mapstructure:"fallback_year" yaml:"fallback_year"`
	Poll         PollConfig     `mapstructure:"poll"          yaml:"poll"`
	Products     ProductsConfig `mapstructure:"products"      yaml:"products"`
	Testimonials ScrollConfig   `mapstructure:"testimonials"  yaml:"testimonials"`
	Reviews      LoadMoreConfig `mapstructure:"reviews"       yaml:"reviews"`
}

// PollConfig controls the wait-until-stable primitive used after every interaction.
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"  yaml:"timeout"`
}

// ProductsConfig controls the paginated product loop.
type ProductsConfig struct {
	MaxPages        int           `mapstructure:"max_pages"         yaml:"max_pages"`
	ExpectedPerPage int           `mapstructure:"expected_per_page" yaml:"expected_per_page"`
	Delay           time.Duration `mapstructure:"delay"             yaml:"delay"`
}

// ScrollConfig controls the infinite-scroll testimonial loop.
type ScrollConfig struct {
	ScrollStep int `mapstructure:"scroll_step" yaml:"scroll_step"`
	MaxRounds  int `mapstructure:"max_rounds"  yaml:"max_rounds"` // 0 = unbounded
}

// LoadMoreConfig controls the load-more review loop.
type LoadMoreConfig struct {
	MaxClicks      int           `mapstructure:"max_clicks"      yaml:"max_clicks"`
	MaxRounds      int           `mapstructure:"max_rounds"      yaml:"max_rounds"` // 0 = unbounded
	ButtonSelector string        `mapstructure:"button_selector" yaml:"button_selector"`
	CountSelector  string        `mapstructure:"count_selector"  yaml:"count_selector"`
	FindTimeout    time.Duration `mapstructure:"find_timeout"    yaml:"find_timeout"`
}

// SelectorsConfig holds the structural selectors used for extraction.
type SelectorsConfig struct {
	Product     ProductSelectors     `mapstructure:"product"     yaml:"product"`
	Testimonial TestimonialSelectors `mapstructure:"testimonial" yaml:"testimonial"`
	Review      ReviewSelectors      `mapstructure:"review"      yaml:"review"`
}

// ProductSelectors locate product containers and their fields.
type ProductSelectors struct {
	Container string `mapstructure:"container" yaml:"container"`
	Title     string `mapstructure:"title"     yaml:"title"`
	Price     string `mapstructure:"price"     yaml:"price"`
}

// TestimonialSelectors locate testimonial containers and their text.
type TestimonialSelectors struct {
	Container string `mapstructure:"container" yaml:"container"`
	Text      string `mapstructure:"text"      yaml:"text"`
}

// ReviewSelectors holds the ordered review extraction strategies.
type ReviewSelectors struct {
	Strategies []ReviewStrategy `mapstructure:"strategies" yaml:"strategies"`
	Date       string           `mapstructure:"date"       yaml:"date"`
}

// ReviewStrategy is one alternative pattern for locating reviews.
type ReviewStrategy struct {
	Name     string `mapstructure:"name"     yaml:"name"`
	Type     string `mapstructure:"type"     yaml:"type"` // css, xpath
	Selector string `mapstructure:"selector" yaml:"selector"`
	Text     string `mapstructure:"text"     yaml:"text"` // sub-selector for the text; empty = the match itself
}

// StorageConfig controls dataset output.
type StorageConfig struct {
	OutputDir string   `mapstructure:"output_dir" yaml:"output_dir"`
	Formats   []string `mapstructure:"formats"    yaml:"formats"`
}

// DashboardConfig controls the dashboard server.
type DashboardConfig struct {
	Addr     string `mapstructure:"addr"      yaml:"addr"`
	DataDir  string `mapstructure:"data_dir"  yaml:"data_dir"`
	TopWords int    `mapstructure:"top_words" yaml:"top_words"`
}

// SentimentConfig selects and configures the review classifier.
type SentimentConfig struct {
	Provider    string        `mapstructure:"provider"    yaml:"provider"` // lexicon, ollama, openai, custom
	Model       string        `mapstructure:"model"       yaml:"model"`
	Endpoint    string        `mapstructure:"endpoint"    yaml:"endpoint"`
	APIKey      string        `mapstructure:"api_key"     yaml:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"     yaml:"timeout"`
	CacheSize   int           `mapstructure:"cache_size"  yaml:"cache_size"`
	MaxTokens   int           `mapstructure:"max_tokens"  yaml:"max_tokens"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with the values the target site expects.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:          "https://web-scraping.dev",
			ProductsPath:     "/products?page=%d",
			TestimonialsPath: "/testimonials/",
			ReviewsPath:      "/reviews",
		},
		Browser: BrowserConfig{
			Headless:          true,
			WindowSize:        "1920,1080",
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			NavigationTimeout: 30 * time.Second,
		},
		Scrape: ScrapeConfig{
			Entities:     []string{"products", "testimonials", "reviews"},
			FallbackYear: 2023,
			Poll: PollConfig{
				Interval: 250 * time.Millisecond,
				Timeout:  3 * time.Second,
			},
			Products: ProductsConfig{
				MaxPages:        100,
				ExpectedPerPage: 28,
				Delay:           1 * time.Second,
			},
			Testimonials: ScrollConfig{
				ScrollStep: 5000,
				MaxRounds:  200,
			},
			Reviews: LoadMoreConfig{
				MaxClicks:      100,
				MaxRounds:      200,
				ButtonSelector: "button.load-more",
				CountSelector:  "div.review, div.col p",
				FindTimeout:    10 * time.Second,
			},
		},
		Selectors: SelectorsConfig{
			Product: ProductSelectors{
				Container: "div.product",
				Title:     "h3",
				Price:     ".price",
			},
			Testimonial: TestimonialSelectors{
				Container: "div.testimonial",
				Text:      "p.text",
			},
			Review: ReviewSelectors{
				Strategies: []ReviewStrategy{
					{Name: "review_container", Type: "css", Selector: "div.review", Text: "p"},
					{Name: "column_paragraph", Type: "css", Selector: "div.col p"},
					{Name: "review_xpath", Type: "xpath", Selector: "//*[contains(concat(' ', normalize-space(@class), ' '), ' review ')]//p"},
				},
				Date: ".date",
			},
		},
		Storage: StorageConfig{
			OutputDir: ".",
			Formats:   []string{"csv"},
		},
		Dashboard: DashboardConfig{
			Addr:     ":8501",
			DataDir:  ".",
			TopWords: 100,
		},
		Sentiment: SentimentConfig{
			Provider:    "lexicon",
			Model:       "lexicon-v1",
			Timeout:     60 * time.Second,
			CacheSize:   4096,
			MaxTokens:   64,
			Temperature: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
