package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/engine"
	"github.com/IshaanNene/ShopScope/internal/fetcher"
	"github.com/IshaanNene/ShopScope/internal/observability"
	"github.com/IshaanNene/ShopScope/internal/storage"
)

var (
	cfgFile    string
	verbose    bool
	only       string
	outputDir  string
	formats    string
	headless   bool
	maxPages   int
	maxClicks  int
	maxScrolls int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shopscope",
		Short: "ShopScope: storefront scraper and review sentiment dashboard",
		Long: `ShopScope drives a browser through a storefront and saves what it finds.

Products are read page by page, testimonials by scrolling until the page stops
growing, and reviews by pressing "load more" until no new reviews appear.
Each entity is written to its own CSV file, which the dashboard command serves
together with a sentiment breakdown of the reviews.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape products, testimonials and reviews",
		Long:  "Open a browser session, run each configured entity loop in turn and write one dataset file per entity.",
		Args:  cobra.NoArgs,
		RunE:  runScrape,
	}

	cmd.Flags().StringVar(&only, "only", "", "comma-separated entities to scrape (products,testimonials,reviews)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "comma-separated output formats: csv, json")
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser without a window")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum product pages (0 = use config)")
	cmd.Flags().IntVar(&maxClicks, "max-clicks", -1, "maximum load-more clicks (-1 = use config)")
	cmd.Flags().IntVar(&maxScrolls, "max-scrolls", -1, "maximum scroll rounds, 0 = unbounded (-1 = use config)")

	return cmd
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(cfg *config.Config) { applyScrapeOverrides(cmd, cfg) })
	if err != nil {
		return err
	}
	logger, closeLog, err := setupLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting scrape",
		"site", cfg.Site.BaseURL,
		"entities", cfg.Scrape.Entities,
		"output", cfg.Storage.OutputDir,
		"formats", cfg.Storage.Formats,
		"headless", cfg.Browser.Headless,
	)

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(logger)
		srv := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path)
		defer observability.Shutdown(srv, 5*time.Second)
	}

	store, err := storage.New(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}

	session, err := fetcher.NewBrowserSession(cfg.Browser, logger)
	if err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("close browser", "error", err)
		}
	}()

	eng, err := engine.New(cfg, session, store, metrics, logger)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	report := eng.Run(ctx)
	printReport(cmd.OutOrStdout(), report)

	if report.Failed() {
		return fmt.Errorf("scrape finished with errors: %w", report.Err())
	}
	return nil
}

func printReport(w io.Writer, report *engine.Report) {
	fmt.Fprintf(w, "\nScrape %s finished in %s\n", report.RunID, report.Duration.Round(time.Millisecond))
	for _, e := range report.Entities {
		status := "ok"
		if e.Err != nil {
			status = "error: " + e.Err.Error()
		}
		fmt.Fprintf(w, "   %-13s %5d records  %4d rounds  stop=%-13s %s\n", e.Kind, e.Records, e.Rounds, e.Stop, status)
		if e.Path != "" {
			fmt.Fprintf(w, "   %-13s -> %s\n", "", e.Path)
		}
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ShopScope %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Site:\n")
			fmt.Fprintf(w, "  Base URL:          %s\n", cfg.Site.BaseURL)
			fmt.Fprintf(w, "  Products:          %s\n", cfg.Site.PageURL(1))
			fmt.Fprintf(w, "  Testimonials:      %s\n", cfg.Site.TestimonialsURL())
			fmt.Fprintf(w, "  Reviews:           %s\n", cfg.Site.ReviewsURL())
			fmt.Fprintf(w, "\nBrowser:\n")
			fmt.Fprintf(w, "  Headless:          %v\n", cfg.Browser.Headless)
			fmt.Fprintf(w, "  Stealth:           %v\n", cfg.Browser.Stealth)
			fmt.Fprintf(w, "  Nav Timeout:       %s\n", cfg.Browser.NavigationTimeout)
			fmt.Fprintf(w, "\nScrape:\n")
			fmt.Fprintf(w, "  Entities:          %s\n", strings.Join(cfg.Scrape.Entities, ", "))
			fmt.Fprintf(w, "  Poll:              every %s, up to %s\n", cfg.Scrape.Poll.Interval, cfg.Scrape.Poll.Timeout)
			fmt.Fprintf(w, "  Max Pages:         %d\n", cfg.Scrape.Products.MaxPages)
			fmt.Fprintf(w, "  Max Scrolls:       %d\n", cfg.Scrape.Testimonials.MaxRounds)
			fmt.Fprintf(w, "  Max Clicks:        %d\n", cfg.Scrape.Reviews.MaxClicks)
			fmt.Fprintf(w, "  Review Strategies: %d configured\n", len(cfg.Selectors.Review.Strategies))
			fmt.Fprintf(w, "\nStorage:\n")
			fmt.Fprintf(w, "  Output Dir:        %s\n", cfg.Storage.OutputDir)
			fmt.Fprintf(w, "  Formats:           %s\n", strings.Join(cfg.Storage.Formats, ", "))
			fmt.Fprintf(w, "\nSentiment:\n")
			fmt.Fprintf(w, "  Provider:          %s\n", cfg.Sentiment.Provider)
			fmt.Fprintf(w, "  Model:             %s\n", cfg.Sentiment.Model)
			fmt.Fprintf(w, "\nMetrics:\n")
			fmt.Fprintf(w, "  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Fprintf(w, "  Port:              %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}

// loadConfig loads the config file, applies flag overrides and validates.
func loadConfig(override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if override != nil {
		override(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogger creates a structured logger. The returned func closes the
// log file when output is a path.
func setupLogger(cfg config.LoggingConfig) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var out io.Writer = os.Stderr
	closer := func() {}
	switch cfg.Output {
	case "", "stderr":
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closer = func() { f.Close() }
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler), closer, nil
}

// applyScrapeOverrides applies the scrape command's flags to the config.
func applyScrapeOverrides(cmd *cobra.Command, cfg *config.Config) {
	if only != "" {
		cfg.Scrape.Entities = splitList(only)
	}
	if outputDir != "" {
		cfg.Storage.OutputDir = outputDir
	}
	if formats != "" {
		cfg.Storage.Formats = splitList(strings.ToLower(formats))
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = headless
	}
	if maxPages > 0 {
		cfg.Scrape.Products.MaxPages = maxPages
	}
	if maxClicks >= 0 {
		cfg.Scrape.Reviews.MaxClicks = maxClicks
	}
	if maxScrolls >= 0 {
		cfg.Scrape.Testimonials.MaxRounds = maxScrolls
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
