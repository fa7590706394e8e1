package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/dashboard"
	"github.com/IshaanNene/ShopScope/internal/observability"
	"github.com/IshaanNene/ShopScope/internal/sentiment"
)

var (
	dashAddr string
	dashData string
	provider string
)

// dashboardCmd creates the "dashboard" subcommand.
func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the datasets and review sentiment dashboard",
		Long: `Load products.csv, testimonials.csv and reviews.csv from the data directory
and serve them over HTTP. The reviews section filters by month and classifies
each review as POSITIVE or NEGATIVE.`,
		Args: cobra.NoArgs,
		RunE: runDashboard,
	}

	cmd.Flags().StringVar(&dashAddr, "addr", "", "listen address (default from config, :8501)")
	cmd.Flags().StringVar(&dashData, "data", "", "directory holding the dataset CSV files")
	cmd.Flags().StringVar(&provider, "sentiment", "", "sentiment provider: lexicon, ollama, openai, custom")

	return cmd
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(cfg *config.Config) {
		if dashAddr != "" {
			cfg.Dashboard.Addr = dashAddr
		}
		if dashData != "" {
			cfg.Dashboard.DataDir = dashData
		}
		if provider != "" {
			cfg.Sentiment.Provider = provider
		}
	})
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

	classifier, err := sentiment.New(cfg.Sentiment, logger)
	if err != nil {
		return fmt.Errorf("create classifier: %w", err)
	}

	opts := []dashboard.Option{dashboard.WithFallbackYear(cfg.Scrape.FallbackYear)}
	if cfg.Metrics.Enabled {
		metrics := observability.NewMetrics(logger)
		srv := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path)
		defer observability.Shutdown(srv, 5*time.Second)
		opts = append(opts, dashboard.WithMetrics(metrics))
	}

	srv := dashboard.New(cfg.Dashboard, classifier, logger, opts...)
	srv.Load()

	logger.Info("dashboard ready",
		"addr", cfg.Dashboard.Addr,
		"data", cfg.Dashboard.DataDir,
		"model", classifier.Model(),
	)
	return srv.ListenAndServe(ctx)
}
