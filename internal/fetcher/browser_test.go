package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestStealthOverrideJS(t *testing.T) {
	sc := StealthFromConfig(config.DefaultConfig().Browser)
	js := sc.OverrideJS()
	if !strings.Contains(js, sc.Platform) {
		t.Errorf("override script should set platform %q", sc.Platform)
	}
	if sc.HardwareConcurrency < 4 || sc.HardwareConcurrency > 16 {
		t.Errorf("hardware concurrency %d out of range", sc.HardwareConcurrency)
	}
	if !strings.HasPrefix(js, "(() => {") {
		t.Error("override script should be self-invoking")
	}
}

// TestBrowserSessionLive drives a real Chromium. It needs network access
// and is opt-in via SHOPSCOPE_LIVE=1.
func TestBrowserSessionLive(t *testing.T) {
	if testing.Short() || os.Getenv("SHOPSCOPE_LIVE") == "" {
		t.Skip("set SHOPSCOPE_LIVE=1 to run browser tests")
	}

	cfg := config.DefaultConfig()
	s, err := NewBrowserSession(cfg.Browser, testLogger)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.Navigate(ctx, cfg.Site.PageURL(1)); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	n, err := s.Execute(ctx, `(sel) => document.querySelectorAll(sel).length`, "div.product")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if n.Int() == 0 {
		t.Error("expected products on page 1")
	}

	_, err = s.Find(ctx, "#definitely-not-here", 500*time.Millisecond)
	if !errors.Is(err, types.ErrElementNotFound) {
		t.Errorf("expected ErrElementNotFound, got %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := s.Markup(ctx); !errors.Is(err, types.ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed after close, got %v", err)
	}
}
