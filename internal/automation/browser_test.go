package automation

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ysmood/gson"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/fetcher"
	"github.com/IshaanNene/ShopScope/internal/fetcher/fetchertest"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var fastPoll = config.PollConfig{Interval: time.Millisecond, Timeout: 50 * time.Millisecond}

func TestWaitStableReturnsSettledValue(t *testing.T) {
	samples := []int{100, 200, 300, 300, 400}
	i := 0
	probe := func(context.Context) (int, error) {
		v := samples[i]
		if i < len(samples)-1 {
			i++
		}
		return v, nil
	}

	got, err := WaitStable(context.Background(), time.Millisecond, time.Second, probe)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if got != 300 {
		t.Errorf("settled = %d, want 300", got)
	}
}

func TestWaitStableTimesOutWithoutError(t *testing.T) {
	n := 0
	probe := func(context.Context) (int, error) {
		n++
		return n, nil
	}
	got, err := WaitStable(context.Background(), time.Millisecond, 10*time.Millisecond, probe)
	if err != nil {
		t.Fatalf("timeout should not be an error: %v", err)
	}
	if got < 2 {
		t.Errorf("expected several samples, got last=%d", got)
	}
}

func TestWaitStableProbeError(t *testing.T) {
	boom := errors.New("boom")
	_, err := WaitStable(context.Background(), time.Millisecond, time.Second, func(context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected probe error, got %v", err)
	}
}

func TestWaitStableContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n := 0
	_, err := WaitStable(ctx, time.Millisecond, time.Second, func(context.Context) (int, error) {
		n++
		return n, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScrollAndCount(t *testing.T) {
	height := 1000
	var scrolled []int
	s := &fetchertest.Session{
		ExecuteFunc: func(js string, args []any) (gson.JSON, error) {
			switch js {
			case JSScrollBy:
				scrolled = append(scrolled, args[0].(int))
				height += 500
				return gson.New(nil), nil
			case JSScrollHeight:
				return fetchertest.Number(height), nil
			case JSCountElements:
				if args[0] != "div.review" {
					t.Errorf("unexpected selector %v", args[0])
				}
				return fetchertest.Number(7), nil
			}
			return gson.New(nil), nil
		},
	}
	ba := NewBrowserAutomation(s, fastPoll, testLogger)
	ctx := context.Background()

	if err := ba.ScrollBy(ctx, 5000); err != nil {
		t.Fatal(err)
	}
	if len(scrolled) != 1 || scrolled[0] != 5000 {
		t.Errorf("scrolled = %v", scrolled)
	}
	h, err := ba.StableHeight(ctx)
	if err != nil || h != 1500 {
		t.Errorf("height = %d, %v; want 1500", h, err)
	}
	c, err := ba.StableCount(ctx, "div.review")
	if err != nil || c != 7 {
		t.Errorf("count = %d, %v; want 7", c, err)
	}
}

func TestClickIfVisible(t *testing.T) {
	visible := &fetchertest.Element{}
	hidden := &fetchertest.Element{Hidden: true}
	broken := &fetchertest.Element{ClickErr: errors.New("detached")}

	tests := []struct {
		name    string
		find    func(string) (fetcher.Element, error)
		want    ClickOutcome
		wantErr bool
	}{
		{"visible", func(string) (fetcher.Element, error) { return visible, nil }, Clicked, false},
		{"hidden", func(string) (fetcher.Element, error) { return hidden, nil }, ClickHidden, false},
		{"missing", nil, ClickNotFound, false},
		{"click error", func(string) (fetcher.Element, error) { return broken, nil }, ClickFailed, true},
		{"lookup error", func(string) (fetcher.Element, error) { return nil, errors.New("cdp gone") }, ClickFailed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fetchertest.Session{FindFunc: tt.find}
			ba := NewBrowserAutomation(s, fastPoll, testLogger)
			got, err := ba.ClickIfVisible(context.Background(), "button.load-more", time.Second)
			if got != tt.want {
				t.Errorf("outcome = %s, want %s", got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if visible.Clicks() != 1 {
		t.Errorf("visible clicks = %d, want 1", visible.Clicks())
	}
	if hidden.Clicks() != 0 {
		t.Error("hidden element should not be clicked")
	}
}
