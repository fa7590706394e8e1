package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/fetcher"
	"github.com/IshaanNene/ShopScope/internal/types"
)

// Page scripts. Each is a function expression evaluated by Session.Execute.
const (
	JSScrollHeight   = `() => document.body.scrollHeight`
	JSScrollBy       = `(dy) => window.scrollBy(0, dy)`
	JSScrollToBottom = `() => window.scrollTo(0, document.body.scrollHeight)`
	JSCountElements  = `(sel) => document.querySelectorAll(sel).length`
)

// BrowserAutomation handles page interactions on top of a Session.
type BrowserAutomation struct {
	session fetcher.Session
	poll    config.PollConfig
	logger  *slog.Logger
}

// NewBrowserAutomation wraps a session with automation helpers.
func NewBrowserAutomation(session fetcher.Session, poll config.PollConfig, logger *slog.Logger) *BrowserAutomation {
	return &BrowserAutomation{
		session: session,
		poll:    poll,
		logger:  logger.With("component", "browser_automation"),
	}
}

// Session returns the wrapped session.
func (ba *BrowserAutomation) Session() fetcher.Session {
	return ba.session
}

// --- Scrolling ---

// ScrollBy scrolls the window down by dy pixels.
func (ba *BrowserAutomation) ScrollBy(ctx context.Context, dy int) error {
	if _, err := ba.session.Execute(ctx, JSScrollBy, dy); err != nil {
		return fmt.Errorf("scroll by %d: %w", dy, err)
	}
	return nil
}

// ScrollToBottom scrolls to the bottom of the page.
func (ba *BrowserAutomation) ScrollToBottom(ctx context.Context) error {
	if _, err := ba.session.Execute(ctx, JSScrollToBottom); err != nil {
		return fmt.Errorf("scroll to bottom: %w", err)
	}
	return nil
}

// ScrollHeight returns document.body.scrollHeight.
func (ba *BrowserAutomation) ScrollHeight(ctx context.Context) (int, error) {
	v, err := ba.session.Execute(ctx, JSScrollHeight)
	if err != nil {
		return 0, fmt.Errorf("scroll height: %w", err)
	}
	return v.Int(), nil
}

// CountElements returns how many elements match selector.
func (ba *BrowserAutomation) CountElements(ctx context.Context, selector string) (int, error) {
	v, err := ba.session.Execute(ctx, JSCountElements, selector)
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", selector, err)
	}
	return v.Int(), nil
}

// StableHeight waits for the scroll height to stop changing and returns it.
func (ba *BrowserAutomation) StableHeight(ctx context.Context) (int, error) {
	return WaitStable(ctx, ba.poll.Interval, ba.poll.Timeout, ba.ScrollHeight)
}

// StableCount waits for the number of matches to stop changing and returns it.
func (ba *BrowserAutomation) StableCount(ctx context.Context, selector string) (int, error) {
	return WaitStable(ctx, ba.poll.Interval, ba.poll.Timeout, func(ctx context.Context) (int, error) {
		return ba.CountElements(ctx, selector)
	})
}

// --- Click ---

// ClickOutcome is the result of a ClickIfVisible attempt.
type ClickOutcome int

const (
	ClickFailed ClickOutcome = iota
	Clicked
	ClickNotFound
	ClickHidden
)

func (o ClickOutcome) String() string {
	switch o {
	case Clicked:
		return "clicked"
	case ClickNotFound:
		return "not_found"
	case ClickHidden:
		return "hidden"
	default:
		return "failed"
	}
}

// ClickIfVisible waits up to timeout for selector, scrolls it into view and
// clicks it when visible. A missing element is reported as ClickNotFound
// with a nil error; ClickFailed always carries the cause.
func (ba *BrowserAutomation) ClickIfVisible(ctx context.Context, selector string, timeout time.Duration) (ClickOutcome, error) {
	el, err := ba.session.Find(ctx, selector, timeout)
	if err != nil {
		if errors.Is(err, types.ErrElementNotFound) {
			return ClickNotFound, nil
		}
		return ClickFailed, err
	}

	visible, err := el.Visible()
	if err != nil {
		return ClickFailed, fmt.Errorf("visibility %q: %w", selector, err)
	}
	if !visible {
		return ClickHidden, nil
	}

	if err := el.ScrollIntoView(); err != nil {
		return ClickFailed, fmt.Errorf("scroll into view %q: %w", selector, err)
	}
	if err := el.Click(); err != nil {
		return ClickFailed, fmt.Errorf("click %q: %w", selector, err)
	}

	ba.logger.Debug("clicked", "selector", selector)
	return Clicked, nil
}
