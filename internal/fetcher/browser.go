package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/types"
)

// BrowserSession implements Session on a single Rod page.
type BrowserSession struct {
	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	stealthCfg *StealthConfig
	navTimeout time.Duration
	logger     *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewBrowserSession launches Chromium and opens the page every scrape loop
// will share.
func NewBrowserSession(cfg config.BrowserConfig, logger *slog.Logger) (*BrowserSession, error) {
	bs := &BrowserSession{
		stealthCfg: StealthFromConfig(cfg),
		navTimeout: cfg.NavigationTimeout,
		logger:     logger.With("component", "browser_session"),
	}

	launchURL, err := bs.launchBrowser(cfg)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		bs.launcher.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	bs.browser = browser

	page, err := bs.openPage()
	if err != nil {
		_ = browser.Close()
		bs.launcher.Kill()
		return nil, fmt.Errorf("open page: %w", err)
	}
	bs.page = page

	bs.logger.Info("browser session ready",
		"headless", cfg.Headless,
		"stealth", bs.stealthCfg.Enabled,
		"platform", bs.stealthCfg.Platform,
	)
	return bs, nil
}

// launchBrowser starts a Chromium instance with appropriate flags.
func (bs *BrowserSession) launchBrowser(cfg config.BrowserConfig) (string, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}
	if bs.stealthCfg.WindowSize != "" {
		l = l.Set("window-size", bs.stealthCfg.WindowSize)
	}
	if !cfg.Headless {
		l = l.Set("start-maximized")
	}

	bs.launcher = l
	return l.Launch()
}

func (bs *BrowserSession) openPage() (*rod.Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if bs.stealthCfg.Enabled {
		page, err = stealth.Page(bs.browser)
		if err == nil {
			_, err = page.EvalOnNewDocument(bs.stealthCfg.OverrideJS())
		}
	} else {
		page, err = bs.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, err
	}

	if ua := bs.stealthCfg.UserAgent; ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			bs.logger.Warn("failed to set user agent", "error", err)
		}
	}
	return page, nil
}

func (bs *BrowserSession) active() (*rod.Page, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.closed {
		return nil, types.ErrSessionClosed
	}
	return bs.page, nil
}

// Navigate implements Session.
func (bs *BrowserSession) Navigate(ctx context.Context, url string) error {
	page, err := bs.active()
	if err != nil {
		return &types.NavigationError{URL: url, Err: err}
	}

	start := time.Now()
	p := page.Context(ctx).Timeout(bs.navTimeout)
	defer p.CancelTimeout()

	if err := p.Navigate(url); err != nil {
		return &types.NavigationError{URL: url, Err: err}
	}
	if err := p.WaitLoad(); err != nil {
		return &types.NavigationError{URL: url, Err: err}
	}

	bs.logger.Debug("navigated", "url", url, "duration", time.Since(start))
	return nil
}

// Execute implements Session.
func (bs *BrowserSession) Execute(ctx context.Context, js string, args ...any) (gson.JSON, error) {
	page, err := bs.active()
	if err != nil {
		return gson.JSON{}, err
	}
	res, err := page.Context(ctx).Eval(js, args...)
	if err != nil {
		return gson.JSON{}, fmt.Errorf("eval: %w", err)
	}
	return res.Value, nil
}

// Markup implements Session.
func (bs *BrowserSession) Markup(ctx context.Context) (string, error) {
	page, err := bs.active()
	if err != nil {
		return "", err
	}
	html, err := page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	return html, nil
}

// Find implements Session.
func (bs *BrowserSession) Find(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	page, err := bs.active()
	if err != nil {
		return nil, &types.LookupError{Selector: selector, Err: err}
	}

	p := page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	el, err := p.Element(selector)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &types.LookupError{Selector: selector, Err: types.ErrElementNotFound}
		}
		return nil, &types.LookupError{Selector: selector, Err: err}
	}
	// rebind so the element outlives the lookup deadline
	return &rodElement{el: el.Context(ctx)}, nil
}

// Close implements Session. Calling Close more than once is safe.
func (bs *BrowserSession) Close() error {
	bs.mu.Lock()
	if bs.closed {
		bs.mu.Unlock()
		return nil
	}
	bs.closed = true
	bs.mu.Unlock()

	var errs []error
	if bs.page != nil {
		if err := bs.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
	}
	if bs.browser != nil {
		if err := bs.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if bs.launcher != nil {
		bs.launcher.Cleanup()
	}
	bs.logger.Info("browser session closed")
	return errors.Join(errs...)
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Visible() (bool, error) { return e.el.Visible() }

func (e *rodElement) ScrollIntoView() error { return e.el.ScrollIntoView() }

func (e *rodElement) Click() error {
	_, err := e.el.Eval(`() => this.click()`)
	return err
}
