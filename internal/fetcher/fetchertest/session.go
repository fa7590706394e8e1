// Package fetchertest provides a scriptable in-memory fetcher.Session for
// tests that must not start a browser.
package fetchertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ysmood/gson"

	"github.com/IshaanNene/ShopScope/internal/fetcher"
	"github.com/IshaanNene/ShopScope/internal/types"
)

// Session is a fake fetcher.Session. Zero values behave like an empty page.
type Session struct {
	// Pages maps a URL to the markup served after navigating to it.
	Pages map[string]string

	// NavigateErr maps a URL to the error returned when navigating to it.
	NavigateErr map[string]error

	// ExecuteFunc answers Execute calls. Nil answers 0 to everything.
	ExecuteFunc func(js string, args []any) (gson.JSON, error)

	// MarkupFunc overrides Pages for Markup calls.
	MarkupFunc func() (string, error)

	// FindFunc answers Find calls. Nil reports every element as missing.
	FindFunc func(selector string) (fetcher.Element, error)

	mu          sync.Mutex
	current     string
	navigations []string
	closed      bool
}

var _ fetcher.Session = (*Session)(nil)

// Navigate implements fetcher.Session.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return &types.NavigationError{URL: url, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &types.NavigationError{URL: url, Err: types.ErrSessionClosed}
	}
	s.navigations = append(s.navigations, url)
	if err := s.NavigateErr[url]; err != nil {
		return &types.NavigationError{URL: url, Err: err}
	}
	s.current = url
	return nil
}

// Execute implements fetcher.Session.
func (s *Session) Execute(ctx context.Context, js string, args ...any) (gson.JSON, error) {
	if err := ctx.Err(); err != nil {
		return gson.JSON{}, err
	}
	if s.isClosed() {
		return gson.JSON{}, types.ErrSessionClosed
	}
	if s.ExecuteFunc == nil {
		return Number(0), nil
	}
	return s.ExecuteFunc(js, args)
}

// Markup implements fetcher.Session.
func (s *Session) Markup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.isClosed() {
		return "", types.ErrSessionClosed
	}
	if s.MarkupFunc != nil {
		return s.MarkupFunc()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Pages[s.current], nil
}

// Find implements fetcher.Session.
func (s *Session) Find(ctx context.Context, selector string, _ time.Duration) (fetcher.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.LookupError{Selector: selector, Err: err}
	}
	if s.FindFunc == nil {
		return nil, &types.LookupError{Selector: selector, Err: types.ErrElementNotFound}
	}
	return s.FindFunc(selector)
}

// Close implements fetcher.Session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Navigations returns every URL passed to Navigate, in order.
func (s *Session) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.navigations))
	copy(out, s.navigations)
	return out
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool { return s.isClosed() }

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Element is a fake fetcher.Element.
type Element struct {
	Hidden     bool
	VisibleErr error
	ScrollErr  error
	ClickErr   error

	// OnClick runs after a successful click.
	OnClick func()

	mu     sync.Mutex
	clicks int
}

var _ fetcher.Element = (*Element)(nil)

func (e *Element) Visible() (bool, error) { return !e.Hidden, e.VisibleErr }

func (e *Element) ScrollIntoView() error { return e.ScrollErr }

func (e *Element) Click() error {
	if e.ClickErr != nil {
		return fmt.Errorf("click: %w", e.ClickErr)
	}
	e.mu.Lock()
	e.clicks++
	e.mu.Unlock()
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

// Clicks returns the number of successful clicks.
func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Number wraps n the way a page script result decodes from JSON.
func Number(n int) gson.JSON {
	return gson.New(float64(n))
}
