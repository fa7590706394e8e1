package fetcher

import (
	"context"
	"time"

	"github.com/ysmood/gson"
)

// Session is a live browser page the scrape loops drive. A Session is
// created once per run and shared by every entity loop.
type Session interface {
	// Navigate loads url and waits for the document to finish loading.
	Navigate(ctx context.Context, url string) error

	// Execute evaluates a JS function expression in the page and returns
	// its result. Args are passed to the function.
	Execute(ctx context.Context, js string, args ...any) (gson.JSON, error)

	// Markup returns the rendered HTML of the current page.
	Markup(ctx context.Context) (string, error)

	// Find waits up to timeout for an element matching selector. A lookup
	// that times out returns an error wrapping types.ErrElementNotFound.
	Find(ctx context.Context, selector string, timeout time.Duration) (Element, error)

	// Close releases the page and the browser behind it.
	Close() error
}

// Element is a handle to one element on the current page.
type Element interface {
	Visible() (bool, error)
	ScrollIntoView() error

	// Click dispatches a script-level click, which works for elements
	// covered by overlays.
	Click() error
}
