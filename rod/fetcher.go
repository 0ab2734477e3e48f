// Package rod renders JavaScript-heavy pages in headless Chrome.
package rod

import (
	"context"
	"time"

	"github.com/fwojciec/harvest"
)

// DefaultFetchTimeout bounds navigation, load and serialization of one page.
const DefaultFetchTimeout = 10 * time.Second

var _ harvest.Fetcher = (*Fetcher)(nil)

// Fetcher returns the DOM of a page after its scripts have run.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	opts    []ManagerOption
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page timeout. Defaults to DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithManager passes options to the BrowserManager the Fetcher launches.
func WithManager(opts ...ManagerOption) Option {
	return func(f *Fetcher) {
		f.opts = append(f.opts, opts...)
	}
}

// NewFetcher launches a headless Chrome browser and returns a Fetcher
// using it. Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(f.opts...)
	if err != nil {
		return nil, err
	}
	f.manager = manager
	return f, nil
}

// Fetch navigates to url, waits for the load event and returns the
// serialized DOM.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	page, err := f.manager.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(f.timeout)

	if err := page.Navigate(url); err != nil {
		return nil, err
	}
	if err := page.WaitLoad(); err != nil {
		return nil, err
	}

	html, err := page.HTML()
	if err != nil {
		return nil, err
	}
	return []byte(html), nil
}

// Stats reports how many pages the browser rendered and how often it was
// replaced.
func (f *Fetcher) Stats() BrowserStats {
	return f.manager.Stats()
}

// Close shuts the browser down. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
