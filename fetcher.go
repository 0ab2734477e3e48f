package harvest

import "context"

// Fetcher retrieves raw response bodies from URLs.
type Fetcher interface {
	// Fetch issues one request for the URL and returns the response body.
	// Network failures, timeouts and non-success statuses are returned as errors.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) ([]byte, error)

	// Close releases any resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
