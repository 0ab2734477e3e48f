package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// RetryDelays returns n backoff delays doubling from 500ms.
func RetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, 0, n)
	d := 500 * time.Millisecond
	for range n {
		delays = append(delays, d)
		d *= 2
	}
	return delays
}

// fetchWithRetry fetches url, retrying once per entry in delays after waiting
// that long. The last error is returned if every attempt fails.
func fetchWithRetry(ctx context.Context, f harvest.Fetcher, url string, delays []time.Duration, logger *slog.Logger) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		body, err := f.Fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt == len(delays) {
			break
		}

		logger.Debug("retry", "url", url, "attempt", attempt+2, "err", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
	return nil, lastErr
}
