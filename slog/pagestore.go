package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

var _ harvest.PageStore = (*LoggingPageStore)(nil)

// LoggingPageStore wraps a PageStore with debug logging.
type LoggingPageStore struct {
	next   harvest.PageStore
	logger *slog.Logger
}

// NewLoggingPageStore creates a new LoggingPageStore.
func NewLoggingPageStore(next harvest.PageStore, logger *slog.Logger) *LoggingPageStore {
	return &LoggingPageStore{next: next, logger: logger}
}

// Save delegates to the wrapped store.
func (s *LoggingPageStore) Save(ctx context.Context, page *harvest.Page) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("save page",
			"url", page.URL,
			"bytes", len(page.Content),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, page)
}

// Commit delegates to the wrapped store.
func (s *LoggingPageStore) Commit() (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("commit pages", "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.Commit()
}

// Abort delegates to the wrapped store.
func (s *LoggingPageStore) Abort() (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("abort pages", "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.Abort()
}
