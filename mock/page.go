package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.PageStore = (*PageStore)(nil)

// PageStore is a mock implementation of harvest.PageStore.
type PageStore struct {
	SaveFn   func(ctx context.Context, page *harvest.Page) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *PageStore) Save(ctx context.Context, page *harvest.Page) error {
	return s.SaveFn(ctx, page)
}

func (s *PageStore) Commit() error {
	return s.CommitFn()
}

func (s *PageStore) Abort() error {
	return s.AbortFn()
}
