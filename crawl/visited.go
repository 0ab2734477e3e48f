package crawl

import (
	"sync"

	"github.com/fwojciec/harvest"
)

// Compile-time interface verification.
var _ harvest.VisitedSet = (*VisitedSet)(nil)

// VisitedSet is an exact in-memory set of processed URLs.
// It is safe for concurrent use; MarkSeen is an atomic check-and-add.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// MarkSeen records the URL and reports whether it was newly added.
func (s *VisitedSet) MarkSeen(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[url]; ok {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Len returns the number of recorded URLs.
func (s *VisitedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
