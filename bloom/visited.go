// Package bloom provides a memory-bounded visited set backed by a Bloom filter.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/harvest"
)

var _ harvest.VisitedSet = (*VisitedSet)(nil)

// VisitedSet records processed URLs in a Bloom filter.
//
// A URL is never admitted twice, but a URL that was never seen may be
// reported as seen with probability close to the configured false positive
// rate, so it is skipped.
type VisitedSet struct {
	mu    sync.Mutex
	f     *bloom.BloomFilter
	added int
}

// NewVisitedSet creates a VisitedSet sized for n expected URLs
// with the given false positive rate.
func NewVisitedSet(n uint, fpRate float64) *VisitedSet {
	return &VisitedSet{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// MarkSeen adds url and reports whether it was absent before.
func (s *VisitedSet) MarkSeen(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f.TestAndAddString(url) {
		return false
	}
	s.added++
	return true
}

// Len returns the number of URLs admitted by MarkSeen.
func (s *VisitedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.added
}

// EstimatedCount returns the filter's own estimate of its size.
func (s *VisitedSet) EstimatedCount() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint(s.f.ApproximatedSize())
}
