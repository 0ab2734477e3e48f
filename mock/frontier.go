package mock

import "github.com/fwojciec/harvest"

// Compile-time interface verification.
var (
	_ harvest.Frontier   = (*Frontier)(nil)
	_ harvest.VisitedSet = (*VisitedSet)(nil)
)

// Frontier is a mock implementation of harvest.Frontier.
type Frontier struct {
	PushFn func(item harvest.FrontierItem)
	PopFn  func() (harvest.FrontierItem, bool)
	LenFn  func() int
}

func (f *Frontier) Push(item harvest.FrontierItem) {
	f.PushFn(item)
}

func (f *Frontier) Pop() (harvest.FrontierItem, bool) {
	return f.PopFn()
}

func (f *Frontier) Len() int {
	return f.LenFn()
}

// VisitedSet is a mock implementation of harvest.VisitedSet.
type VisitedSet struct {
	MarkSeenFn func(url string) bool
	LenFn      func() int
}

func (s *VisitedSet) MarkSeen(url string) bool {
	return s.MarkSeenFn(url)
}

func (s *VisitedSet) Len() int {
	return s.LenFn()
}
