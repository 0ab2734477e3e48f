package crawl

import (
	"sync"

	"github.com/fwojciec/harvest"
)

// Compile-time interface verification.
var _ harvest.Frontier = (*Frontier)(nil)

// compactThreshold is the number of consumed slots after which Pop
// reclaims the front of the backing slice.
const compactThreshold = 1024

// Frontier is an in-memory FIFO queue of crawl items.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	items []harvest.FrontierItem
	head  int // index of the oldest item
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{}
}

// Push appends an item to the back of the queue.
// Duplicate URLs are accepted; deduplication happens when items are popped.
func (f *Frontier) Push(item harvest.FrontierItem) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append(f.items, item)
}

// Pop removes and returns the oldest item.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (harvest.FrontierItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.head == len(f.items) {
		return harvest.FrontierItem{}, false
	}
	item := f.items[f.head]
	f.items[f.head] = harvest.FrontierItem{}
	f.head++

	if f.head == len(f.items) {
		f.items = f.items[:0]
		f.head = 0
	} else if f.head >= compactThreshold && f.head*2 >= len(f.items) {
		n := copy(f.items, f.items[f.head:])
		clear(f.items[n:])
		f.items = f.items[:n]
		f.head = 0
	}
	return item, true
}

// Len returns the number of queued items.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items) - f.head
}
