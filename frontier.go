package harvest

// FrontierItem is a URL waiting to be crawled.
type FrontierItem struct {
	URL   string
	Depth int // link hops from the seed; the seed is depth 0
}

// Frontier is the crawl work queue.
type Frontier interface {
	// Push appends an item to the back of the queue.
	// No deduplication is performed; the same URL may be queued many times.
	Push(item FrontierItem)

	// Pop removes and returns the oldest item.
	// Returns false if the frontier is empty.
	Pop() (FrontierItem, bool)

	// Len returns the number of queued items.
	Len() int
}

// VisitedSet records URLs that have been dequeued for processing.
type VisitedSet interface {
	// MarkSeen records the URL and reports whether it was newly added.
	// A false result means the URL was already processed.
	MarkSeen(url string) bool

	// Len returns the number of recorded URLs.
	Len() int
}
