// Package crawl provides the breadth-first crawl loop together with its
// in-memory frontier and visited set.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/harvest"
)

// Crawl limits used when a Crawler leaves them unset.
const (
	DefaultMaxDepth = 100
	DefaultMaxPages = 10000
)

// Crawler harvests pages breadth-first from a seed URL.
//
// A Crawler is configuration only. Each call to Crawl builds its own frontier,
// visited set and result list, so limits cannot change mid-crawl.
type Crawler struct {
	// Fetcher retrieves HTML pages.
	Fetcher harvest.Fetcher

	// DocumentFetcher retrieves PDF documents. Defaults to Fetcher.
	DocumentFetcher harvest.Fetcher

	Stripper  harvest.LinkStripper
	Converter harvest.Converter
	Links     harvest.LinkExtractor
	PDF       harvest.PDFExtractor

	// Extractor, if set, reduces stripped HTML to its main content before
	// conversion. An empty result leaves the HTML unchanged.
	Extractor harvest.Extractor

	// Sitemaps, if set, seeds the frontier with sitemap URLs at depth 1.
	Sitemaps harvest.SitemapService

	// NewFrontier creates the work queue for each crawl. It must pop in push
	// order for the crawl to be breadth-first. Defaults to an in-memory FIFO.
	NewFrontier func() harvest.Frontier

	// NewVisitedSet creates the visited set for each crawl.
	// Defaults to an exact in-memory set.
	NewVisitedSet func() harvest.VisitedSet

	// Filter and SameHost restrict which discovered links are queued.
	// The zero values follow every link.
	Filter   *harvest.URLFilter
	SameHost bool

	// MaxDepth is the deepest link distance from the seed that is processed.
	// Zero crawls only the seed; negative values use DefaultMaxDepth.
	MaxDepth int

	// MaxPages caps the number of returned pages.
	// Zero or negative values use DefaultMaxPages.
	MaxPages int

	// RetryDelays are the waits between fetch attempts. A URL is fetched
	// len(RetryDelays)+1 times at most; nil means a single attempt.
	RetryDelays []time.Duration

	// Logger receives the failures the crawl absorbs. Defaults to discarding.
	Logger *slog.Logger

	// Progress, if set, is called as URLs are processed.
	Progress ProgressFunc
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type   ProgressType
	URL    string
	Depth  int
	Pages  int // pages recorded so far
	Queued int // items left in the frontier
	Error  error
}

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Crawl harvests pages starting at startURL and returns them in visit order.
//
// Crawl never fails: fetch and extraction failures are logged and either
// leave a page with empty content (HTML) or drop it (PDF). The crawl ends when
// the frontier is exhausted, MaxPages pages are recorded or ctx is cancelled,
// and returns whatever was gathered.
func (c *Crawler) Crawl(ctx context.Context, startURL string) []*harvest.Page {
	s := c.newSession(startURL)

	s.frontier.Push(harvest.FrontierItem{URL: startURL, Depth: 0})
	if c.Sitemaps != nil {
		s.seedSitemap(ctx, startURL)
	}

	s.emit(ProgressEvent{Type: ProgressStarted, URL: startURL, Queued: s.frontier.Len()})
	s.run(ctx)
	s.emit(ProgressEvent{Type: ProgressFinished, Pages: len(s.pages), Queued: s.frontier.Len()})

	return s.pages
}

// session is the state of a single crawl invocation.
type session struct {
	c        *Crawler
	logger   *slog.Logger
	maxDepth int
	maxPages int
	seed     *url.URL // nil if the seed does not parse

	frontier harvest.Frontier
	visited  harvest.VisitedSet
	pages    []*harvest.Page
}

func (c *Crawler) newSession(startURL string) *session {
	s := &session{
		c:        c,
		logger:   c.Logger,
		maxDepth: c.MaxDepth,
		maxPages: c.MaxPages,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.maxDepth < 0 {
		s.maxDepth = DefaultMaxDepth
	}
	if s.maxPages <= 0 {
		s.maxPages = DefaultMaxPages
	}
	if c.NewFrontier != nil {
		s.frontier = c.NewFrontier()
	} else {
		s.frontier = NewFrontier()
	}
	if c.NewVisitedSet != nil {
		s.visited = c.NewVisitedSet()
	} else {
		s.visited = NewVisitedSet()
	}
	if u, err := url.Parse(startURL); err == nil {
		s.seed = u
	}
	return s
}

// run drives the crawl until the frontier is empty, the page cap is reached
// or the context is cancelled.
func (s *session) run(ctx context.Context) {
	for s.frontier.Len() > 0 && len(s.pages) < s.maxPages {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("crawl cancelled", "pages", len(s.pages), "err", err)
			return
		}
		item, ok := s.frontier.Pop()
		if !ok {
			return
		}
		s.step(ctx, item)
	}
}

// step processes one dequeued item.
//
// The depth check runs before MarkSeen: a URL dequeued too deep is not
// recorded, so it stays eligible if it is reached again at a shallower depth.
func (s *session) step(ctx context.Context, item harvest.FrontierItem) {
	if item.Depth > s.maxDepth {
		s.logger.Debug("skip", "url", item.URL, "depth", item.Depth, "reason", "too deep")
		return
	}
	if !s.visited.MarkSeen(item.URL) {
		s.logger.Debug("skip", "url", item.URL, "depth", item.Depth, "reason", "visited")
		return
	}

	if isPDF(item.URL) {
		s.visitPDF(ctx, item)
		return
	}
	s.visitHTML(ctx, item)
}

// visitHTML records the page, even with empty content, and queues its links.
// A fetch cut short by cancellation records nothing.
func (s *session) visitHTML(ctx context.Context, item harvest.FrontierItem) {
	var html string
	body, fetchErr := fetchWithRetry(ctx, s.c.Fetcher, item.URL, s.c.RetryDelays, s.logger)
	if fetchErr != nil && ctx.Err() != nil {
		s.logger.Debug("skip", "url", item.URL, "depth", item.Depth, "reason", "cancelled")
		return
	}
	if fetchErr != nil {
		s.logger.Warn("fetch failed", "url", item.URL, "err", fetchErr)
	} else {
		html = string(body)
	}

	content, err := s.pageText(html)
	if err != nil {
		s.logger.Warn("extract failed", "url", item.URL, "err", err)
	}
	if fetchErr != nil {
		err = fetchErr
	}
	s.record(item, content, err)

	// Links come from the original HTML, not the stripped copy.
	for _, link := range s.discover(html, item.URL) {
		s.frontier.Push(harvest.FrontierItem{URL: link, Depth: item.Depth + 1})
	}
}

// visitPDF records the document only if text could be extracted.
// PDFs are never searched for links.
func (s *session) visitPDF(ctx context.Context, item harvest.FrontierItem) {
	fetcher := s.c.DocumentFetcher
	if fetcher == nil {
		fetcher = s.c.Fetcher
	}

	data, err := fetchWithRetry(ctx, fetcher, item.URL, s.c.RetryDelays, s.logger)
	if err != nil && ctx.Err() != nil {
		s.logger.Debug("skip", "url", item.URL, "depth", item.Depth, "reason", "cancelled")
		return
	}
	if err != nil {
		s.logger.Warn("fetch failed", "url", item.URL, "err", err)
		s.drop(item, err)
		return
	}

	text, err := s.c.PDF.ExtractText(data)
	if err != nil {
		s.logger.Warn("pdf extraction failed", "url", item.URL, "err", err)
		s.drop(item, err)
		return
	}
	if strings.TrimSpace(text.Text) == "" {
		err := harvest.Errorf(harvest.EINVALID, "no text in PDF")
		s.logger.Warn("pdf extraction failed", "url", item.URL, "err", err)
		s.drop(item, err)
		return
	}

	s.record(item, text.Text, nil)
}

// pageText converts raw HTML into markdown with all link targets removed.
// Empty input yields empty content without error.
func (s *session) pageText(html string) (string, error) {
	if html == "" {
		return "", nil
	}

	stripped, err := s.c.Stripper.StripLinks(html)
	if err != nil {
		return "", err
	}

	if s.c.Extractor != nil {
		result, err := s.c.Extractor.Extract(stripped)
		if err != nil {
			return "", err
		}
		// Pages without a recognisable main body are converted whole.
		if strings.TrimSpace(result.ContentHTML) != "" {
			stripped = result.ContentHTML
		}
	}

	return s.c.Converter.Convert(stripped)
}

// discover returns the in-scope links of a page. Extraction errors are
// logged and yield no links.
func (s *session) discover(html, pageURL string) []string {
	links, err := s.c.Links.ExtractLinks(html, pageURL)
	if err != nil {
		s.logger.Warn("link discovery failed", "url", pageURL, "err", err)
		return nil
	}

	if s.c.Filter == nil && !s.c.SameHost {
		return links
	}
	var scoped []string
	for _, link := range links {
		if s.inScope(link) {
			scoped = append(scoped, link)
		}
	}
	return scoped
}

// seedSitemap queues the seed site's sitemap URLs one hop from the seed.
func (s *session) seedSitemap(ctx context.Context, startURL string) {
	urls, err := s.c.Sitemaps.DiscoverURLs(ctx, startURL, s.c.Filter)
	if err != nil {
		s.logger.Warn("sitemap discovery failed", "url", startURL, "err", err)
		return
	}
	for _, u := range urls {
		if s.inScope(u) {
			s.frontier.Push(harvest.FrontierItem{URL: u, Depth: 1})
		}
	}
}

func (s *session) inScope(link string) bool {
	if s.c.SameHost {
		u, err := url.Parse(link)
		if err != nil || s.seed == nil || u.Host != s.seed.Host {
			return false
		}
	}
	return s.c.Filter.Match(link)
}

func (s *session) record(item harvest.FrontierItem, content string, err error) {
	s.pages = append(s.pages, &harvest.Page{URL: item.URL, Content: content})
	s.emit(ProgressEvent{
		Type:   ProgressCompleted,
		URL:    item.URL,
		Depth:  item.Depth,
		Pages:  len(s.pages),
		Queued: s.frontier.Len(),
		Error:  err,
	})
}

func (s *session) drop(item harvest.FrontierItem, err error) {
	s.emit(ProgressEvent{
		Type:   ProgressFailed,
		URL:    item.URL,
		Depth:  item.Depth,
		Pages:  len(s.pages),
		Queued: s.frontier.Len(),
		Error:  err,
	})
}

func (s *session) emit(event ProgressEvent) {
	if s.c.Progress != nil {
		s.c.Progress(event)
	}
}

// isPDF selects the PDF path by URL suffix alone; the response content type
// is not consulted.
func isPDF(rawURL string) bool {
	return strings.HasSuffix(rawURL, ".pdf")
}
