package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/harvest"
)

var _ harvest.SitemapService = (*SitemapService)(nil)

// maxSitemaps bounds how many sitemap documents one discovery reads,
// index children included.
const maxSitemaps = 100

// SitemapService discovers page URLs from a site's /sitemap.xml.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs returns the URLs listed in the sitemap at the root of
// baseURL's host. Sitemap indexes are followed recursively; children that
// fail to load are skipped. A missing sitemap yields an empty slice.
//
// When baseURL has a non-root path (e.g. https://example.com/docs/), only
// URLs under that path are returned. filter, if non-nil, is applied last.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *harvest.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "invalid base URL: %v", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, harvest.Errorf(harvest.EINVALID, "base URL must be http or https: %s", baseURL)
	}

	pathPrefix := base.Path
	if pathPrefix == "/" {
		pathPrefix = ""
	}

	root := base.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()
	seen := make(map[string]bool)
	listed, err := s.processSitemap(ctx, root, seen)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if harvest.ErrorCode(err) == harvest.ENOTFOUND {
			return []string{}, nil
		}
		return nil, err
	}

	urls := []string{}
	unique := make(map[string]bool)
	for _, u := range listed {
		if unique[u] {
			continue
		}
		unique[u] = true
		if pathPrefix != "" && !matchesPathPrefix(u, pathPrefix) {
			continue
		}
		if !filter.Match(u) {
			continue
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// matchesPathPrefix reports whether rawURL's path lies under prefix,
// respecting path boundaries: /docs matches /docs/ and /docs/intro but not
// /documentation.
func matchesPathPrefix(rawURL, prefix string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(parsed.Path, prefix) || parsed.Path+"/" == prefix
}

// processSitemap fetches and parses a sitemap, handling both urlset and
// sitemapindex documents.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] || len(seen) >= maxSitemaps {
		return nil, nil
	}
	seen[sitemapURL] = true

	doc, err := s.fetchXML(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	if root == nil {
		return nil, harvest.Errorf(harvest.EINVALID, "empty sitemap XML at %s", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		return s.processSitemapIndex(ctx, root, seen)
	}
	return parseURLSet(root), nil
}

// processSitemapIndex follows every <sitemap> entry of an index.
func (s *SitemapService) processSitemapIndex(ctx context.Context, root *etree.Element, seen map[string]bool) ([]string, error) {
	var all []string
	for _, sitemap := range root.SelectElements("sitemap") {
		loc := sitemap.SelectElement("loc")
		if loc == nil {
			continue
		}
		child := strings.TrimSpace(loc.Text())
		if child == "" {
			continue
		}

		urls, err := s.processSitemap(ctx, child, seen)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		all = append(all, urls...)
	}
	return all, nil
}

// parseURLSet extracts the <loc> of every <url> in a <urlset>.
func parseURLSet(root *etree.Element) []string {
	var urls []string
	for _, el := range root.SelectElements("url") {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func (s *SitemapService) fetchXML(ctx context.Context, target string) (*etree.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "invalid sitemap URL %q: %v", target, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, harvest.Errorf(harvest.ENOTFOUND, "no sitemap at %s", target)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "parse sitemap XML at %s: %v", target, err)
	}
	return doc, nil
}
