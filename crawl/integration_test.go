package crawl_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/harvest/crawl"
	"github.com/fwojciec/harvest/goquery"
	"github.com/fwojciec/harvest/htmltomarkdown"
	harvesthttp "github.com/fwojciec/harvest/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRealCrawler(maxDepth, maxPages int) *crawl.Crawler {
	return &crawl.Crawler{
		Fetcher:   harvesthttp.NewFetcher(),
		Stripper:  goquery.NewLinkStripper(),
		Converter: htmltomarkdown.NewConverter(),
		Links:     goquery.NewLinkExtractor(),
		MaxDepth:  maxDepth,
		MaxPages:  maxPages,
	}
}

func TestCrawler_Crawl_OverHTTP(t *testing.T) {
	t.Parallel()

	t.Run("server error on seed yields one empty page", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		pages := newRealCrawler(2, 10).Crawl(context.Background(), srv.URL+"/")

		require.Len(t, pages, 1)
		assert.Equal(t, srv.URL+"/", pages[0].URL)
		assert.Empty(t, pages[0].Content)
	})

	t.Run("relative links are followed breadth first", func(t *testing.T) {
		t.Parallel()

		// Given A links to B and C through relative hrefs, and B links to D
		site := map[string]string{
			"/docs/":      `<html><body><p>A</p><a href="b">B</a><a href="/docs/c#top">C</a></body></html>`,
			"/docs/b":     `<html><body><p>B body</p><a href="../docs/sub/d">D</a></body></html>`,
			"/docs/c":     `<html><body><p>C body</p></body></html>`,
			"/docs/sub/d": `<html><body><p>D body</p><a href="mailto:x@example.com">mail</a></body></html>`,
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, ok := site[r.URL.Path]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(body))
		}))
		defer srv.Close()

		// When crawling two levels deep
		pages := newRealCrawler(2, 10).Crawl(context.Background(), srv.URL+"/docs/")

		// Then pages arrive in BFS order with link targets stripped
		assert.Equal(t, []string{
			srv.URL + "/docs/",
			srv.URL + "/docs/b",
			srv.URL + "/docs/c",
			srv.URL + "/docs/sub/d",
		}, urls(pages))
		assert.Contains(t, pages[1].Content, "B body")
		assert.NotContains(t, pages[0].Content, "](")
	})
}
