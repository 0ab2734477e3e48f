package crawl_test

import (
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/crawl"
	"github.com/stretchr/testify/assert"
)

func TestTruncateURL(t *testing.T) {
	t.Parallel()

	t.Run("returns URL unchanged when shorter than max", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "https://x.com", crawl.TruncateURL("https://x.com", 50))
	})

	t.Run("truncates with ellipsis keeping the tail", func(t *testing.T) {
		t.Parallel()
		url := "https://example.com/reports/2024/annual.pdf"
		result := crawl.TruncateURL(url, 20)
		assert.Equal(t, "...s/2024/annual.pdf", result)
		assert.Len(t, result, 20)
	})

	t.Run("returns empty string when maxLen is not positive", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, crawl.TruncateURL("https://example.com", 0))
		assert.Empty(t, crawl.TruncateURL("https://example.com", -1))
	})

	t.Run("returns prefix when maxLen is too small for ellipsis", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "htt", crawl.TruncateURL("https://example.com", 3))
		assert.Equal(t, "a", crawl.TruncateURL("a", 2))
	})
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", crawl.FormatBytes(512))
	assert.Equal(t, "1.5 KB", crawl.FormatBytes(1536))
	assert.Equal(t, "2.0 MB", crawl.FormatBytes(2*1024*1024))
}

func TestContentBytes(t *testing.T) {
	t.Parallel()

	pages := []*harvest.Page{
		{URL: "https://example.com/", Content: "hello"},
		{URL: "https://example.com/empty", Content: ""},
		{URL: "https://example.com/b", Content: "abc"},
	}
	assert.Equal(t, 8, crawl.ContentBytes(pages))
	assert.Zero(t, crawl.ContentBytes(nil))
}
