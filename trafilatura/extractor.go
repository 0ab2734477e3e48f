// Package trafilatura extracts the main content of a page with go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/harvest"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ harvest.Extractor = (*Extractor)(nil)

// Extractor drops navigation, footers and other boilerplate from a page.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor with fallback extractors enabled.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{EnableFallback: true},
	}
}

// Extract returns the page title and the HTML of its main content.
// ContentHTML is empty if no main content was found.
func (e *Extractor) Extract(rawHTML string) (*harvest.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "extract content: %v", err)
	}

	var buf bytes.Buffer
	if result.ContentNode != nil {
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, harvest.Errorf(harvest.EINTERNAL, "render content: %v", err)
		}
	}

	return &harvest.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: buf.String(),
	}, nil
}
