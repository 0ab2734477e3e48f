// Package readability extracts the main content of a page with go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/harvest"
	"github.com/go-shiori/go-readability"
)

var _ harvest.Extractor = (*Extractor)(nil)

// Extractor applies Mozilla Readability scoring to find a page's article.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the article title and content HTML.
func (e *Extractor) Extract(rawHTML string) (*harvest.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "extract article: %v", err)
	}

	return &harvest.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
