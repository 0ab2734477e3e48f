package mock

import "github.com/fwojciec/harvest"

// Compile-time interface verification.
var (
	_ harvest.LinkExtractor = (*LinkExtractor)(nil)
	_ harvest.LinkStripper  = (*LinkStripper)(nil)
)

// LinkExtractor is a mock implementation of harvest.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, baseURL string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]string, error) {
	return e.ExtractLinksFn(html, baseURL)
}

// LinkStripper is a mock implementation of harvest.LinkStripper.
type LinkStripper struct {
	StripLinksFn func(html string) (string, error)
}

func (s *LinkStripper) StripLinks(html string) (string, error) {
	return s.StripLinksFn(html)
}
