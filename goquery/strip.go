package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/harvest"
)

var _ harvest.LinkStripper = (*LinkStripper)(nil)

// LinkStripper removes link targets from HTML so converted text keeps
// anchor text without URLs.
type LinkStripper struct{}

// NewLinkStripper creates a new LinkStripper.
func NewLinkStripper() *LinkStripper {
	return &LinkStripper{}
}

// StripLinks returns html with the href attribute removed from every anchor.
// The anchors and their text are kept.
func (s *LinkStripper) StripLinks(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", harvest.Errorf(harvest.EINVALID, "failed to parse HTML: %v", err)
	}

	doc.Find("a[href]").RemoveAttr("href")

	out, err := doc.Html()
	if err != nil {
		return "", harvest.Errorf(harvest.EINTERNAL, "failed to render HTML: %v", err)
	}
	return out, nil
}
