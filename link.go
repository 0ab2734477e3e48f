package harvest

// LinkExtractor discovers outbound hyperlinks in HTML.
type LinkExtractor interface {
	// ExtractLinks returns the absolute URLs of all anchor targets in document order.
	// Relative targets are resolved against baseURL. Targets that cannot be
	// resolved to an http(s) URL are skipped individually.
	ExtractLinks(html string, baseURL string) ([]string, error)
}

// LinkStripper removes hyperlink targets from HTML.
type LinkStripper interface {
	// StripLinks returns the HTML with the href attribute removed from every anchor.
	StripLinks(html string) (string, error)
}
