package harvest

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// Layout fidelity is not guaranteed; the result is a linear text rendering.
	Convert(html string) (string, error)
}
