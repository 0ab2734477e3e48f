package harvest

// PDFText holds the text extracted from a PDF document.
type PDFText struct {
	Text  string // concatenated text of all pages
	Pages int
}

// PDFExtractor extracts plain text from PDF documents.
type PDFExtractor interface {
	// ExtractText returns the text of every page of the document.
	// Returns EINVALID if the document cannot be parsed or contains no text.
	ExtractText(data []byte) (*PDFText, error)
}
