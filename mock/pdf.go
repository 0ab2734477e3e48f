package mock

import "github.com/fwojciec/harvest"

var _ harvest.PDFExtractor = (*PDFExtractor)(nil)

// PDFExtractor is a mock implementation of harvest.PDFExtractor.
type PDFExtractor struct {
	ExtractTextFn func(data []byte) (*harvest.PDFText, error)
}

func (e *PDFExtractor) ExtractText(data []byte) (*harvest.PDFText, error) {
	return e.ExtractTextFn(data)
}
