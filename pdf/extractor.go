// Package pdf extracts plain text from PDF documents using ledongthuc/pdf.
package pdf

import (
	"bytes"
	"io"

	"github.com/fwojciec/harvest"
	"github.com/ledongthuc/pdf"
)

var _ harvest.PDFExtractor = (*Extractor)(nil)

// Extractor reads the text layer of PDF documents.
// Scanned documents without a text layer yield empty text.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText returns the plain text of every page in data.
func (e *Extractor) ExtractText(data []byte) (_ *harvest.PDFText, err error) {
	if len(data) == 0 {
		return nil, harvest.Errorf(harvest.EINVALID, "empty PDF input")
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = harvest.Errorf(harvest.EINVALID, "malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "open PDF: %v", err)
	}

	text, err := r.GetPlainText()
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "read PDF text: %v", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, text); err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "read PDF text: %v", err)
	}

	return &harvest.PDFText{
		Text:  buf.String(),
		Pages: r.NumPage(),
	}, nil
}
