package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

var _ harvest.PDFExtractor = (*LoggingPDFExtractor)(nil)

// LoggingPDFExtractor wraps a PDFExtractor with debug logging.
type LoggingPDFExtractor struct {
	next   harvest.PDFExtractor
	logger *slog.Logger
}

// NewLoggingPDFExtractor creates a new LoggingPDFExtractor.
func NewLoggingPDFExtractor(next harvest.PDFExtractor, logger *slog.Logger) *LoggingPDFExtractor {
	return &LoggingPDFExtractor{next: next, logger: logger}
}

// ExtractText delegates to the wrapped extractor.
func (e *LoggingPDFExtractor) ExtractText(data []byte) (text *harvest.PDFText, err error) {
	defer func(begin time.Time) {
		var pages, chars int
		if text != nil {
			pages, chars = text.Pages, len(text.Text)
		}
		e.logger.Debug("pdf extract",
			"bytes", len(data),
			"pages", pages,
			"chars", chars,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractText(data)
}
