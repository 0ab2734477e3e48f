package harvest

import "context"

// Page is the extracted text of one crawled document.
// Pages are immutable once created.
type Page struct {
	URL     string
	Content string // Markdown for HTML pages, plain text for PDFs
}

// PageStore persists pages to storage with atomic semantics.
// Save writes to a pending location; Commit makes changes permanent;
// Abort discards pending changes.
type PageStore interface {
	Save(ctx context.Context, page *Page) error
	Commit() error
	Abort() error
}
