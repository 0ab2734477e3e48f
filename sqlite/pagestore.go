package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/harvest"
	"github.com/google/uuid"
)

var _ harvest.PageStore = (*PageStore)(nil)

// Crawl is a stored crawl run.
type Crawl struct {
	ID        string
	SeedURL   string
	StartedAt time.Time
	Pages     int
}

// StoredPage is a page row read back from the database.
type StoredPage struct {
	CrawlID     string
	URL         string
	Content     string
	ContentHash string
	Position    int
	FetchedAt   time.Time
}

// PageFilter selects stored pages. Results are ordered by position.
type PageFilter struct {
	CrawlID     *string
	URL         *string
	ContentHash *string
	Limit       int
	Offset      int
}

// PageStore saves one crawl run. The crawl row and its pages are written in
// a single transaction opened by the first Save and finished by Commit or
// Abort; nothing is visible to other readers before Commit.
type PageStore struct {
	db      *DB
	id      string
	seedURL string
	tx      *sql.Tx
	next    int
	done    bool

	// Now returns timestamps for the crawl and its pages. Defaults to time.Now.
	Now func() time.Time
}

// NewPageStore creates a PageStore for a crawl starting at seedURL.
func NewPageStore(db *DB, seedURL string) *PageStore {
	return &PageStore{
		db:      db,
		id:      uuid.NewString(),
		seedURL: seedURL,
		Now:     time.Now,
	}
}

// CrawlID returns the identifier of the crawl row this store writes.
func (s *PageStore) CrawlID() string {
	return s.id
}

func (s *PageStore) begin(ctx context.Context) error {
	if s.done {
		return harvest.Errorf(harvest.EINVALID, "page store is closed")
	}
	if s.tx != nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin crawl: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO crawls (id, seed_url, started_at) VALUES (?, ?, ?)`,
		s.id, s.seedURL, s.Now().UTC().Format(time.RFC3339),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert crawl: %w", err)
	}
	s.tx = tx
	return nil
}

// Save inserts page at the next position.
func (s *PageStore) Save(ctx context.Context, page *harvest.Page) error {
	if err := s.begin(ctx); err != nil {
		return err
	}

	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO pages (crawl_id, url, content, content_hash, position, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.id, page.URL, page.Content, hashContent(page.Content), s.next,
		s.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert page %s: %w", page.URL, err)
	}
	s.next++
	return nil
}

// Commit makes the crawl and its pages visible. A crawl with no pages is
// still recorded.
func (s *PageStore) Commit() error {
	if err := s.begin(context.Background()); err != nil {
		return err
	}
	s.done = true
	return s.tx.Commit()
}

// Abort discards everything saved so far.
func (s *PageStore) Abort() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.tx == nil {
		return nil
	}
	return s.tx.Rollback()
}

// hashContent returns the hex xxHash64 of content.
func hashContent(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// FindCrawlByID returns a committed crawl with its page count.
func FindCrawlByID(ctx context.Context, db *DB, id string) (*Crawl, error) {
	var c Crawl
	var startedAt string

	err := db.QueryRowContext(ctx, `
		SELECT c.id, c.seed_url, c.started_at, COUNT(p.id)
		FROM crawls c LEFT JOIN pages p ON p.crawl_id = c.id
		WHERE c.id = ?
		GROUP BY c.id
	`, id).Scan(&c.ID, &c.SeedURL, &startedAt, &c.Pages)
	if err == sql.ErrNoRows {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "crawl not found")
	}
	if err != nil {
		return nil, err
	}

	if c.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindPages returns stored pages matching filter.
func FindPages(ctx context.Context, db *DB, filter PageFilter) ([]*StoredPage, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT crawl_id, url, content, content_hash, position, fetched_at FROM pages WHERE 1=1")
	if filter.CrawlID != nil {
		query.WriteString(" AND crawl_id = ?")
		args = append(args, *filter.CrawlID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.ContentHash != nil {
		query.WriteString(" AND content_hash = ?")
		args = append(args, *filter.ContentHash)
	}
	query.WriteString(" ORDER BY crawl_id, position ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*StoredPage
	for rows.Next() {
		var p StoredPage
		var fetchedAt string
		if err := rows.Scan(&p.CrawlID, &p.URL, &p.Content, &p.ContentHash, &p.Position, &fetchedAt); err != nil {
			return nil, err
		}
		if p.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
			return nil, err
		}
		pages = append(pages, &p)
	}
	return pages, rows.Err()
}
