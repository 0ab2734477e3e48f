// Package fs stores harvested pages as markdown files.
package fs

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/harvest"
)

var _ harvest.PageStore = (*FileStore)(nil)

// FileStore implements harvest.PageStore with atomic update semantics.
// Pages are saved to a temporary directory, then moved into place on Commit.
type FileStore struct {
	baseDir string
	name    string

	// Now returns the crawl date written to frontmatter. Defaults to time.Now.
	Now func() time.Time
}

// NewFileStore creates a new FileStore.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
		Now:     time.Now,
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes page under the temporary directory at the path given by URLToPath.
func (s *FileStore) Save(ctx context.Context, page *harvest.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relPath, err := URLToPath(page.URL)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(FormatPage(page, s.Now())), 0644)
}

// Commit replaces the output directory with the saved pages.
func (s *FileStore) Commit() error {
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards the saved pages and leaves the output directory untouched.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// FormatPage renders a page as markdown with YAML frontmatter.
func FormatPage(page *harvest.Page, crawled time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	b.WriteString("\ncrawled: ")
	b.WriteString(crawled.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(page.Content)
	return b.String()
}

// URLToPath maps a page URL to a slash-separated relative file path
// rooted at the URL's host.
//
//	https://example.com/docs/api     → example.com/docs/api.md
//	https://example.com/docs/        → example.com/docs/index.md
//	https://example.com/list?page=2  → example.com/list-1a2b3c4d.md
//
// URLs differing only in their query map to distinct files. Fragments are
// ignored. Paths containing ".." segments are rejected.
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", harvest.Errorf(harvest.EINVALID, "invalid page URL: %v", err)
	}
	if u.Host == "" {
		return "", harvest.Errorf(harvest.EINVALID, "page URL has no host: %s", rawURL)
	}

	p := strings.TrimPrefix(u.Path, "/")
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", harvest.Errorf(harvest.EINVALID, "path traversal in URL: %s", rawURL)
		}
	}

	if p == "" || strings.HasSuffix(p, "/") {
		p += "index"
	}
	if u.RawQuery != "" {
		p += fmt.Sprintf("-%08x", uint32(xxhash.Sum64String(u.RawQuery)))
	}
	return sanitizeHost(u.Host) + "/" + p + ".md", nil
}

// sanitizeHost makes host:port usable as a directory name.
func sanitizeHost(host string) string {
	return strings.ReplaceAll(host, ":", "_")
}
