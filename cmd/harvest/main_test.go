package main_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/harvest"
	main "github.com/fwojciec/harvest/cmd/harvest"
	"github.com/fwojciec/harvest/fs"
	"github.com/fwojciec/harvest/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--help"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "harvest")
	assert.Contains(t, stdout.String(), "--max-depth")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_InvalidFlags(t *testing.T) {
	t.Parallel()

	t.Run("rejects bad include regex", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"--include", "(", "https://example.com/"}, &stdout, &stderr)

		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})

	t.Run("rejects out together with db", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{
			"--out", filepath.Join(dir, "site"),
			"--db", filepath.Join(dir, "harvest.db"),
			"https://example.com/",
		}, &stdout, &stderr)

		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})

	t.Run("rejects unknown extractor", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"--extract", "magic", "https://example.com/"}, &stdout, &stderr)

		assert.Error(t, err)
	})

	t.Run("rejects negative retries", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"--retries=-1", "https://example.com/"}, &stdout, &stderr)

		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}

// newSite serves a three-level site: / links to /a and /b, /a links to /c.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string]string{
		"/":  `<html><body><h1>Home</h1><a href="/a">A</a> <a href="/b">B</a></body></html>`,
		"/a": `<html><body><h1>Alpha</h1><a href="/c">C</a></body></html>`,
		"/b": `<html><body><h1>Beta</h1></body></html>`,
		"/c": `<html><body><h1>Gamma</h1></body></html>`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMain_Run_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("prints pages to stdout without a store", func(t *testing.T) {
		t.Parallel()

		// Given a small site
		srv := newSite(t)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		// When crawling one level deep
		err := m.Run(context.Background(), []string{"--max-depth", "1", srv.URL + "/"}, &stdout, &stderr)

		// Then the seed and its direct links are printed, in BFS order
		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "## "+srv.URL+"/\n")
		assert.Contains(t, out, "Home")
		assert.Contains(t, out, "## "+srv.URL+"/a\n")
		assert.Contains(t, out, "## "+srv.URL+"/b\n")
		assert.NotContains(t, out, "Gamma")
		assert.Less(t, bytes.Index(stdout.Bytes(), []byte("Alpha")), bytes.Index(stdout.Bytes(), []byte("Beta")))
		assert.Contains(t, stderr.String(), "Harvested 3 pages")
	})

	t.Run("writes markdown tree with out", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t)
		outDir := filepath.Join(t.TempDir(), "site")
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"--quiet", "--out", outDir, srv.URL + "/"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Harvested 4 pages")

		for _, p := range []string{"/", "/a", "/b", "/c"} {
			rel, err := fs.URLToPath(srv.URL + p)
			require.NoError(t, err)
			_, err = os.Stat(filepath.Join(outDir, filepath.FromSlash(rel)))
			assert.NoError(t, err, "missing file for %s", p)
		}
		_, err = os.Stat(outDir + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("stores crawl in sqlite with db", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t)
		dbPath := filepath.Join(t.TempDir(), "harvest.db")
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"--max-pages", "2", "--db", dbPath, srv.URL + "/"}, &stdout, &stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Crawl ")

		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		defer db.Close()

		pages, err := sqlite.FindPages(context.Background(), db, sqlite.PageFilter{})
		require.NoError(t, err)
		require.Len(t, pages, 2)
		assert.Equal(t, srv.URL+"/", pages[0].URL)
		assert.Equal(t, srv.URL+"/a", pages[1].URL)
	})

	t.Run("reads flags from json config", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t)
		config := filepath.Join(t.TempDir(), "harvest.json")
		require.NoError(t, os.WriteFile(config, []byte(`{"max-depth": 0}`), 0644))
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"--config", config, srv.URL + "/"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "Harvested 1 pages")
	})

	t.Run("exclude keeps matching links out", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"--exclude", "/a$", srv.URL + "/"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.NotContains(t, stdout.String(), "Alpha")
		assert.Contains(t, stdout.String(), "Beta")
	})

	t.Run("missing page is kept empty", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{srv.URL + "/missing"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Equal(t, "## "+srv.URL+"/missing\n", stdout.String())
		assert.Contains(t, stderr.String(), "Harvested 1 pages (0 B)")
	})
}

// newInterruptedSite serves a seed linking to /b; fetching /b cancels the
// crawl as an interrupt would.
func newInterruptedSite(t *testing.T, cancel context.CancelFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			_, _ = w.Write([]byte(`<html><body><h1>Home</h1><a href="/b">B</a></body></html>`))
		case "/b":
			cancel()
			<-r.Context().Done()
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMain_Run_Interrupted(t *testing.T) {
	t.Parallel()

	t.Run("out keeps pages gathered before interrupt", func(t *testing.T) {
		t.Parallel()

		// Given a crawl interrupted while fetching the second page
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		srv := newInterruptedSite(t, cancel)
		outDir := filepath.Join(t.TempDir(), "site")
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		// When the crawl runs with a file store
		err := m.Run(ctx, []string{"-q", "--out", outDir, srv.URL + "/"}, &stdout, &stderr)

		// Then the seed is written and the interrupted page is not
		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "Interrupted")
		assert.Contains(t, stdout.String(), "Harvested 1 pages")

		rel, err := fs.URLToPath(srv.URL + "/")
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.Contains(t, string(data), "Home")

		rel, err = fs.URLToPath(srv.URL + "/b")
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(outDir, filepath.FromSlash(rel)))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("db keeps pages gathered before interrupt", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		srv := newInterruptedSite(t, cancel)
		dbPath := filepath.Join(t.TempDir(), "harvest.db")
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(ctx, []string{"-q", "--db", dbPath, srv.URL + "/"}, &stdout, &stderr)
		require.NoError(t, err)

		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		defer db.Close()

		pages, err := sqlite.FindPages(context.Background(), db, sqlite.PageFilter{})
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, srv.URL+"/", pages[0].URL)
		assert.Contains(t, pages[0].Content, "Home")
	})
}
