package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/bloom"
	"github.com/fwojciec/harvest/crawl"
	"github.com/fwojciec/harvest/fs"
	"github.com/fwojciec/harvest/goquery"
	"github.com/fwojciec/harvest/htmltomarkdown"
	harvesthttp "github.com/fwojciec/harvest/http"
	"github.com/fwojciec/harvest/pdf"
	"github.com/fwojciec/harvest/readability"
	"github.com/fwojciec/harvest/rod"
	harvestslog "github.com/fwojciec/harvest/slog"
	"github.com/fwojciec/harvest/sqlite"
	"github.com/fwojciec/harvest/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database, opened when --db is set.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("harvest"),
		kong.Description("Crawl a site breadth-first and save its pages as markdown"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Configuration(kong.JSON),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no URL given. Run 'harvest --help' for usage")
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}
	if err := cli.validate(); err != nil {
		return err
	}

	filter, err := harvest.NewURLFilter(cli.Include, cli.Exclude)
	if err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: newLogger(stderr, cli.Verbose),
	}

	httpOpts := []harvesthttp.Option{harvesthttp.WithTimeout(cli.Timeout)}
	if cli.UserAgent != "" {
		httpOpts = append(httpOpts, harvesthttp.WithUserAgent(cli.UserAgent))
	}
	httpFetcher := harvesthttp.NewFetcher(httpOpts...)
	defer httpFetcher.Close()

	var pageFetcher harvest.Fetcher = httpFetcher
	if cli.Render {
		rodFetcher, err := rod.NewFetcher(
			rod.WithFetchTimeout(cli.Timeout),
			rod.WithManager(
				rod.WithRecycleAfter(cli.RecycleAfter),
				rod.WithBrowserBin(cli.Browser),
				rod.WithLogger(deps.Logger),
			),
		)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --render")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer rodFetcher.Close()
		pageFetcher = rodFetcher
	}

	var extractor harvest.Extractor
	switch cli.Extract {
	case "trafilatura":
		extractor = trafilatura.NewExtractor()
	case "readability":
		extractor = readability.NewExtractor()
	}

	var sitemaps harvest.SitemapService
	if cli.Sitemap {
		sitemaps = harvestslog.NewLoggingSitemapService(
			harvesthttp.NewSitemapService(httpFetcher.Client()), deps.Logger)
	}

	deps.Crawler = &crawl.Crawler{
		Fetcher:         harvestslog.NewLoggingFetcher(pageFetcher, deps.Logger),
		DocumentFetcher: harvestslog.NewLoggingFetcher(httpFetcher, deps.Logger),
		Stripper:        goquery.NewLinkStripper(),
		Converter:       htmltomarkdown.NewConverter(),
		Links:           goquery.NewLinkExtractor(),
		PDF:             harvestslog.NewLoggingPDFExtractor(pdf.NewExtractor(), deps.Logger),
		Extractor:       extractor,
		Sitemaps:        sitemaps,
		Filter:          filter,
		SameHost:        cli.SameHost,
		MaxDepth:        cli.MaxDepth,
		MaxPages:        cli.MaxPages,
		RetryDelays:     crawl.RetryDelays(cli.Retries),
		Logger:          deps.Logger,
	}
	if cli.ApproxVisited {
		capacity := visitedCapacity(cli.MaxPages)
		deps.Crawler.NewVisitedSet = func() harvest.VisitedSet {
			return bloom.NewVisitedSet(capacity, 0.001)
		}
	}
	if !cli.Quiet {
		deps.Crawler.Progress = progressPrinter(stderr)
	}

	switch {
	case cli.Out != "":
		abs, err := filepath.Abs(cli.Out)
		if err != nil {
			return fmt.Errorf("resolve output directory: %w", err)
		}
		if filepath.Dir(abs) == abs {
			return harvest.Errorf(harvest.EINVALID, "refusing to replace root directory %s", abs)
		}
		deps.Store = harvestslog.NewLoggingPageStore(
			fs.NewFileStore(filepath.Dir(abs), filepath.Base(abs)), deps.Logger)
	case cli.DB != "":
		m.DB = sqlite.NewDB(cli.DB)
		if err := m.DB.Open(); err != nil {
			return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		defer m.Close()

		store := sqlite.NewPageStore(m.DB, cli.URL)
		deps.CrawlID = store.CrawlID()
		deps.Store = harvestslog.NewLoggingPageStore(store, deps.Logger)
	}

	cmd := &CrawlCmd{URL: cli.URL}
	return cmd.Run(deps)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// visitedCapacity sizes the bloom filter for a crawl capped at maxPages.
func visitedCapacity(maxPages int) uint {
	if maxPages <= 0 {
		maxPages = crawl.DefaultMaxPages
	}
	return uint(max(maxPages*10, 10000))
}
