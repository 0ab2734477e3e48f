package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Crawler *crawl.Crawler

	// Store is nil when pages are written to stdout.
	Store harvest.PageStore

	// CrawlID identifies the stored crawl when writing to SQLite.
	CrawlID string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config kong.ConfigFlag `help:"Load flag values from a JSON file"`

	URL string `arg:"" required:"" help:"Seed URL to crawl"`

	MaxDepth      int           `short:"d" default:"2" env:"HARVEST_MAX_DEPTH" help:"Deepest link distance from the seed (negative: 100)"`
	MaxPages      int           `short:"n" default:"100" env:"HARVEST_MAX_PAGES" help:"Maximum pages to collect (0: 10000)"`
	Timeout       time.Duration `short:"t" default:"10s" env:"HARVEST_TIMEOUT" help:"Fetch timeout per request"`
	Retries       int           `default:"0" env:"HARVEST_RETRIES" help:"Extra fetch attempts per URL"`
	UserAgent     string        `env:"HARVEST_USER_AGENT" help:"User-Agent header for HTTP requests"`
	Render        bool          `env:"HARVEST_RENDER" help:"Render HTML pages in a headless browser"`
	Browser       string        `env:"HARVEST_BROWSER" help:"Chrome binary used by --render (default: found or downloaded)"`
	RecycleAfter  int           `default:"75" env:"HARVEST_RECYCLE_AFTER" help:"Pages rendered before the browser is restarted"`
	Extract       string        `default:"none" enum:"none,trafilatura,readability" env:"HARVEST_EXTRACT" help:"Main-content extractor (none, trafilatura, readability)"`
	SameHost      bool          `env:"HARVEST_SAME_HOST" help:"Only follow links on the seed host"`
	Include       []string      `short:"i" sep:"none" help:"Follow only URLs matching regex (repeatable)"`
	Exclude       []string      `short:"x" sep:"none" help:"Skip URLs matching regex (repeatable)"`
	Sitemap       bool          `env:"HARVEST_SITEMAP" help:"Seed the crawl from the site's sitemap.xml"`
	ApproxVisited bool          `env:"HARVEST_APPROX_VISITED" help:"Track visited URLs in a bloom filter"`
	Out           string        `short:"o" env:"HARVEST_OUT" help:"Write markdown files to this directory (replaced on success)"`
	DB            string        `env:"HARVEST_DB" help:"Store the crawl in this SQLite database"`
	Verbose       bool          `short:"v" help:"Log debug output to stderr"`
	Quiet         bool          `short:"q" help:"Do not print progress"`
}

func (c *CLI) validate() error {
	if c.Out != "" && c.DB != "" {
		return harvest.Errorf(harvest.EINVALID, "--out and --db cannot be used together")
	}
	if c.Retries < 0 {
		return harvest.Errorf(harvest.EINVALID, "--retries must not be negative")
	}
	return nil
}
