package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/crawl"
)

// CrawlCmd crawls a site and hands the pages to the configured store.
type CrawlCmd struct {
	URL string
}

// Run executes the crawl.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	pages := deps.Crawler.Crawl(deps.Ctx, c.URL)

	if deps.Store == nil {
		if len(pages) > 0 {
			fmt.Fprintln(deps.Stdout, harvest.FormatPages(pages))
		}
		printSummary(deps.Stderr, pages)
		return nil
	}

	if deps.Ctx.Err() != nil {
		fmt.Fprintf(deps.Stderr, "Interrupted, saving %d pages gathered so far\n", len(pages))
	}

	// An interrupt ends the crawl, not the save.
	storeCtx := context.WithoutCancel(deps.Ctx)
	for _, page := range pages {
		if err := deps.Store.Save(storeCtx, page); err != nil {
			_ = deps.Store.Abort()
			fmt.Fprintf(deps.Stderr, "error saving %s: %s\n", page.URL, harvest.ErrorMessage(err))
			return err
		}
	}

	if err := deps.Store.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error committing: %v\n", err)
		return err
	}

	printSummary(deps.Stdout, pages)
	if deps.CrawlID != "" {
		fmt.Fprintf(deps.Stdout, "Crawl %s\n", deps.CrawlID)
	}
	return nil
}

func printSummary(w io.Writer, pages []*harvest.Page) {
	fmt.Fprintf(w, "Harvested %d pages (%s)\n", len(pages), crawl.FormatBytes(crawl.ContentBytes(pages)))
}

// progressPrinter writes one line per processed URL.
func progressPrinter(w io.Writer) crawl.ProgressFunc {
	return func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressCompleted:
			if e.Error != nil {
				fmt.Fprintf(w, "[%d] %s (empty: %s)\n", e.Pages, crawl.TruncateURL(e.URL, 60), harvest.ErrorMessage(e.Error))
				return
			}
			fmt.Fprintf(w, "[%d] %s\n", e.Pages, crawl.TruncateURL(e.URL, 60))
		case crawl.ProgressFailed:
			fmt.Fprintf(w, "skip %s: %s\n", crawl.TruncateURL(e.URL, 60), harvest.ErrorMessage(e.Error))
		}
	}
}
