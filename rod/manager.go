package rod

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fwojciec/harvest"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultRecycleAfter is the number of pages a browser renders before it is
// replaced.
const DefaultRecycleAfter = 75

// BrowserStats counts the work a BrowserManager has done.
type BrowserStats struct {
	Rendered int // pages opened over the manager's lifetime
	Recycles int // browsers replaced
}

// BrowserManager hands out pages from a headless Chrome and swaps in a fresh
// browser every recycleAfter pages. Chrome's memory grows with each page, so a
// crawl of thousands of pages would otherwise end in a bloated process.
type BrowserManager struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   bool

	bin          string
	recycleAfter int
	logger       *slog.Logger

	sinceLaunch int
	stats       BrowserStats
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithRecycleAfter sets the number of pages after which the browser is
// replaced. Values below 1 keep DefaultRecycleAfter.
func WithRecycleAfter(n int) ManagerOption {
	return func(bm *BrowserManager) {
		bm.recycleAfter = n
	}
}

// WithBrowserBin runs the Chrome binary at path instead of the one the
// launcher finds or downloads.
func WithBrowserBin(path string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.bin = path
	}
}

// WithLogger sets the logger for browser launches and recycling.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(bm *BrowserManager) {
		bm.logger = logger
	}
}

// NewBrowserManager launches a headless Chrome browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{recycleAfter: DefaultRecycleAfter}
	for _, opt := range opts {
		opt(bm)
	}
	if bm.recycleAfter < 1 {
		bm.recycleAfter = DefaultRecycleAfter
	}
	if bm.logger == nil {
		bm.logger = slog.New(slog.DiscardHandler)
	}

	browser, lnchr, err := bm.launch()
	if err != nil {
		return nil, err
	}
	bm.browser, bm.launcher = browser, lnchr
	return bm, nil
}

// NewPage opens a blank page, recycling the browser first when it has
// rendered recycleAfter pages. ctx is only checked before opening; the caller
// binds the page to its own context and closes it.
func (bm *BrowserManager) NewPage(ctx context.Context) (*rod.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, harvest.Errorf(harvest.EINVALID, "browser is closed")
	}
	if bm.sinceLaunch >= bm.recycleAfter {
		bm.recycle()
	}

	page, err := bm.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	bm.sinceLaunch++
	bm.stats.Rendered++
	return page, nil
}

// Stats returns the page and recycle counts so far.
func (bm *BrowserManager) Stats() BrowserStats {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.stats
}

// Close shuts the browser down. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	bm.logger.Debug("browser closed", "rendered", bm.stats.Rendered, "recycles", bm.stats.Recycles)
	return shutdown(bm.browser, bm.launcher)
}

// LauncherPID returns the process ID of the browser launcher, or 0 once
// the manager is closed.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.closed || bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

// recycle swaps in a new browser. If the launch fails the old browser stays
// in service for another recycleAfter pages. Must be called with mu held.
func (bm *BrowserManager) recycle() {
	bm.sinceLaunch = 0

	browser, lnchr, err := bm.launch()
	if err != nil {
		bm.logger.Warn("browser recycle failed", "err", err)
		return
	}

	_ = shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = browser, lnchr
	bm.stats.Recycles++
	bm.logger.Debug("browser recycled", "rendered", bm.stats.Rendered, "pid", lnchr.PID())
}

func (bm *BrowserManager) launch() (*rod.Browser, *launcher.Launcher, error) {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)
	if bm.bin != "" {
		lnchr = lnchr.Bin(bm.bin)
	}

	u, err := lnchr.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return browser, lnchr, nil
}

func shutdown(browser *rod.Browser, lnchr *launcher.Launcher) error {
	var err error
	if browser != nil {
		err = browser.Close()
	}
	if lnchr != nil {
		lnchr.Kill()
	}
	return err
}
