package snapshot

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"airbnb-dashboard/utils"
)

const (
	viewportWidth  = 1400
	viewportHeight = 1000
	captureTimeout = 60 * time.Second
)

// Capturer renders a page to PNG.
type Capturer interface {
	Capture(ctx context.Context, url string) ([]byte, error)
}

// Browser is a headless Chrome instance shared by all captures. Each
// capture runs in its own tab.
type Browser struct {
	ctx         context.Context
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc
}

// NewBrowser starts headless Chrome. chromeBin overrides binary discovery.
func NewBrowser(ctx context.Context, chromeBin string, logger *utils.Logger) (*Browser, error) {
	bin := findChromeBinary(chromeBin)
	if bin != "" {
		logger.Info("[snapshot] Using browser binary: %s", bin)
	} else {
		logger.Warn("[snapshot] No browser binary found, relying on chromedp defaults")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	if bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Start the browser now so that every capture shares it.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("snapshot: start browser: %w", err)
	}

	return &Browser{ctx: browserCtx, cancelAlloc: cancelAlloc, cancelCtx: cancelCtx}, nil
}

// Capture loads url in a new tab, waits for the dashboard and takes a
// full-page screenshot.
func (b *Browser) Capture(ctx context.Context, url string) ([]byte, error) {
	tabCtx, cancel := chromedp.NewContext(b.ctx)
	defer cancel()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, captureTimeout)
	defer cancelTimeout()

	// Propagate cancellation of the caller's context to the tab.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var buf []byte
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		chromedp.Navigate(url),
		chromedp.WaitVisible("#dashboard", chromedp.ByQuery),
		chromedp.Sleep(time.Second),
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp capture: %w", err)
	}
	return buf, nil
}

// Close shuts the browser down.
func (b *Browser) Close() {
	b.cancelCtx()
	b.cancelAlloc()
}

// findChromeBinary locates a Chrome or Chromium binary.
func findChromeBinary(override string) string {
	if override != "" {
		return override
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
