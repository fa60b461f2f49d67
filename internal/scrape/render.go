package scrape

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Renderer obtains post-JavaScript HTML for a URL. Implemented by
// ChromeRenderer; stubbed in orchestrator tests.
type Renderer interface {
	RenderHTML(ctx context.Context, pageURL string) (string, error)
}

// ChromeRenderer drives a headless Chrome instance. Each RenderHTML
// call owns one browser for its lifetime only: allocator and browser
// context are created inside the call and cancelled on every exit
// path, so no browser state leaks across pages or batches.
type ChromeRenderer struct {
	timeout time.Duration
	logger  *zap.Logger
}

func NewChromeRenderer(timeout time.Duration, logger *zap.Logger) *ChromeRenderer {
	return &ChromeRenderer{timeout: timeout, logger: logger}
}

func (r *ChromeRenderer) RenderHTML(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(browserUserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, r.timeout)
	defer cancelTimeout()

	start := time.Now()
	var htmlContent string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return "", err
	}

	r.logger.Debug("rendered page",
		zap.String("url", pageURL),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return htmlContent, nil
}
