package scanner

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// RenderedFetcher fetches pages through headless Chrome so documents built
// by JavaScript still expose their forms to the check library. Selected via
// the fetcher=rendered config; the plain HTTPFetcher handles everything else.
type RenderedFetcher struct {
	timeout time.Duration
}

func NewRenderedFetcher(timeout time.Duration) *RenderedFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RenderedFetcher{timeout: timeout}
}

func (f *RenderedFetcher) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.UserAgent(defaultUserAgent),
	)
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var html, finalURL string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(2*time.Second),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: rendered fetch: %v", ErrFetch, err)
	}

	return &FetchResult{
		FinalURL:   finalURL,
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       []byte(html),
	}, nil
}
