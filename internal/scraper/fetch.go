package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"sportiq/internal/pkg/config"
)

// Fetcher retrieves the raw markup of one document URL. Implementations
// must honor the context deadline; a failed fetch is reported as an
// error, never as partial markup.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// NewFetcher selects the fetcher implementation from config: plain HTTP
// by default, a headless browser when the site requires JS rendering.
func NewFetcher(cfg *config.ScraperConfig) Fetcher {
	if cfg.RenderJS {
		return NewBrowserFetcher(cfg.UserAgent, cfg.Timeout)
	}
	return NewHTTPFetcher(cfg.UserAgent, cfg.Headers, cfg.Timeout)
}

// HTTPFetcher fetches documents over plain HTTP with a realistic
// browser identity.
type HTTPFetcher struct {
	userAgent string
	headers   map[string]string
	client    *http.Client
}

func NewHTTPFetcher(userAgent string, headers map[string]string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &HTTPFetcher{
		userAgent: userAgent,
		headers:   headers,
		client:    &http.Client{Timeout: timeout, Transport: transport},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d fetching %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (f *HTTPFetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
}

// BrowserFetcher loads pages in headless Chrome so score markers that
// only exist after client-side rendering are present in the markup.
type BrowserFetcher struct {
	userAgent string
	timeout   time.Duration
}

func NewBrowserFetcher(userAgent string, timeout time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserFetcher{userAgent: userAgent, timeout: timeout}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(f.userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("headless fetch of %s: %w", url, err)
	}
	if strings.TrimSpace(html) == "" {
		return "", fmt.Errorf("headless fetch of %s returned empty document", url)
	}
	return html, nil
}
