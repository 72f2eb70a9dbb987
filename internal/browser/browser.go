package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Browser owns the Playwright runtime, one Chromium instance and one browser
// context. The whole crawl runs through a single page created from it; see
// Page for the reason.
type Browser struct {
	pw        *playwright.Playwright
	browser   playwright.Browser
	context   playwright.BrowserContext
	timeout   time.Duration
	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error
}

type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		AcceptLanguage: "ko-KR,ko;q=0.9,en;q=0.8",
		TimezoneID:     "Asia/Seoul",
		Locale:         "ko-KR",
	}
}

func New(opts *Options) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	ctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:  &opts.UserAgent,
		Locale:     &opts.Locale,
		TimezoneId: &opts.TimezoneID,
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		ExtraHttpHeaders: map[string]string{
			"Accept-Language": opts.AcceptLanguage,
		},
	})
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	return &Browser{
		pw:      pw,
		browser: b,
		context: ctx,
		timeout: opts.Timeout,
		logger:  slog.Default().With("component", "browser"),
	}, nil
}

// NewPage returns a page wrapper with the given navigation retry count and
// post-navigation settle delay.
func (b *Browser) NewPage(navRetries int, settleDelay time.Duration) (*Page, error) {
	page, err := b.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	if b.timeout > 0 {
		page.SetDefaultTimeout(float64(b.timeout.Milliseconds()))
	}

	return &Page{
		page:        page,
		logger:      b.logger,
		navRetries:  navRetries,
		settleDelay: settleDelay,
	}, nil
}

// Close releases the context, browser and Playwright runtime. Safe to call
// from multiple exit paths; only the first call does the work.
func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		var errs []error

		if b.context != nil {
			if err := b.context.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close context: %w", err))
			}
		}

		if b.browser != nil {
			if err := b.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
			}
		}

		if b.pw != nil {
			if err := b.pw.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
			}
		}

		if len(errs) > 0 {
			b.closeErr = fmt.Errorf("errors during close: %v", errs)
		}
	})

	return b.closeErr
}

// Page drives a single rendered page. Compuzone renders listings with client
// script and its pagination mutates in-page state, so the crawl deliberately
// shares one page and never navigates it concurrently.
type Page struct {
	page        playwright.Page
	logger      *slog.Logger
	navRetries  int
	settleDelay time.Duration
}

// Navigate loads url with bounded retries and linear backoff, then waits the
// settle delay so client-side rendering can complete. The page is empty for
// extraction purposes without that wait.
func (p *Page) Navigate(ctx context.Context, url string) error {
	var lastErr error

	for i := 0; i < p.navRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if i > 0 {
			p.logger.Info("retrying navigation", "attempt", i+1, "url", url)
			time.Sleep(time.Duration(i+1) * time.Second)
		}

		_, err := p.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		})
		if err == nil {
			p.Settle()
			return nil
		}

		lastErr = err
		p.logger.Error("navigation failed", "error", err, "attempt", i+1, "url", url)
	}

	return fmt.Errorf("failed after %d retries: %w", p.navRetries, lastErr)
}

// WaitForSelector reports whether selector appeared within timeout. Absence
// is not an error here; the caller decides whether it is fatal.
func (p *Page) WaitForSelector(selector string, timeout time.Duration) bool {
	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
		State:   playwright.WaitForSelectorStateAttached,
	})
	if err != nil {
		p.logger.Warn("selector not found", "selector", selector, "error", err)
		return false
	}
	return true
}

// Evaluate runs a JavaScript expression in the page context.
func (p *Page) Evaluate(expression string) (any, error) {
	return p.page.Evaluate(expression)
}

// Content returns the page's current rendered HTML.
func (p *Page) Content() (string, error) {
	return p.page.Content()
}

// Settle blocks for the configured settle delay. Called after navigations and
// after pagination triggers, both of which re-render the listing
// asynchronously.
func (p *Page) Settle() {
	time.Sleep(p.settleDelay)
}

func (p *Page) Close() error {
	return p.page.Close()
}
