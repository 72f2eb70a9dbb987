package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/compuzone-diy/price-crawler/internal/browser"
	"github.com/compuzone-diy/price-crawler/internal/config"
	"github.com/compuzone-diy/price-crawler/internal/ratelimit"
	"github.com/compuzone-diy/price-crawler/internal/scraper"
	"github.com/compuzone-diy/price-crawler/internal/storage"
	"github.com/compuzone-diy/price-crawler/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("crawl failed", "error", err)
		// non-zero exit tells the scheduler the automation failed
		os.Exit(1)
	}
}

func run() error {
	var (
		headless    = flag.Bool("headless", true, "Run browser in headless mode")
		catalogSlug = flag.String("catalog", "", "Crawl only the catalog with this slug (e.g. premium-pc)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting compuzone price crawler")

	catalogs, err := selectCatalogs(*catalogSlug)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutdown signal received")
		cancel()
	}()

	b, err := browser.New(&browser.Options{
		Headless:       *headless && cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      browser.DefaultOptions().UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer b.Close()

	store, err := storage.New(ctx, cfg.Firebase, cfg.Crawler.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	page, err := b.NewPage(cfg.Crawler.NavRetries, cfg.Crawler.SettleDelay)
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	limiter := ratelimit.NewPolitenessLimiter(cfg.Crawler.PolitenessDelay)

	pipeline := scraper.New(page, store, limiter, catalogs, scraper.Options{
		SelectorTimeout: cfg.Crawler.SelectorTimeout,
		ExcludeKeywords: cfg.Crawler.ExcludeKeywords,
	})

	return pipeline.Run(ctx)
}

func selectCatalogs(slug string) ([]config.Catalog, error) {
	catalogs := config.Catalogs()
	if slug == "" {
		return catalogs, nil
	}

	for _, c := range catalogs {
		if c.Slug == slug {
			return []config.Catalog{c}, nil
		}
	}

	return nil, fmt.Errorf("unknown catalog slug %q", slug)
}
