package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/compuzone-diy/price-crawler/internal/config"
	"github.com/compuzone-diy/price-crawler/internal/models"
	"github.com/compuzone-diy/price-crawler/internal/parser"
	"github.com/compuzone-diy/price-crawler/internal/ratelimit"
)

// Store is the snapshot persistence collaborator. Same-day writes for the
// same product id merge rather than duplicate; that upsert is the explicit
// contract absorbing duplicate ids across paginated pages.
type Store interface {
	SaveSnapshot(ctx context.Context, snap *models.Snapshot) error
	SetStatus(ctx context.Context, status models.CrawlStatus) error
}

// catalogState tracks a catalog through the run. LISTING short-circuits to
// PERSISTED when the catalog yields zero summaries.
type catalogState int

const (
	statePending catalogState = iota
	stateListing
	stateDetailing
	statePersisted
)

func (s catalogState) String() string {
	switch s {
	case statePending:
		return "PENDING"
	case stateListing:
		return "LISTING"
	case stateDetailing:
		return "DETAILING"
	case statePersisted:
		return "PERSISTED"
	default:
		return "UNKNOWN"
	}
}

type Options struct {
	SelectorTimeout time.Duration
	ExcludeKeywords []string
}

// Pipeline sequences the whole crawl: per catalog, list-extract all pages,
// visit every product's detail page with a politeness delay in between, then
// hand the batch to the Store. Traversal is strictly sequential through the
// one shared Renderer.
type Pipeline struct {
	renderer        Renderer
	list            *parser.ListParser
	detail          *parser.DetailParser
	store           Store
	limiter         ratelimit.Limiter
	catalogs        []config.Catalog
	selectorTimeout time.Duration
	runID           string
	logger          *slog.Logger
}

func New(renderer Renderer, store Store, limiter ratelimit.Limiter, catalogs []config.Catalog, opts Options) *Pipeline {
	if opts.SelectorTimeout <= 0 {
		opts.SelectorTimeout = 10 * time.Second
	}

	return &Pipeline{
		renderer:        renderer,
		list:            parser.NewListParser(),
		detail:          parser.NewDetailParser(opts.ExcludeKeywords),
		store:           store,
		limiter:         limiter,
		catalogs:        catalogs,
		selectorTimeout: opts.SelectorTimeout,
		runID:           uuid.New().String(),
		logger:          slog.Default().With("component", "pipeline"),
	}
}

// Run crawls every configured catalog for today's KST date. Per-product
// failures are absorbed; a listing navigation failure, a storage write
// failure or a cancelled context aborts the remaining work.
func (p *Pipeline) Run(ctx context.Context) error {
	date := models.DateKey(time.Now())
	p.logger.Info("crawl started", "date", date, "runId", p.runID, "catalogs", len(p.catalogs))

	p.setStatus(ctx, models.StateRunning, 0, "수집 시작")

	total := 0
	for i, catalog := range p.catalogs {
		n, err := p.crawlCatalog(ctx, catalog, date, i)
		if err != nil {
			p.setStatus(ctx, models.StateError, p.catalogPercent(i, 0, 1), err.Error())
			return fmt.Errorf("catalog %s: %w", catalog.Slug, err)
		}
		total += n
	}

	p.setStatus(ctx, models.StateDone, 100, fmt.Sprintf("%s 일자 %d개 상품 저장 완료", date, total))
	p.logger.Info("crawl finished", "date", date, "products", total)
	return nil
}

func (p *Pipeline) crawlCatalog(ctx context.Context, catalog config.Catalog, date string, catalogIdx int) (int, error) {
	logger := p.logger.With("catalog", catalog.Slug)
	state := statePending

	transition := func(next catalogState) {
		logger.Debug("catalog state change", "from", state.String(), "to", next.String())
		state = next
	}

	transition(stateListing)
	summaries, err := p.collectSummaries(ctx, catalog)
	if err != nil {
		return 0, err
	}

	if len(summaries) == 0 {
		// empty catalog: nothing to detail or persist
		logger.Warn("no summaries found, skipping catalog")
		transition(statePersisted)
		return 0, nil
	}

	logger.Info("listing extracted", "products", len(summaries))

	transition(stateDetailing)
	for i, product := range summaries {
		if err := p.limiter.Wait(ctx); err != nil {
			return 0, err
		}

		p.enrich(ctx, product)

		p.setStatus(ctx, models.StateRunning,
			p.catalogPercent(catalogIdx, i+1, len(summaries)),
			fmt.Sprintf("[%s] %d/%d %s", catalog.ID, i+1, len(summaries), product.Name))
	}

	snap := &models.Snapshot{
		Date:     date,
		Brand:    catalog.ID,
		Products: summaries,
	}
	if err := p.store.SaveSnapshot(ctx, snap); err != nil {
		return 0, fmt.Errorf("failed to persist snapshot: %w", err)
	}

	transition(statePersisted)
	logger.Info("snapshot persisted", "date", date, "products", len(summaries))
	return len(summaries), nil
}

// collectSummaries walks every listing page of the catalog. Page count comes
// from the pager links on the first rendered page; pages 2..N are reached by
// triggering the in-page paging routine, never by navigating. Results keep
// page order, then DOM order within a page.
func (p *Pipeline) collectSummaries(ctx context.Context, catalog config.Catalog) ([]*models.Product, error) {
	if err := p.renderer.Navigate(ctx, catalog.ListURL); err != nil {
		return nil, fmt.Errorf("failed to open listing: %w", err)
	}

	if !p.renderer.WaitForSelector(parser.ListContainerSelector, p.selectorTimeout) {
		// structural absence: treated as an empty catalog, not an error
		return nil, nil
	}

	html, err := p.renderer.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read listing content: %w", err)
	}

	pages := p.list.PagerCount(html)
	summaries, err := p.list.ParseListing(html, catalog)
	if err != nil {
		return nil, err
	}

	for pageNum := 2; pageNum <= pages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		offset := (pageNum - 1) * catalog.ItemsPerPage
		if err := triggerPagination(p.renderer, pageNum, offset); err != nil {
			// keep what we have; partial listing beats none
			p.logger.Warn("pagination trigger failed", "catalog", catalog.Slug, "page", pageNum, "error", err)
			break
		}

		p.renderer.Settle()
		p.renderer.WaitForSelector(parser.ListContainerSelector, p.selectorTimeout)

		html, err := p.renderer.Content()
		if err != nil {
			return nil, fmt.Errorf("failed to read listing content on page %d: %w", pageNum, err)
		}

		pageSummaries, err := p.list.ParseListing(html, catalog)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, pageSummaries...)
	}

	return summaries, nil
}

// enrich populates the product's component list from its detail page. Every
// failure mode here is per-product: the product is kept with an empty
// component list, because partial data beats dropped data downstream.
func (p *Pipeline) enrich(ctx context.Context, product *models.Product) {
	logger := p.logger.With("productNo", product.ProductNo)

	if err := p.renderer.Navigate(ctx, product.DetailURL); err != nil {
		logger.Warn("detail navigation failed, keeping product without components", "error", err)
		return
	}

	if !p.renderer.WaitForSelector(parser.ComponentTableSelector, p.selectorTimeout) {
		logger.Warn("spec table not found on detail page")
		return
	}

	html, err := p.renderer.Content()
	if err != nil {
		logger.Warn("failed to read detail content", "error", err)
		return
	}

	components := p.detail.ParseComponents(html)
	if components == nil {
		components = make([]models.Component, 0)
	}
	if len(components) == 0 {
		logger.Warn("no components extracted")
	}

	product.Components = components
}

// catalogPercent maps per-catalog item progress onto the whole run's 0-100
// range, each catalog owning an equal share.
func (p *Pipeline) catalogPercent(catalogIdx, done, totalItems int) int {
	if len(p.catalogs) == 0 || totalItems == 0 {
		return 0
	}

	share := 100.0 / float64(len(p.catalogs))
	percent := share*float64(catalogIdx) + share*float64(done)/float64(totalItems)
	return int(percent)
}

func (p *Pipeline) setStatus(ctx context.Context, state models.CrawlState, percent int, detail string) {
	status := models.CrawlStatus{
		Status:  state,
		Percent: percent,
		Detail:  detail,
		RunID:   p.runID,
	}

	// progress is observability, not correctness; a failed update never
	// aborts the run
	if err := p.store.SetStatus(ctx, status); err != nil {
		p.logger.Warn("failed to update crawl status", "error", err)
	}
}
