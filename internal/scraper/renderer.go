package scraper

import (
	"context"
	"fmt"
	"time"
)

// Renderer is the page-rendering capability the pipeline drives. It is the
// one shared mutable resource of a run: Compuzone's pagination mutates
// client-side state on the rendered page, so exactly one Renderer is used and
// never concurrently. internal/browser.Page is the production implementation;
// tests substitute a fixture-backed fake.
type Renderer interface {
	// Navigate loads url and waits for client-side rendering to settle.
	Navigate(ctx context.Context, url string) error
	// WaitForSelector reports whether selector appeared within timeout.
	// Absence is signalled, not raised; the caller decides if it is fatal.
	WaitForSelector(selector string, timeout time.Duration) bool
	// Evaluate runs a JavaScript expression in the page context.
	Evaluate(expression string) (any, error)
	// Content returns the current rendered HTML.
	Content() (string, error)
	// Settle waits out the site's asynchronous re-render.
	Settle()
}

// The listing page exposes a global paging routine that swaps the product
// list in place. Its arguments are the 1-based page number and the absolute
// item offset.
const paginationExprFormat = "() => ListPageSearch(%d, %d)"

// triggerPagination invokes the in-page paging routine. The listing nodes
// refresh asynchronously afterwards; the caller must settle and re-extract.
func triggerPagination(r Renderer, pageNum, offset int) error {
	if _, err := r.Evaluate(fmt.Sprintf(paginationExprFormat, pageNum, offset)); err != nil {
		return fmt.Errorf("failed to trigger pagination to page %d: %w", pageNum, err)
	}
	return nil
}
