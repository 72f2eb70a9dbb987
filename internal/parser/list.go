package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/compuzone-diy/price-crawler/internal/config"
	"github.com/compuzone-diy/price-crawler/internal/models"
)

const (
	siteBaseURL     = "https://www.compuzone.co.kr"
	detailURLFormat = siteBaseURL + "/product/product_detail.htm?ProductNo=%s"

	// ListContainerSelector is the listing container the orchestrator waits
	// on before extraction.
	ListContainerSelector = "#recom_search_ul"

	listItemSelector  = ListContainerSelector + " > li"
	listNameSelector  = "p.name"
	listPriceSelector = ".reco_price"
	pagerLinkSelector = ".pd_paging a.num"

	productNoAttr     = "data-pricetable"
	originalPriceAttr = "data-price"
	discountPriceAttr = "data-discountprice"
)

// ListParser extracts product summaries from a rendered catalog listing page.
type ListParser struct {
	logger *slog.Logger
}

func NewListParser() *ListParser {
	return &ListParser{
		logger: slog.Default().With("component", "list_parser"),
	}
}

// ParseListing returns one summary per listing item that carries both a name
// node and a price node. Items without a resolvable product id are dropped;
// they cannot be keyed in storage or visited for detail extraction.
func (p *ListParser) ParseListing(html string, catalog config.Catalog) ([]*models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	var products []*models.Product

	doc.Find(listItemSelector).Each(func(_ int, item *goquery.Selection) {
		nameEl := item.Find(listNameSelector)
		priceEl := item.Find(listPriceSelector)
		if nameEl.Length() == 0 || priceEl.Length() == 0 {
			return
		}

		productNo := strings.TrimSpace(priceEl.AttrOr(productNoAttr, ""))
		if productNo == "" {
			p.logger.Debug("listing item without product id dropped", "catalog", catalog.Slug)
			return
		}

		product := models.NewProduct(productNo)
		product.Name = strings.TrimSpace(nameEl.Text())
		product.Brand = catalog.ID
		product.OriginalPrice = parsePrice(priceEl.AttrOr(originalPriceAttr, ""))
		product.DiscountPrice = parsePrice(priceEl.AttrOr(discountPriceAttr, ""))
		product.DetailURL = resolveDetailURL(item.Find("a[href]").First().AttrOr("href", ""), productNo)

		products = append(products, product)
	})

	return products, nil
}

// PagerCount counts the pager number links on a rendered first page. A
// single-page catalog renders no pager at all, so the minimum is 1.
func (p *ListParser) PagerCount(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.logger.Warn("failed to parse listing HTML for pager", "error", err)
		return 1
	}

	n := doc.Find(pagerLinkSelector).Length()
	if n < 1 {
		return 1
	}
	return n
}

// resolveDetailURL prefers the item's anchor href; absolute urls pass
// through, relative ones are rewritten against the site's /product/ directory
// layout. With no anchor the url is reconstructed from the product id.
func resolveDetailURL(href, productNo string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return fmt.Sprintf(detailURLFormat, productNo)
	}

	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	for strings.HasPrefix(href, "../") {
		href = strings.TrimPrefix(href, "../")
	}
	href = strings.TrimPrefix(href, "./")
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}

	return siteBaseURL + href
}

// parsePrice parses an attribute-embedded price string, stripping thousands
// separators. Unparseable input yields 0, never an error; 0 downstream means
// "no price available".
func parsePrice(raw string) int {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
