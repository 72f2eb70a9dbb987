package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/compuzone-diy/price-crawler/internal/models"
)

const (
	// ComponentTableSelector is the spec table the orchestrator waits on
	// before extraction.
	ComponentTableSelector = "table.table_style_recom"

	componentRowSelector = ComponentTableSelector + " tr"

	categoryCellSelector = "td.tit"
	nameCellSelector     = "td.name"
	priceCellSelector    = "td.price"
	quantityCellSelector = "td.num"

	// Raw numeric attributes the site places next to the locale-formatted
	// cell text. Authoritative when present.
	rawPriceAttr    = "prm_ori"
	rawQuantityAttr = "prm_qty"
)

var (
	// Dropdown-selected part names carry a decorative "▶선택◀ …" suffix
	// after the real name.
	selectSuffixPattern = regexp.MustCompile(`▶[^◀]*◀.*`)
	nonDigitPattern     = regexp.MustCompile(`[^0-9]`)
)

// DetailParser extracts component rows from a rendered detail page's spec
// table. excludeKeywords marks rows that are not physical components:
// optional add-ons, MD-recommendation picks, service entries, OS line items.
type DetailParser struct {
	excludeKeywords []string
	logger          *slog.Logger
}

func NewDetailParser(excludeKeywords []string) *DetailParser {
	return &DetailParser{
		excludeKeywords: excludeKeywords,
		logger:          slog.Default().With("component", "detail_parser"),
	}
}

// ParseComponents returns one component per qualifying spec-table row. It is
// a pure function of the input HTML and never fails: malformed markup or a
// row-level panic degrades to an empty result, which the caller logs against
// the owning product id.
func (p *DetailParser) ParseComponents(html string) (components []models.Component) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("component extraction panicked", "panic", r)
			components = nil
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.logger.Warn("failed to parse detail HTML", "error", err)
		return nil
	}

	doc.Find(componentRowSelector).Each(func(_ int, row *goquery.Selection) {
		if row.Find("th").Length() > 0 {
			return // header row
		}

		categoryCell := row.Find(categoryCellSelector)
		if categoryCell.Length() == 0 {
			return
		}

		category := strings.TrimSpace(categoryCell.Text())
		if p.isExcluded(category) {
			return
		}

		name := p.partName(row)
		if name == "" {
			return
		}

		components = append(components, models.Component{
			Type:      category,
			PartName:  name,
			PartPrice: p.partPrice(row),
			Quantity:  p.quantity(row),
		})
	})

	return components
}

func (p *DetailParser) isExcluded(category string) bool {
	for _, keyword := range p.excludeKeywords {
		if strings.Contains(category, keyword) {
			return true
		}
	}
	return false
}

// partName resolves the part name cell. A direct anchor means the part is
// fixed; a span means it was picked from the configurator dropdown and
// carries the decorative suffix.
func (p *DetailParser) partName(row *goquery.Selection) string {
	if a := row.Find(nameCellSelector + " a").First(); a.Length() > 0 {
		if name := strings.TrimSpace(a.Text()); name != "" {
			return name
		}
	}

	span := row.Find(nameCellSelector + " span").First()
	if span.Length() == 0 {
		return ""
	}

	name := selectSuffixPattern.ReplaceAllString(span.Text(), "")
	return strings.TrimSpace(name)
}

// partPrice prefers the raw numeric attribute over the formatted cell text;
// the attribute carries no locale separators so it cannot misparse.
func (p *DetailParser) partPrice(row *goquery.Selection) int {
	cell := row.Find(priceCellSelector).First()
	if cell.Length() == 0 {
		return 0
	}

	text := parseDigits(cell.Text())

	if raw, ok := cell.Attr(rawPriceAttr); ok {
		price := parsePrice(raw)
		if text != 0 && text != price {
			p.logger.Debug("price attribute and cell text disagree", "attr", price, "text", text)
		}
		return price
	}

	return text
}

func (p *DetailParser) quantity(row *goquery.Selection) int {
	cell := row.Find(quantityCellSelector).First()

	qty := 0
	if cell.Length() > 0 {
		if raw, ok := cell.Attr(rawQuantityAttr); ok {
			qty = parsePrice(raw)
		} else {
			qty = parseDigits(cell.Text())
		}
	}

	// a component line always represents at least one unit
	if qty < 1 {
		return 1
	}
	return qty
}

// parseDigits strips every non-digit rune and parses the remainder,
// defaulting to 0. Handles formatted cell text like "359,000원".
func parseDigits(s string) int {
	digits := nonDigitPattern.ReplaceAllString(s, "")
	if digits == "" {
		return 0
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
