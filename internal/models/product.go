package models

import (
	"time"
)

// Product is one PC bundle from a catalog listing page. The list extractor
// creates it with an empty component list; the detail extractor fills
// Components in exactly once. Field names mirror the Firestore documents the
// dashboard reads.
type Product struct {
	ProductNo     string `firestore:"productNo" json:"productNo"`
	Name          string `firestore:"name" json:"name"`
	OriginalPrice int    `firestore:"originalPrice" json:"originalPrice"`
	// DiscountPrice is 0 when the listing carries no discounted price.
	// Consumers must treat 0 as "use OriginalPrice", not as a free product.
	DiscountPrice int         `firestore:"discountPrice" json:"discountPrice"`
	DetailURL     string      `firestore:"detailUrl" json:"detailUrl"`
	Brand         string      `firestore:"brand" json:"brand"`
	Components    []Component `firestore:"components" json:"components"`
	UpdatedAt     time.Time   `firestore:"updatedAt,serverTimestamp" json:"updatedAt"`
}

// Component is one part line from a detail-page spec table.
type Component struct {
	Type      string `firestore:"type" json:"type"`
	PartName  string `firestore:"partName" json:"partName"`
	PartPrice int    `firestore:"partPrice" json:"partPrice"`
	Quantity  int    `firestore:"quantity" json:"quantity"`
}

// Snapshot is the persisted unit: all enriched products of one catalog for
// one KST calendar date.
type Snapshot struct {
	Date     string     `json:"date"`
	Brand    string     `json:"brand"`
	Products []*Product `json:"products"`
}

type CrawlState string

const (
	StateRunning CrawlState = "running"
	StateDone    CrawlState = "done"
	StateError   CrawlState = "error"
)

// CrawlStatus is the progress record the dashboard subscribes to
// (crawl_status/latest).
type CrawlStatus struct {
	Status    CrawlState `firestore:"status" json:"status"`
	Percent   int        `firestore:"percent" json:"percent"`
	Detail    string     `firestore:"detail" json:"detail"`
	RunID     string     `firestore:"runId" json:"runId"`
	UpdatedAt time.Time  `firestore:"updatedAt,serverTimestamp" json:"updatedAt"`
}

func NewProduct(productNo string) *Product {
	return &Product{
		ProductNo:  productNo,
		Components: make([]Component, 0),
	}
}

// EffectivePrice is the price the dashboard displays: the discounted price
// when one exists, the original price otherwise.
func (p *Product) EffectivePrice() int {
	if p.DiscountPrice > 0 {
		return p.DiscountPrice
	}
	return p.OriginalPrice
}

// ComponentTotal sums unit price times quantity across all components.
func (p *Product) ComponentTotal() int {
	total := 0
	for _, c := range p.Components {
		total += c.PartPrice * c.Quantity
	}
	return total
}
