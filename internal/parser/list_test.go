package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compuzone-diy/price-crawler/internal/config"
)

func testCatalog() config.Catalog {
	return config.Catalog{
		ID:           "프리미엄PC",
		Slug:         "premium-pc",
		ListURL:      "https://www.compuzone.co.kr/product/compuzone_premium_pc.htm?rtq=",
		ItemsPerPage: 20,
	}
}

func TestParseListing(t *testing.T) {
	html := `<ul id="recom_search_ul">
		<li>
			<a href="https://www.compuzone.co.kr/product/product_detail.htm?ProductNo=1111"></a>
			<p class="name">프리미엄 게이밍 PC 9세대</p>
			<div class="reco_price" data-pricetable="1111" data-price="2,459,000" data-discountprice="2,199,000"></div>
		</li>
		<li>
			<a href="../product/product_detail.htm?ProductNo=2222"></a>
			<p class="name">프리미엄 크리에이터 PC</p>
			<div class="reco_price" data-pricetable="2222" data-price="3,890,000"></div>
		</li>
		<li>
			<p class="name">가격 정보 없는 상품</p>
		</li>
	</ul>`

	p := NewListParser()
	products, err := p.ParseListing(html, testCatalog())
	require.NoError(t, err)

	// the item without a price node fails the structural precondition
	require.Len(t, products, 2)

	first := products[0]
	assert.Equal(t, "1111", first.ProductNo)
	assert.Equal(t, "프리미엄 게이밍 PC 9세대", first.Name)
	assert.Equal(t, 2459000, first.OriginalPrice)
	assert.Equal(t, 2199000, first.DiscountPrice)
	assert.Equal(t, "https://www.compuzone.co.kr/product/product_detail.htm?ProductNo=1111", first.DetailURL)
	assert.Equal(t, "프리미엄PC", first.Brand)
	assert.Empty(t, first.Components)

	second := products[1]
	assert.Equal(t, "2222", second.ProductNo)
	assert.Equal(t, 3890000, second.OriginalPrice)
	assert.Equal(t, 0, second.DiscountPrice, "missing discount attribute defaults to 0")
	assert.Equal(t, "https://www.compuzone.co.kr/product/product_detail.htm?ProductNo=2222", second.DetailURL,
		"relative href is rewritten against the site root")
}

func TestParseListingDropsItemsWithoutProductID(t *testing.T) {
	html := `<ul id="recom_search_ul">
		<li>
			<p class="name">ID 없는 상품</p>
			<div class="reco_price" data-price="1,000,000"></div>
		</li>
	</ul>`

	p := NewListParser()
	products, err := p.ParseListing(html, testCatalog())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestParseListingConstructsURLWithoutAnchor(t *testing.T) {
	html := `<ul id="recom_search_ul">
		<li>
			<p class="name">앵커 없는 상품</p>
			<div class="reco_price" data-pricetable="3333" data-price="990,000"></div>
		</li>
	</ul>`

	p := NewListParser()
	products, err := p.ParseListing(html, testCatalog())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "https://www.compuzone.co.kr/product/product_detail.htm?ProductNo=3333", products[0].DetailURL)
}

func TestParseListingIsIdempotent(t *testing.T) {
	html := `<ul id="recom_search_ul">
		<li>
			<p class="name">상품</p>
			<div class="reco_price" data-pricetable="1111" data-price="2,459,000"></div>
		</li>
	</ul>`

	p := NewListParser()
	first, err := p.ParseListing(html, testCatalog())
	require.NoError(t, err)
	second, err := p.ParseListing(html, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{"plain number", "359000", 359000},
		{"thousands separators", "2,459,000", 2459000},
		{"surrounding whitespace", " 1,500 ", 1500},
		{"empty string", "", 0},
		{"non-numeric", "가격문의", 0},
		{"mixed garbage", "1,2a3", 0},
		{"negative", "-100", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parsePrice(tt.raw))
		})
	}
}

func TestPagerCount(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected int
	}{
		{
			name:     "no pager means single page",
			html:     `<ul id="recom_search_ul"><li></li></ul>`,
			expected: 1,
		},
		{
			name: "three pager links",
			html: `<div class="pd_paging">
				<a class="num" href="#">1</a>
				<a class="num" href="#">2</a>
				<a class="num" href="#">3</a>
			</div>`,
			expected: 3,
		},
		{
			name: "arrow links do not count",
			html: `<div class="pd_paging">
				<a class="prev" href="#">◀</a>
				<a class="num" href="#">1</a>
				<a class="num" href="#">2</a>
				<a class="next" href="#">▶</a>
			</div>`,
			expected: 2,
		},
	}

	p := NewListParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.PagerCount(tt.html))
		})
	}
}

func TestResolveDetailURL(t *testing.T) {
	tests := []struct {
		name      string
		href      string
		productNo string
		expected  string
	}{
		{
			name:     "absolute url passes through",
			href:     "https://www.compuzone.co.kr/product/product_detail.htm?ProductNo=42",
			expected: "https://www.compuzone.co.kr/product/product_detail.htm?ProductNo=42",
		},
		{
			name:     "parent-relative url is rewritten",
			href:     "../product/product_detail.htm?ProductNo=42",
			expected: "https://www.compuzone.co.kr/product/product_detail.htm?ProductNo=42",
		},
		{
			name:     "root-relative url is rewritten",
			href:     "/product/product_detail.htm?ProductNo=42",
			expected: "https://www.compuzone.co.kr/product/product_detail.htm?ProductNo=42",
		},
		{
			name:      "missing anchor falls back to product id",
			href:      "",
			productNo: "42",
			expected:  "https://www.compuzone.co.kr/product/product_detail.htm?ProductNo=42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveDetailURL(tt.href, tt.productNo))
		})
	}
}
