package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultExcludes() []string {
	return []string{"옵션추가", "MD추천", "서비스", "운영체제"}
}

const detailFixture = `<table class="table_style_recom">
	<tr><th>분류</th><th>제품명</th><th>단가</th><th>수량</th></tr>
	<tr>
		<td class="tit">CPU</td>
		<td class="name"><a href="#">[AMD] 라이젠5 9600X</a></td>
		<td class="price" prm_ori="359000">359,000원</td>
		<td class="num" prm_qty="1">1</td>
	</tr>
	<tr>
		<td class="tit">메모리</td>
		<td class="name"><span>[삼성전자] DDR5-5600 16GB ▶선택◀ 클릭 시 변경 가능</span></td>
		<td class="price">65,500원</td>
		<td class="num">2</td>
	</tr>
	<tr>
		<td class="tit">운영체제</td>
		<td class="name"><a href="#">[Microsoft] Windows 11 Home</a></td>
		<td class="price" prm_ori="208000">208,000원</td>
		<td class="num" prm_qty="1">1</td>
	</tr>
</table>`

func TestParseComponents(t *testing.T) {
	p := NewDetailParser(defaultExcludes())
	components := p.ParseComponents(detailFixture)

	// header row skipped, OS row excluded
	require.Len(t, components, 2)

	cpu := components[0]
	assert.Equal(t, "CPU", cpu.Type)
	assert.Equal(t, "[AMD] 라이젠5 9600X", cpu.PartName)
	assert.Equal(t, 359000, cpu.PartPrice)
	assert.Equal(t, 1, cpu.Quantity)

	mem := components[1]
	assert.Equal(t, "메모리", mem.Type)
	assert.Equal(t, "[삼성전자] DDR5-5600 16GB", mem.PartName, "dropdown suffix is stripped")
	assert.Equal(t, 65500, mem.PartPrice, "formatted text parses when no raw attribute exists")
	assert.Equal(t, 2, mem.Quantity)
}

func TestParseComponentsPriceAttributeWins(t *testing.T) {
	// attribute and text deliberately disagree; the attribute is authoritative
	html := `<table class="table_style_recom">
		<tr>
			<td class="tit">그래픽카드</td>
			<td class="name"><a href="#">[NVIDIA] RTX 5070</a></td>
			<td class="price" prm_ori="899000">1,099,000원</td>
			<td class="num">1</td>
		</tr>
	</table>`

	p := NewDetailParser(defaultExcludes())
	components := p.ParseComponents(html)
	require.Len(t, components, 1)
	assert.Equal(t, 899000, components[0].PartPrice)
}

func TestParseComponentsExclusions(t *testing.T) {
	tests := []struct {
		name     string
		category string
		excluded bool
	}{
		{"plain category kept", "CPU", false},
		{"add-on option excluded", "옵션추가-쿨러", true},
		{"md recommendation excluded", "MD추천 게이밍기어", true},
		{"service row excluded", "조립 서비스", true},
		{"operating system excluded", "운영체제", true},
		{"cooler kept", "쿨러/튜닝", false},
	}

	p := NewDetailParser(defaultExcludes())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `<table class="table_style_recom"><tr>
				<td class="tit">` + tt.category + `</td>
				<td class="name"><a href="#">부품명</a></td>
				<td class="price" prm_ori="10000">10,000원</td>
				<td class="num">1</td>
			</tr></table>`

			components := p.ParseComponents(html)
			if tt.excluded {
				assert.Empty(t, components)
			} else {
				require.Len(t, components, 1)
				assert.Equal(t, tt.category, components[0].Type)
			}
		})
	}
}

func TestParseComponentsQuantityDefaults(t *testing.T) {
	tests := []struct {
		name     string
		cells    string
		expected int
	}{
		{
			name:     "raw attribute preferred",
			cells:    `<td class="num" prm_qty="4">2</td>`,
			expected: 4,
		},
		{
			name:     "text fallback",
			cells:    `<td class="num">3</td>`,
			expected: 3,
		},
		{
			name:     "missing cell defaults to one",
			cells:    ``,
			expected: 1,
		},
		{
			name:     "zero clamps to one",
			cells:    `<td class="num" prm_qty="0">0</td>`,
			expected: 1,
		},
		{
			name:     "unparseable defaults to one",
			cells:    `<td class="num">수량미정</td>`,
			expected: 1,
		},
	}

	p := NewDetailParser(defaultExcludes())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `<table class="table_style_recom"><tr>
				<td class="tit">SSD</td>
				<td class="name"><a href="#">부품명</a></td>
				<td class="price" prm_ori="100000">100,000원</td>
				` + tt.cells + `
			</tr></table>`

			components := p.ParseComponents(html)
			require.Len(t, components, 1)
			assert.Equal(t, tt.expected, components[0].Quantity)
		})
	}
}

func TestParseComponentsSkipsRowsWithoutName(t *testing.T) {
	html := `<table class="table_style_recom">
		<tr>
			<td class="tit">케이스</td>
			<td class="name"><span>▶선택◀ 클릭하여 선택</span></td>
			<td class="price">50,000원</td>
			<td class="num">1</td>
		</tr>
		<tr>
			<td class="tit">파워</td>
			<td class="name"></td>
			<td class="price">80,000원</td>
			<td class="num">1</td>
		</tr>
	</table>`

	p := NewDetailParser(defaultExcludes())
	assert.Empty(t, p.ParseComponents(html), "rows whose name is empty after normalization are skipped")
}

func TestParseComponentsSkipsRowsWithoutCategoryCell(t *testing.T) {
	html := `<table class="table_style_recom">
		<tr>
			<td class="name"><a href="#">분류 없는 행</a></td>
			<td class="price" prm_ori="10000">10,000원</td>
		</tr>
	</table>`

	p := NewDetailParser(defaultExcludes())
	assert.Empty(t, p.ParseComponents(html))
}

func TestParseComponentsMissingPriceDefaultsToZero(t *testing.T) {
	html := `<table class="table_style_recom">
		<tr>
			<td class="tit">HDD</td>
			<td class="name"><a href="#">[Seagate] 바라쿠다 4TB</a></td>
			<td class="price">가격문의</td>
			<td class="num">1</td>
		</tr>
	</table>`

	p := NewDetailParser(defaultExcludes())
	components := p.ParseComponents(html)
	require.Len(t, components, 1)
	assert.Equal(t, 0, components[0].PartPrice)
}

func TestParseComponentsEmptyDocument(t *testing.T) {
	p := NewDetailParser(defaultExcludes())
	assert.Empty(t, p.ParseComponents(""))
	assert.Empty(t, p.ParseComponents("<div>스펙 테이블 없음</div>"))
}

func TestParseComponentsIsIdempotent(t *testing.T) {
	p := NewDetailParser(defaultExcludes())
	first := p.ParseComponents(detailFixture)
	second := p.ParseComponents(detailFixture)
	assert.Equal(t, first, second)
}
