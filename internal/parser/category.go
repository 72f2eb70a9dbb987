package parser

import (
	"regexp"
	"strings"
)

// Category is a normalized component category. Site labels vary between
// brands ("CPU", "인텔CPU", "AMD CPU", …), so classification is substring
// matching with an explicit Other fallback rather than an exact map.
type Category string

const (
	CategoryCooler    Category = "쿨러"
	CategoryCPU       Category = "CPU"
	CategoryMainboard Category = "메인보드"
	CategoryMemory    Category = "메모리"
	CategoryGPU       Category = "그래픽카드"
	CategorySSD       Category = "SSD"
	CategoryHDD       Category = "HDD"
	CategoryCase      Category = "케이스"
	CategoryPower     Category = "파워"
	CategoryOther     Category = "기타"
)

// Match order matters: "CPU쿨러" must classify as a cooler, not a CPU.
var categoryKeywords = []struct {
	keyword  string
	category Category
}{
	{"쿨러", CategoryCooler},
	{"쿨링", CategoryCooler},
	{"CPU", CategoryCPU},
	{"메인보드", CategoryMainboard},
	{"마더보드", CategoryMainboard},
	{"메모리", CategoryMemory},
	{"RAM", CategoryMemory},
	{"그래픽", CategoryGPU},
	{"VGA", CategoryGPU},
	{"SSD", CategorySSD},
	{"HDD", CategoryHDD},
	{"하드디스크", CategoryHDD},
	{"케이스", CategoryCase},
	{"파워", CategoryPower},
}

var brandTokenPattern = regexp.MustCompile(`^\[([^\[\]]+)\]`)

// CategoryFromLabel classifies a raw site-provided category label. Unknown
// labels fall back to CategoryOther; this never fails.
func CategoryFromLabel(raw string) Category {
	label := strings.ToUpper(strings.TrimSpace(raw))
	if label == "" {
		return CategoryOther
	}

	for _, ck := range categoryKeywords {
		if strings.Contains(label, strings.ToUpper(ck.keyword)) {
			return ck.category
		}
	}

	return CategoryOther
}

// BrandFromPartName extracts the maker token from part names shaped like
// "[AMD] 라이젠5 9600X". Returns "" when no token is embedded.
func BrandFromPartName(name string) string {
	m := brandTokenPattern.FindStringSubmatch(strings.TrimSpace(name))
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
