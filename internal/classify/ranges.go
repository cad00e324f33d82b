package classify

import (
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// Range 闭区间码位范围
type Range struct {
	Lo, Hi rune
}

// 汉字码位范围
var (
	IdeographicZero            = []Range{{0x3007, 0x3007}} // 〇
	CJKUnified                 = []Range{{0x4E00, 0x9FFF}}
	CJKExtensionA              = []Range{{0x3400, 0x4DBF}}
	CJKExtensionB              = []Range{{0x20000, 0x2A6DF}}
	CJKExtensionC              = []Range{{0x2A700, 0x2B739}}
	CJKExtensionD              = []Range{{0x2B740, 0x2B81D}}
	CJKExtensionE              = []Range{{0x2B820, 0x2CEA1}}
	CJKExtensionF              = []Range{{0x2CEB0, 0x2EBE0}}
	CJKExtensionI              = []Range{{0x2EBF0, 0x2EE5D}}
	CJKExtensionG              = []Range{{0x30000, 0x3134A}}
	CJKExtensionH              = []Range{{0x31350, 0x323AF}}
	CJKCompatibility           = []Range{{0xF900, 0xFAD9}}
	CJKCompatibilitySupplement = []Range{{0x2F800, 0x2FA1D}}
)

// HanRanges 判定为汉字的全部范围
var HanRanges = concat(
	IdeographicZero,
	CJKUnified,
	CJKExtensionA,
	CJKExtensionB,
	CJKExtensionC,
	CJKExtensionD,
	CJKExtensionE,
	CJKExtensionF,
	CJKExtensionI,
	CJKExtensionG,
	CJKExtensionH,
	CJKCompatibility,
	CJKCompatibilitySupplement,
)

// ASCIIPunctuation 英文标点
const ASCIIPunctuation = "!\"#$%&'()*+,./:;<=>?@[\\]^_`{|}~"

// CJKPunctuation 中文标点
const CJKPunctuation = "‘’“”…、。〈〉《》「」『』【】〔〕·！（），：；？～—"

// Han 汉字码位表
var Han = NewTable(HanRanges)

var (
	asciiPunct = rangetable.New([]rune(ASCIIPunctuation)...)
	cjkPunct   = rangetable.New([]rune(CJKPunctuation)...)
	connectors = rangetable.New('-', '/', '·')
)

// NewTable 由闭区间列表构造 unicode.RangeTable
func NewTable(ranges []Range) *unicode.RangeTable {
	tables := make([]*unicode.RangeTable, 0, len(ranges))
	for _, r := range ranges {
		tables = append(tables, rangeTable(r))
	}
	return rangetable.Merge(tables...)
}

// IsHan 判断是否为汉字
func IsHan(r rune) bool {
	return unicode.Is(Han, r)
}

func rangeTable(r Range) *unicode.RangeTable {
	if r.Hi <= 0xFFFF {
		return &unicode.RangeTable{
			R16: []unicode.Range16{{Lo: uint16(r.Lo), Hi: uint16(r.Hi), Stride: 1}},
		}
	}
	if r.Lo <= 0xFFFF {
		return rangetable.Merge(
			rangeTable(Range{r.Lo, 0xFFFF}),
			rangeTable(Range{0x10000, r.Hi}),
		)
	}
	return &unicode.RangeTable{
		R32: []unicode.Range32{{Lo: uint32(r.Lo), Hi: uint32(r.Hi), Stride: 1}},
	}
}

func concat(groups ...[]Range) []Range {
	var out []Range
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
