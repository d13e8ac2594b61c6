package scan

import "strings"

// 基础星级表: 按买卖点类别查, 方向前缀已剥离
var baseStars = map[string]int{
	"1":  5, // 一类买点 (趋势背驰)
	"1p": 4, // 盘整背驰一类
	"2":  4, // 二类买点
	"2s": 3, // 类二买
	"3a": 3, // 三类买点 (中枢上方)
	"3b": 2, // 三类买点 (中枢内)
}

const neutralStars = 3

// normalizeClass strips the single leading buy/sell direction marker from a
// signal class, e.g. "b1" -> "1", "s2s" -> "2s". Classes without a marker
// pass through unchanged.
func normalizeClass(class string) string {
	if len(class) > 1 && (strings.HasPrefix(class, "b") || strings.HasPrefix(class, "s")) {
		return class[1:]
	}
	return class
}

// Rate computes the star rating for a signal class confirmed across
// resonanceCount timeframes. Pure function, result always in [1,5].
// ⭐ SSOT: 风险星级的计算只在这里
func Rate(class string, resonanceCount int) int {
	base, ok := baseStars[normalizeClass(class)]
	if !ok {
		base = neutralStars
	}

	rating := base + (resonanceCount - 1)
	if rating > 5 {
		rating = 5
	}
	if rating < 1 {
		rating = 1
	}
	return rating
}
