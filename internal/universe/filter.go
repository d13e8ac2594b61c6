// Package universe selects the scannable instrument set from a raw
// market snapshot.
package universe

import (
	"strings"

	"github.com/zlin/chanscan/internal/market"
)

// Config selects board membership and a price range.
// 空板块选择 = 空股票池 (不是全市场)
type Config struct {
	IncludeMain bool // 沪深主板: 60 / 00 (003 除外)
	IncludeGEM  bool // 创业板: 300 / 301
	IncludeSTAR bool // 科创板: 688
	IncludeBSE  bool // 北交所: 8 / 43
	MinPrice    float64
	MaxPrice    float64
}

// Filter applies fixed exclusions, board membership, then the price range,
// preserving the snapshot's row order. Pure function, no I/O.
// ⭐ SSOT: 股票池筛选规则只在这里
func Filter(quotes []market.Quote, cfg Config) []market.Quote {
	result := make([]market.Quote, 0, len(quotes))
	for _, q := range quotes {
		if excluded(q) {
			continue
		}
		if !onSelectedBoard(q.Code, cfg) {
			continue
		}
		if q.Price < cfg.MinPrice || q.Price > cfg.MaxPrice {
			continue
		}
		result = append(result, q)
	}
	return result
}

// MasterList selects the rows worth persisting in the instrument master
// table: the fixed exclusions apply, and 科创板/北交所 are dropped because
// the master list only tracks 主板/创业板 instruments.
func MasterList(quotes []market.Quote) []market.Quote {
	result := make([]market.Quote, 0, len(quotes))
	for _, q := range quotes {
		if excluded(q) {
			continue
		}
		if strings.HasPrefix(q.Code, "688") ||
			strings.HasPrefix(q.Code, "8") ||
			strings.HasPrefix(q.Code, "43") {
			continue
		}
		result = append(result, q)
	}
	return result
}

// excluded applies the unconditional exclusions: ST 股, B 股 (200/900),
// CDR (920), 停牌 (零成交量), 非正价格.
func excluded(q market.Quote) bool {
	if strings.Contains(strings.ToUpper(q.Name), "ST") {
		return true
	}
	if strings.HasPrefix(q.Code, "200") || strings.HasPrefix(q.Code, "900") {
		return true
	}
	if strings.HasPrefix(q.Code, "920") {
		return true
	}
	if q.Volume == 0 {
		return true
	}
	if q.Price <= 0 {
		return true
	}
	return false
}

func onSelectedBoard(code string, cfg Config) bool {
	if cfg.IncludeMain && isMainBoard(code) {
		return true
	}
	if cfg.IncludeGEM && (strings.HasPrefix(code, "300") || strings.HasPrefix(code, "301")) {
		return true
	}
	if cfg.IncludeSTAR && strings.HasPrefix(code, "688") {
		return true
	}
	if cfg.IncludeBSE && (strings.HasPrefix(code, "8") || strings.HasPrefix(code, "43")) {
		return true
	}
	return false
}

func isMainBoard(code string) bool {
	if strings.HasPrefix(code, "60") {
		return true
	}
	// 00 开头但排除 003 (中小板历史遗留段)
	return strings.HasPrefix(code, "00") && !strings.HasPrefix(code, "003")
}
