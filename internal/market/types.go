package market

import (
	"context"
	"time"
)

// Quote is one row of the full-market realtime snapshot (全市场实时行情).
// It is an immutable value: fetched fresh each scan and copied across
// worker boundaries, never mutated.
type Quote struct {
	Code      string  `json:"code"`       // 股票代码 (6位数字)
	Name      string  `json:"name"`       // 股票名称
	Price     float64 `json:"price"`      // 最新价
	ChangePct float64 `json:"change_pct"` // 涨跌幅(%)
	Volume    int64   `json:"volume"`     // 成交量(手), 0 表示停牌
}

// Snapshot is the full-market quote list with its fetch time
type Snapshot struct {
	Quotes    []Quote   `json:"quotes"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Empty reports whether the snapshot carries no quotes
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Quotes) == 0
}

// Lookup returns the quote for a code, or false if the code is absent
func (s *Snapshot) Lookup(code string) (Quote, bool) {
	for _, q := range s.Quotes {
		if q.Code == code {
			return q, true
		}
	}
	return Quote{}, false
}

// SpotProvider fetches the full-market realtime snapshot from an upstream
// quote service. Implementations may fail transiently; retrying is the
// Fetcher's job.
type SpotProvider interface {
	FetchSpot(ctx context.Context) ([]Quote, error)
}
