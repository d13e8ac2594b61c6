package oracle

import (
	"context"
	"errors"
	"time"
)

// Timeframe is a fixed candle aggregation period.
type Timeframe string

const (
	// TimeframeDay 日线 — the base resolution every scan starts from
	TimeframeDay Timeframe = "day"
	// Timeframe30m 30分钟线 — the middle confirmation resolution
	Timeframe30m Timeframe = "30m"
	// Timeframe5m 5分钟线 — the finest confirmation resolution
	Timeframe5m Timeframe = "5m"
)

// ErrNoData indicates the analysis service had no candles for the request.
var ErrNoData = errors.New("oracle: no candle data")

// Signal is one classified buy/sell point emitted by the analysis service.
// Immutable once produced.
type Signal struct {
	Class string    `json:"class"`  // 买卖点类别, 如 "1", "2s", "3a"
	IsBuy bool      `json:"is_buy"` // 买点 true / 卖点 false
	Time  time.Time `json:"time"`   // 信号所在K线时间
}

// Result is the analysis output for one instrument at one timeframe.
type Result struct {
	CandleCount int      `json:"candle_count"`
	Signals     []Signal `json:"signals"`
}

// Config carries pass-through analysis parameters. The scanner treats it
// as opaque.
type Config struct {
	StrictBi bool   `json:"strict_bi"` // 严格笔模式
	Adjust   string `json:"adjust"`    // 复权方式: qfq/hfq/""
}

// Client computes technical analysis for one instrument over a date range.
// Implementations may fail on transient network or data errors; callers
// decide how failures map to scan outcomes.
type Client interface {
	Compute(ctx context.Context, code string, tf Timeframe, begin, end time.Time, cfg Config) (*Result, error)
}
