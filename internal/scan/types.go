package scan

import (
	"time"

	"github.com/zlin/chanscan/internal/market"
	"github.com/zlin/chanscan/internal/oracle"
)

// Skip reasons. Skips are an absence-of-signal outcome, not an error.
const (
	SkipNoData      = "无K线数据"
	SkipNoRecentBuy = "无近期买点"
)

// Config controls one scan invocation.
type Config struct {
	RecencyDays  int  // 日线买点回看天数
	HistoryDays  int  // 日线K线取数天数
	UseResonance bool // 是否做多级别共振确认
	MaxWorkers   int  // 并发分析数, >= 1
	Oracle       oracle.Config
}

// Evidence is one signal observation at one timeframe. Immutable.
type Evidence struct {
	Timeframe oracle.Timeframe `json:"timeframe"`
	Class     string           `json:"class"`
	IsBuy     bool             `json:"is_buy"`
	Time      time.Time        `json:"time"`
}

// Result is a confirmed scan hit. Built once by the analyzer, never
// mutated afterwards. Display strings are rendered by callers.
type Result struct {
	Instrument     market.Quote `json:"instrument"`
	Base           Evidence     `json:"base"`
	Confirming     []Evidence   `json:"confirming"`      // 细级别确认, 最多 2 条
	ResonanceCount int          `json:"resonance_count"` // 1..3, = 1 + len(Confirming)
	RiskRating     int          `json:"risk_rating"`     // 1..5 星
}

// OutcomeKind classifies how one instrument's analysis ended.
type OutcomeKind int

const (
	OutcomeFound OutcomeKind = iota
	OutcomeSkipped
	OutcomeFailed
)

// Outcome is the terminal state of one instrument's analysis.
type Outcome struct {
	Kind   OutcomeKind
	Result *Result // Kind == OutcomeFound 时非空
	Reason string  // Skipped / Failed 的原因
}

func foundOutcome(r *Result) Outcome    { return Outcome{Kind: OutcomeFound, Result: r} }
func skipOutcome(reason string) Outcome { return Outcome{Kind: OutcomeSkipped, Reason: reason} }
func failOutcome(reason string) Outcome { return Outcome{Kind: OutcomeFailed, Reason: reason} }
