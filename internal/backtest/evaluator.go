package backtest

import (
	"context"

	"github.com/zlin/chanscan/internal/market"
	"github.com/zlin/chanscan/pkg/logger"
)

// SnapshotSource yields the latest full-market snapshot.
type SnapshotSource interface {
	Fetch(ctx context.Context) *market.Snapshot
}

// Summary aggregates the resolved rows. Nil when nothing resolved.
type Summary struct {
	AvgReturn float64 `json:"avg_return"` // 平均收益率 %
	WinRate   float64 `json:"win_rate"`   // 正收益占比 0..1
	MaxGain   float64 `json:"max_gain"`
	MaxLoss   float64 `json:"max_loss"`
	Winners   int     `json:"winners"`
	Losers    int     `json:"losers"`
	Resolved  int     `json:"resolved"`
}

// Evaluator re-prices recommendation rows against a fresh snapshot.
type Evaluator struct {
	source SnapshotSource
	logger *logger.Logger
}

// NewEvaluator creates an evaluator over the given snapshot source.
func NewEvaluator(source SnapshotSource, log *logger.Logger) *Evaluator {
	return &Evaluator{source: source, logger: log.WithField("module", "backtest")}
}

// Evaluate enriches each row with its current price and returns the
// summary over resolved rows. Codes absent from the snapshot stay
// unresolved. The summary is nil when no row resolved.
func (e *Evaluator) Evaluate(ctx context.Context, rows []Row) ([]Row, *Summary) {
	snapshot := e.source.Fetch(ctx)

	enriched := make([]Row, len(rows))
	copy(enriched, rows)

	var summary *Summary
	for i := range enriched {
		row := &enriched[i]
		quote, ok := snapshot.Lookup(row.Code)
		if !ok {
			row.Resolved = false
			continue
		}

		row.Resolved = true
		row.CurrentPrice = quote.Price
		row.Change = quote.Price - row.RecommendedPrice
		if row.RecommendedPrice != 0 {
			row.PctChange = row.Change / row.RecommendedPrice * 100
		} else {
			row.PctChange = 0
		}

		if summary == nil {
			summary = &Summary{MaxGain: row.PctChange, MaxLoss: row.PctChange}
		}
		summary.Resolved++
		summary.AvgReturn += row.PctChange
		if row.PctChange > 0 {
			summary.Winners++
		} else if row.PctChange < 0 {
			summary.Losers++
		}
		if row.PctChange > summary.MaxGain {
			summary.MaxGain = row.PctChange
		}
		if row.PctChange < summary.MaxLoss {
			summary.MaxLoss = row.PctChange
		}
	}

	if summary != nil {
		summary.AvgReturn /= float64(summary.Resolved)
		summary.WinRate = float64(summary.Winners) / float64(summary.Resolved)
	}

	e.logger.WithFields(map[string]interface{}{
		"rows":     len(rows),
		"resolved": resolvedCount(enriched),
	}).Info("Backtest evaluated")
	return enriched, summary
}

func resolvedCount(rows []Row) int {
	n := 0
	for _, r := range rows {
		if r.Resolved {
			n++
		}
	}
	return n
}
