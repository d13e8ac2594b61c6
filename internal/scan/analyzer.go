package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zlin/chanscan/internal/market"
	"github.com/zlin/chanscan/internal/oracle"
	"github.com/zlin/chanscan/pkg/logger"
)

// 细级别确认窗口 (固定)
const (
	middleWindowDays = 5 // 30分钟线回看窗口
	finestWindowDays = 3 // 5分钟线回看窗口
)

// Analyzer runs the per-instrument resonance analysis.
type Analyzer struct {
	oracle oracle.Client
	logger *logger.Logger
	now    func() time.Time
}

// NewAnalyzer creates an analyzer backed by the given analysis client.
func NewAnalyzer(client oracle.Client, log *logger.Logger) *Analyzer {
	return &Analyzer{
		oracle: client,
		logger: log.WithField("module", "analyzer"),
		now:    time.Now,
	}
}

// Analyze inspects one instrument at the day timeframe and, when resonance
// is enabled, cross-confirms at the 30m and 5m timeframes. Finer-timeframe
// failures never fail the analysis; they just withhold confirmation.
// ⭐ SSOT: 单只股票的共振分析流程只在这里
func (a *Analyzer) Analyze(ctx context.Context, inst market.Quote, cfg Config) Outcome {
	now := a.now()

	base, err := a.oracle.Compute(ctx, inst.Code, oracle.TimeframeDay,
		now.AddDate(0, 0, -cfg.HistoryDays), now, cfg.Oracle)
	if err != nil {
		if errors.Is(err, oracle.ErrNoData) {
			return skipOutcome(SkipNoData)
		}
		return failOutcome(fmt.Sprintf("日线分析失败: %v", err))
	}
	if base.CandleCount == 0 {
		return skipOutcome(SkipNoData)
	}

	baseEvidence, ok := latestBuySignal(base.Signals, oracle.TimeframeDay,
		now.AddDate(0, 0, -cfg.RecencyDays))
	if !ok {
		return skipOutcome(SkipNoRecentBuy)
	}

	result := &Result{
		Instrument:     inst,
		Base:           baseEvidence,
		ResonanceCount: 1,
	}

	if cfg.UseResonance {
		for _, probe := range []struct {
			tf          oracle.Timeframe
			windowDays  int
			historyDays int
		}{
			{oracle.Timeframe30m, middleWindowDays, middleHistoryDays(cfg.HistoryDays)},
			{oracle.Timeframe5m, finestWindowDays, finestHistoryDays(cfg.HistoryDays)},
		} {
			ev, ok := a.confirm(ctx, inst.Code, probe.tf, probe.windowDays, probe.historyDays, cfg.Oracle, now)
			if ok {
				result.Confirming = append(result.Confirming, ev)
				result.ResonanceCount++
			}
		}
	}

	result.RiskRating = Rate(baseEvidence.Class, result.ResonanceCount)
	return foundOutcome(result)
}

// confirm probes one finer timeframe. Any error is treated as absence of
// confirmation at that timeframe.
func (a *Analyzer) confirm(ctx context.Context, code string, tf oracle.Timeframe,
	windowDays, historyDays int, ocfg oracle.Config, now time.Time) (Evidence, bool) {

	res, err := a.oracle.Compute(ctx, code, tf, now.AddDate(0, 0, -historyDays), now, ocfg)
	if err != nil {
		a.logger.WithFields(map[string]interface{}{
			"code": code,
			"freq": string(tf),
		}).WithError(err).Debug("Confirmation probe failed")
		return Evidence{}, false
	}

	return latestBuySignal(res.Signals, tf, now.AddDate(0, 0, -windowDays))
}

// latestBuySignal picks the chronologically latest buy signal at or after
// cutoff. Equal timestamps keep the later element of the input order.
func latestBuySignal(signals []oracle.Signal, tf oracle.Timeframe, cutoff time.Time) (Evidence, bool) {
	var best Evidence
	found := false
	for _, s := range signals {
		if !s.IsBuy || s.Time.Before(cutoff) {
			continue
		}
		if !found || !s.Time.Before(best.Time) {
			best = Evidence{Timeframe: tf, Class: s.Class, IsBuy: true, Time: s.Time}
			found = true
		}
	}
	return best, found
}

// 细级别取数天数: 30分钟线取日线跨度的十分之一 (下限 30 天),
// 5分钟线取三十分之一 (3~5 天之间)
func middleHistoryDays(historyDays int) int {
	d := historyDays / 10
	if d < 30 {
		d = 30
	}
	return d
}

func finestHistoryDays(historyDays int) int {
	d := historyDays / 30
	if d < 3 {
		d = 3
	}
	if d > 5 {
		d = 5
	}
	return d
}
