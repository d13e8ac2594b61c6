package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zlin/chanscan/internal/market"
	"github.com/zlin/chanscan/internal/report"
	"github.com/zlin/chanscan/internal/scan"
	"github.com/zlin/chanscan/internal/universe"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "扫描全市场买点",
	Long: `拉取实时快照, 过滤股票池, 并发分析每只股票的日线买点。

开启 --resonance 后对每个命中做 30分/5分 级别区间套确认,
共振级别越多, 风险星级越高。

Example:
  go run ./cmd/chanscan scan
  go run ./cmd/chanscan scan --resonance --boards main,gem --workers 8
  go run ./cmd/chanscan scan --code 600000
  go run ./cmd/chanscan scan --output results.txt`,
	RunE: runScan,
}

var (
	scanBoards    string
	scanMinPrice  float64
	scanMaxPrice  float64
	scanRecency   int
	scanHistory   int
	scanResonance bool
	scanWorkers   int
	scanOutput    string
	scanCode      string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanBoards, "boards", "", "板块, 逗号分隔: main,gem,star,bse (默认取配置)")
	scanCmd.Flags().Float64Var(&scanMinPrice, "min-price", -1, "最低价")
	scanCmd.Flags().Float64Var(&scanMaxPrice, "max-price", -1, "最高价")
	scanCmd.Flags().IntVar(&scanRecency, "recency", 0, "近N天买点 (默认取配置)")
	scanCmd.Flags().IntVar(&scanHistory, "history", 0, "K线回看天数 (默认取配置)")
	scanCmd.Flags().BoolVar(&scanResonance, "resonance", false, "开启区间套共振确认")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "并发数 (默认取配置)")
	scanCmd.Flags().StringVar(&scanOutput, "output", "", "导出TXT文件路径")
	scanCmd.Flags().StringVar(&scanCode, "code", "", "只分析单只股票")
}

func runScan(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}

	ucfg := app.universeConfig()
	if scanBoards != "" {
		ucfg.IncludeMain, ucfg.IncludeGEM, ucfg.IncludeSTAR, ucfg.IncludeBSE = false, false, false, false
		for _, b := range strings.Split(scanBoards, ",") {
			switch strings.TrimSpace(b) {
			case "main":
				ucfg.IncludeMain = true
			case "gem":
				ucfg.IncludeGEM = true
			case "star":
				ucfg.IncludeSTAR = true
			case "bse":
				ucfg.IncludeBSE = true
			default:
				return fmt.Errorf("未知板块: %s", b)
			}
		}
	}
	if scanMinPrice >= 0 {
		ucfg.MinPrice = scanMinPrice
	}
	if scanMaxPrice >= 0 {
		ucfg.MaxPrice = scanMaxPrice
	}

	scfg := app.scanConfig()
	if scanRecency > 0 {
		scfg.RecencyDays = scanRecency
	}
	if scanHistory > 0 {
		scfg.HistoryDays = scanHistory
	}
	if scanResonance {
		scfg.UseResonance = true
	}
	if scanWorkers > 0 {
		scfg.MaxWorkers = scanWorkers
	}

	ctx := cmd.Context()

	snapshot := app.fetcher.Fetch(ctx)
	if snapshot.Empty() {
		return fmt.Errorf("行情快照暂不可用, 请稍后重试")
	}

	if scanCode != "" {
		return analyzeSingle(ctx, app, snapshot, scfg)
	}

	filtered := universe.Filter(snapshot.Quotes, ucfg)
	fmt.Printf("股票池: %d 只 (快照 %d 只)\n", len(filtered), len(snapshot.Quotes))

	analyzer := scan.NewAnalyzer(app.oracle, app.log)
	_, events, err := scan.NewOrchestrator(analyzer, app.log).Start(ctx, filtered, scfg)
	if err != nil {
		return err
	}

	agg := scan.NewAggregator()
	var summary *scan.Summary
	for ev := range events {
		switch ev.Kind {
		case scan.EventProgress:
			if ev.Completed%50 == 0 || ev.Completed == ev.Total {
				fmt.Printf("进度: %d/%d\n", ev.Completed, ev.Total)
			}
		case scan.EventFound:
			r := ev.Result
			fmt.Printf("🎯 %s %s %.2f %s %s\n",
				r.Instrument.Code, r.Instrument.Name, r.Instrument.Price,
				report.RiskStars(r.RiskRating), report.SignalType(r))
			agg.Add(r)
		case scan.EventDiagnostic:
			app.log.WithField("code", ev.Code).Warn(ev.Reason)
		case scan.EventFinished:
			summary = ev.Summary
		}
	}

	fmt.Printf("\n扫描完成: 成功 %d, 失败 %d, 命中 %d\n", summary.Success, summary.Fail, summary.Found)

	if err := agg.Sort(scan.SortByRiskRating, true); err != nil {
		return err
	}

	if scanOutput != "" {
		f, err := os.Create(scanOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		if err := report.Write(f, agg.Results(), time.Now()); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}
		fmt.Printf("已导出 %d 只股票到 %s\n", agg.Len(), scanOutput)
	}
	return nil
}

// analyzeSingle runs one instrument through the analyzer and prints the
// outcome.
func analyzeSingle(ctx context.Context, app *app, snapshot *market.Snapshot, scfg scan.Config) error {
	inst, ok := snapshot.Lookup(scanCode)
	if !ok {
		return fmt.Errorf("快照中找不到代码 %s", scanCode)
	}

	outcome := scan.NewAnalyzer(app.oracle, app.log).Analyze(ctx, inst, scfg)
	switch outcome.Kind {
	case scan.OutcomeFound:
		r := outcome.Result
		fmt.Printf("🎯 %s %s %.2f (%+.2f%%)\n", inst.Code, inst.Name, inst.Price, inst.ChangePct)
		fmt.Printf("   买点: %s @ %s\n", r.Base.Class, r.Base.Time.Format("2006-01-02 15:04"))
		fmt.Printf("   共振: %s (%d 级)\n", report.Descriptor(r), r.ResonanceCount)
		fmt.Printf("   星级: %s\n", report.RiskStars(r.RiskRating))
	case scan.OutcomeSkipped:
		fmt.Printf("— %s %s: %s\n", inst.Code, inst.Name, outcome.Reason)
	case scan.OutcomeFailed:
		fmt.Printf("✗ %s %s: %s\n", inst.Code, inst.Name, outcome.Reason)
	}
	return nil
}
