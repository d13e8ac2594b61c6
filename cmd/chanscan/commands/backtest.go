package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zlin/chanscan/internal/backtest"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest <导出文件.txt>",
	Short: "对历史推荐做回测",
	Long: `读取之前导出的买点股票TXT文件, 拉取最新快照重新定价,
输出每只股票的涨跌和整体胜率。

Example:
  go run ./cmd/chanscan backtest 买点股票_20260820_153000.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open export file: %w", err)
	}
	defer f.Close()

	rows, err := backtest.Parse(f)
	if err != nil {
		return fmt.Errorf("parse export file: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("文件中没有有效的股票数据")
	}
	fmt.Printf("解析出 %d 条推荐 (推荐日 %s)\n\n", len(rows), rows[0].RecommendDate)

	enriched, summary := backtest.NewEvaluator(app.fetcher, app.log).Evaluate(cmd.Context(), rows)

	fmt.Printf("%-10s%-12s%10s%10s%10s\n", "代码", "名称", "推荐价", "现价", "涨跌%")
	for _, row := range enriched {
		if !row.Resolved {
			fmt.Printf("%-10s%-12s%10.2f%10s%10s\n", row.Code, row.Name, row.RecommendedPrice, "-", "-")
			continue
		}
		fmt.Printf("%-10s%-12s%10.2f%10.2f%+9.2f%%\n",
			row.Code, row.Name, row.RecommendedPrice, row.CurrentPrice, row.PctChange)
	}

	if summary == nil {
		fmt.Println("\n没有任何股票能在最新快照中找到, 无法统计")
		return nil
	}

	fmt.Printf("\n平均收益: %+.2f%%   胜率: %.1f%% (%d 胜 / %d 负, 共 %d 只)\n",
		summary.AvgReturn, summary.WinRate*100, summary.Winners, summary.Losers, summary.Resolved)
	fmt.Printf("最大涨幅: %+.2f%%   最大跌幅: %+.2f%%\n", summary.MaxGain, summary.MaxLoss)
	return nil
}
