package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zlin/chanscan/internal/universe"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "查看当前股票池",
	Long: `拉取实时快照并按板块/价格过滤, 打印入选股票。

Example:
  go run ./cmd/chanscan universe
  go run ./cmd/chanscan universe --boards main,star --min-price 10 --max-price 200`,
	RunE: runUniverse,
}

var (
	uniBoards   string
	uniMinPrice float64
	uniMaxPrice float64
	uniLimit    int
)

func init() {
	rootCmd.AddCommand(universeCmd)

	universeCmd.Flags().StringVar(&uniBoards, "boards", "", "板块, 逗号分隔: main,gem,star,bse")
	universeCmd.Flags().Float64Var(&uniMinPrice, "min-price", -1, "最低价")
	universeCmd.Flags().Float64Var(&uniMaxPrice, "max-price", -1, "最高价")
	universeCmd.Flags().IntVar(&uniLimit, "limit", 50, "最多打印条数")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}

	cfg := app.universeConfig()
	if uniBoards != "" {
		cfg.IncludeMain, cfg.IncludeGEM, cfg.IncludeSTAR, cfg.IncludeBSE = false, false, false, false
		for _, b := range strings.Split(uniBoards, ",") {
			switch strings.TrimSpace(b) {
			case "main":
				cfg.IncludeMain = true
			case "gem":
				cfg.IncludeGEM = true
			case "star":
				cfg.IncludeSTAR = true
			case "bse":
				cfg.IncludeBSE = true
			default:
				return fmt.Errorf("未知板块: %s", b)
			}
		}
	}
	if uniMinPrice >= 0 {
		cfg.MinPrice = uniMinPrice
	}
	if uniMaxPrice >= 0 {
		cfg.MaxPrice = uniMaxPrice
	}

	snapshot := app.fetcher.Fetch(cmd.Context())
	if snapshot.Empty() {
		return fmt.Errorf("行情快照暂不可用, 请稍后重试")
	}

	filtered := universe.Filter(snapshot.Quotes, cfg)
	fmt.Printf("股票池: %d 只 (快照 %d 只)\n\n", len(filtered), len(snapshot.Quotes))

	fmt.Printf("%-10s%-12s%10s%10s%14s\n", "代码", "名称", "现价", "涨跌%", "成交量")
	for i, q := range filtered {
		if i >= uniLimit {
			fmt.Printf("... 其余 %d 只省略 (--limit 调整)\n", len(filtered)-uniLimit)
			break
		}
		fmt.Printf("%-10s%-12s%10.2f%+9.2f%%%14d\n", q.Code, q.Name, q.Price, q.ChangePct, q.Volume)
	}
	return nil
}
