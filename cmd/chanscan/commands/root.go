package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chanscan",
	Short: "chanscan - A股多级别买点共振扫描器",
	Long: `chanscan

基于缠论买卖点的 A 股全市场扫描器。
日线买点为基础, 可选 30分/5分 级别区间套共振确认。

Usage:
  go run ./cmd/chanscan [command]

Examples:
  go run ./cmd/chanscan api
  go run ./cmd/chanscan scan --resonance
  go run ./cmd/chanscan scan --code 600000
  go run ./cmd/chanscan backtest 买点股票_20260820.txt
  go run ./cmd/chanscan universe --boards main,gem`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
