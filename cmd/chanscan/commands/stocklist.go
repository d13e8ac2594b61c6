package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zlin/chanscan/internal/store"
	"github.com/zlin/chanscan/internal/universe"
	"github.com/zlin/chanscan/pkg/database"
	"github.com/zlin/chanscan/pkg/redis"
)

// stocklistCmd represents the stocklist command
var stocklistCmd = &cobra.Command{
	Use:   "stocklist",
	Short: "刷新或查看股票主表",
	Long: `股票主表保存在 PostgreSQL, 供定时任务和 API 查询。

Example:
  go run ./cmd/chanscan stocklist refresh
  go run ./cmd/chanscan stocklist count`,
}

var stocklistRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "从最新快照刷新股票主表",
	RunE:  runStocklistRefresh,
}

var stocklistCountCmd = &cobra.Command{
	Use:   "count",
	Short: "查看股票主表行数",
	RunE:  runStocklistCount,
}

func init() {
	rootCmd.AddCommand(stocklistCmd)
	stocklistCmd.AddCommand(stocklistRefreshCmd)
	stocklistCmd.AddCommand(stocklistCountCmd)
}

func openRepository() (*app, *store.Repository, func(), error) {
	a, err := bootstrap()
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := database.New(a.cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return a, store.NewRepository(db.Pool), db.Close, nil
}

func runStocklistRefresh(cmd *cobra.Command, args []string) error {
	app, repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	ctx := cmd.Context()
	snapshot := app.fetcher.Fetch(ctx)
	if snapshot.Empty() {
		return fmt.Errorf("行情快照暂不可用, 请稍后重试")
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	rows := universe.MasterList(snapshot.Quotes)
	n, err := repo.UpsertQuotes(ctx, rows)
	if err != nil {
		return err
	}
	if app.cache != nil {
		if err := app.cache.Invalidate(ctx, redis.KeyStockList); err != nil {
			app.log.WithError(err).Warn("Failed to invalidate stocklist cache")
		}
	}
	fmt.Printf("快照 %d 行, 已刷新主表 %d 只股票\n", len(snapshot.Quotes), n)
	return nil
}

func runStocklistCount(cmd *cobra.Command, args []string) error {
	_, repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := repo.Count(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("股票主表共 %d 行\n", n)
	return nil
}
