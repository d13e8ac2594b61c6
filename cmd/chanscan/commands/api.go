package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zlin/chanscan/internal/api"
	"github.com/zlin/chanscan/internal/api/handlers"
	"github.com/zlin/chanscan/internal/backtest"
	"github.com/zlin/chanscan/internal/scan"
	"github.com/zlin/chanscan/internal/store"
	"github.com/zlin/chanscan/pkg/database"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "启动 API 服务器",
	Long: `启动 REST + WebSocket API 服务器。

Endpoints:
  GET  /health          - Health check
  GET  /api/universe    - 股票池查询
  GET  /api/stocks      - 股票主表查询 (需要数据库)
  POST /api/backtest    - 导入历史推荐并回测
  WS   /api/scanner/ws  - 扫描事件流 (start/stop)

Example:
  go run ./cmd/chanscan api
  go run ./cmd/chanscan api --port 8089`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 服务器端口 (默认取 PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	if apiPort != "" {
		app.cfg.Port = apiPort
	}

	// 数据库可选: 未配置时 /api/stocks 返回 503
	var repo *store.Repository
	if app.cfg.Database.URL != "" {
		db, err := database.New(app.cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		repo = store.NewRepository(db.Pool)
	} else {
		app.log.Warn("DATABASE_URL not set, master list endpoints disabled")
	}

	orchestrator := scan.NewOrchestrator(scan.NewAnalyzer(app.oracle, app.log), app.log)

	router := api.NewRouter(
		handlers.NewMarketHandler(app.fetcher, repo, app.cache, app.log),
		handlers.NewBacktestHandler(backtest.NewEvaluator(app.fetcher, app.log), app.log),
		handlers.NewScanHandler(app.fetcher, orchestrator, app.scanConfig(), app.log),
		app.log,
	)

	server := api.New(app.cfg, app.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		app.log.WithField("signal", sig.String()).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
