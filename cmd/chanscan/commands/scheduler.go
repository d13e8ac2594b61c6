package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zlin/chanscan/internal/scan"
	"github.com/zlin/chanscan/internal/scheduler"
	"github.com/zlin/chanscan/internal/scheduler/jobs"
	"github.com/zlin/chanscan/internal/store"
	"github.com/zlin/chanscan/pkg/database"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "启动定时任务",
	Long: `启动常驻进程, 按计划执行:
  - stocklist_refresh: 每个交易日开盘前刷新股票主表 (需要数据库)
  - daily_scan:        收盘后全市场扫描并导出TXT

Example:
  go run ./cmd/chanscan scheduler
  go run ./cmd/chanscan scheduler --output-dir ./exports`,
	RunE: runScheduler,
}

var (
	schedOutputDir   string
	schedScanCron    string
	schedRefreshCron string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().StringVar(&schedOutputDir, "output-dir", "exports", "扫描结果导出目录")
	schedulerCmd.Flags().StringVar(&schedScanCron, "scan-cron", "0 10 15 * * MON-FRI", "扫描任务 cron (带秒)")
	schedulerCmd.Flags().StringVar(&schedRefreshCron, "refresh-cron", "0 0 9 * * MON-FRI", "主表刷新 cron (带秒)")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}

	sched := scheduler.New(app.log)

	// 主表刷新需要数据库; 未配置时只跑扫描任务
	if app.cfg.Database.URL != "" {
		db, err := database.New(app.cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo := store.NewRepository(db.Pool)
		if err := sched.AddJob(jobs.NewStocklistJob(app.fetcher, repo, app.cache, schedRefreshCron, app.log)); err != nil {
			return err
		}
	} else {
		app.log.Warn("DATABASE_URL not set, stocklist refresh job disabled")
	}

	orchestrator := scan.NewOrchestrator(scan.NewAnalyzer(app.oracle, app.log), app.log)
	scanJob := jobs.NewScanJob(
		app.fetcher,
		orchestrator,
		app.universeConfig(),
		app.scanConfig(),
		schedOutputDir,
		schedScanCron,
		app.log,
	)
	if err := sched.AddJob(scanJob); err != nil {
		return err
	}

	sched.Start()
	fmt.Println("定时任务已启动, Ctrl+C 退出")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
