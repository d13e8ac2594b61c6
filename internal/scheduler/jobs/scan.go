package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zlin/chanscan/internal/report"
	"github.com/zlin/chanscan/internal/scan"
	"github.com/zlin/chanscan/internal/universe"
	"github.com/zlin/chanscan/pkg/logger"
)

// ScanJob runs a full scan after the close and exports hits to a dated
// text file.
type ScanJob struct {
	source       SnapshotSource
	orchestrator *scan.Orchestrator
	universeCfg  universe.Config
	scanCfg      scan.Config
	outputDir    string
	schedule     string
	logger       *logger.Logger
}

// NewScanJob creates the scheduled scan job.
func NewScanJob(
	source SnapshotSource,
	orchestrator *scan.Orchestrator,
	universeCfg universe.Config,
	scanCfg scan.Config,
	outputDir string,
	schedule string,
	log *logger.Logger,
) *ScanJob {
	return &ScanJob{
		source:       source,
		orchestrator: orchestrator,
		universeCfg:  universeCfg,
		scanCfg:      scanCfg,
		outputDir:    outputDir,
		schedule:     schedule,
		logger:       log.WithField("job", "daily_scan"),
	}
}

func (j *ScanJob) Name() string     { return "daily_scan" }
func (j *ScanJob) Schedule() string { return j.schedule }

// Run scans the configured universe and writes hits to the output dir.
func (j *ScanJob) Run(ctx context.Context) error {
	snapshot := j.source.Fetch(ctx)
	if snapshot.Empty() {
		return fmt.Errorf("snapshot unavailable")
	}

	filtered := universe.Filter(snapshot.Quotes, j.universeCfg)
	_, events, err := j.orchestrator.Start(ctx, filtered, j.scanCfg)
	if err != nil {
		return fmt.Errorf("start scan: %w", err)
	}

	agg := scan.NewAggregator()
	var summary *scan.Summary
	for ev := range events {
		switch ev.Kind {
		case scan.EventFound:
			agg.Add(ev.Result)
		case scan.EventFinished:
			summary = ev.Summary
		}
	}

	if err := agg.Sort(scan.SortByRiskRating, true); err != nil {
		return err
	}

	if err := os.MkdirAll(j.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	now := time.Now()
	path := filepath.Join(j.outputDir, fmt.Sprintf("买点股票_%s.txt", now.Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := report.Write(f, agg.Results(), now); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"universe": len(filtered),
		"found":    summary.Found,
		"failed":   summary.Fail,
		"file":     path,
	}).Info("Daily scan exported")
	return nil
}
