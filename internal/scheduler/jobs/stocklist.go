// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"

	"github.com/zlin/chanscan/internal/market"
	"github.com/zlin/chanscan/internal/universe"
	"github.com/zlin/chanscan/pkg/logger"
	"github.com/zlin/chanscan/pkg/redis"
)

// SnapshotSource yields the latest full-market snapshot.
type SnapshotSource interface {
	Fetch(ctx context.Context) *market.Snapshot
}

// QuoteStore persists master-list rows.
type QuoteStore interface {
	EnsureSchema(ctx context.Context) error
	UpsertQuotes(ctx context.Context, quotes []market.Quote) (int, error)
}

// StocklistJob refreshes the persisted instrument master list from a
// fresh snapshot.
type StocklistJob struct {
	source   SnapshotSource
	repo     QuoteStore
	cache    *redis.Cache // nil 表示无缓存
	schedule string
	logger   *logger.Logger
}

// NewStocklistJob creates the master-list refresh job. cache may be nil.
func NewStocklistJob(source SnapshotSource, repo QuoteStore, cache *redis.Cache, schedule string, log *logger.Logger) *StocklistJob {
	return &StocklistJob{
		source:   source,
		repo:     repo,
		cache:    cache,
		schedule: schedule,
		logger:   log.WithField("job", "stocklist_refresh"),
	}
}

func (j *StocklistJob) Name() string     { return "stocklist_refresh" }
func (j *StocklistJob) Schedule() string { return j.schedule }

// Run fetches a snapshot and upserts the master-list selection from it.
// ST 股 / B 股 / CDR / 科创板 / 北交所 不入主表.
func (j *StocklistJob) Run(ctx context.Context) error {
	snapshot := j.source.Fetch(ctx)
	if snapshot.Empty() {
		return fmt.Errorf("snapshot unavailable")
	}

	if err := j.repo.EnsureSchema(ctx); err != nil {
		return err
	}

	rows := universe.MasterList(snapshot.Quotes)
	n, err := j.repo.UpsertQuotes(ctx, rows)
	if err != nil {
		return fmt.Errorf("refresh stocklist: %w", err)
	}

	if j.cache != nil {
		if err := j.cache.Invalidate(ctx, redis.KeyStockList); err != nil {
			j.logger.WithError(err).Warn("Failed to invalidate stocklist cache")
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"snapshot": len(snapshot.Quotes),
		"count":    n,
	}).Info("Stocklist refreshed")
	return nil
}
