package market

import (
	"context"
	"time"

	"github.com/zlin/chanscan/pkg/logger"
	"github.com/zlin/chanscan/pkg/redis"
)

// Fetcher retrieves the full-market snapshot with linear-backoff retry and
// an explicit TTL cache. After exhausting every attempt it returns an empty
// snapshot; callers treat that as "try again later".
// ⭐ SSOT: 快照获取只经过这个 Fetcher
type Fetcher struct {
	primary    SpotProvider
	fallback   SpotProvider // optional, tried once after the primary is exhausted
	cache      *redis.Cache
	logger     *logger.Logger
	maxRetries int

	// backoffUnit is the base wait of the linear backoff (attempt * unit).
	// Production uses 5 seconds; tests shrink it.
	backoffUnit time.Duration
}

// NewFetcher creates a snapshot fetcher. fallback and cache may be nil.
func NewFetcher(primary SpotProvider, fallback SpotProvider, cache *redis.Cache, maxRetries int, log *logger.Logger) *Fetcher {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Fetcher{
		primary:     primary,
		fallback:    fallback,
		cache:       cache,
		logger:      log.WithField("module", "fetcher"),
		maxRetries:  maxRetries,
		backoffUnit: 5 * time.Second,
	}
}

// Fetch returns the current full-market snapshot. The cache is consulted
// first; on a miss the primary provider is retried with linear backoff
// (5s, 10s, 15s, ...), then the fallback provider once. Exhaustion yields
// an empty snapshot and an error-level log event, never an error value.
func (f *Fetcher) Fetch(ctx context.Context) *Snapshot {
	if f.cache != nil {
		var cached Snapshot
		if found, err := f.cache.Get(ctx, redis.KeySpotSnapshot, &cached); err == nil && found {
			f.logger.WithField("count", len(cached.Quotes)).Debug("Snapshot served from cache")
			return &cached
		}
	}

	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		quotes, err := f.primary.FetchSpot(ctx)
		if err == nil {
			return f.finish(ctx, quotes)
		}

		f.logger.WithError(err).WithFields(map[string]interface{}{
			"attempt":     attempt,
			"max_retries": f.maxRetries,
		}).Warn("Snapshot fetch failed")

		if attempt == f.maxRetries {
			break
		}

		// 递增等待: 5秒、10秒、15秒
		wait := time.Duration(attempt) * f.backoffUnit
		select {
		case <-ctx.Done():
			f.logger.Error("Snapshot fetch cancelled")
			return &Snapshot{FetchedAt: time.Now()}
		case <-time.After(wait):
		}
	}

	if f.fallback != nil {
		quotes, err := f.fallback.FetchSpot(ctx)
		if err == nil {
			f.logger.WithField("count", len(quotes)).Info("Snapshot served from fallback source")
			return f.finish(ctx, quotes)
		}
		f.logger.WithError(err).Warn("Fallback snapshot fetch failed")
	}

	f.logger.Error("Snapshot fetch exhausted all attempts")
	return &Snapshot{FetchedAt: time.Now()}
}

// Invalidate drops the cached snapshot so the next Fetch goes upstream
func (f *Fetcher) Invalidate(ctx context.Context) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Invalidate(ctx, redis.KeySpotSnapshot); err != nil {
		f.logger.WithError(err).Warn("Snapshot cache invalidation failed")
	}
}

func (f *Fetcher) finish(ctx context.Context, quotes []Quote) *Snapshot {
	snapshot := &Snapshot{Quotes: quotes, FetchedAt: time.Now()}
	if f.cache != nil {
		if err := f.cache.Set(ctx, redis.KeySpotSnapshot, snapshot); err != nil {
			f.logger.WithError(err).Warn("Snapshot cache write failed")
		}
	}
	f.logger.WithField("count", len(quotes)).Debug("Snapshot fetched")
	return snapshot
}
