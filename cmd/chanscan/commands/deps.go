package commands

import (
	"fmt"

	"github.com/zlin/chanscan/internal/market"
	"github.com/zlin/chanscan/internal/market/eastmoney"
	"github.com/zlin/chanscan/internal/oracle"
	"github.com/zlin/chanscan/internal/scan"
	"github.com/zlin/chanscan/internal/universe"
	"github.com/zlin/chanscan/pkg/config"
	"github.com/zlin/chanscan/pkg/logger"
	"github.com/zlin/chanscan/pkg/redis"
)

// app bundles the shared wiring every command starts from.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	cache   *redis.Cache // nil 表示 Redis 未配置
	fetcher *market.Fetcher
	oracle  oracle.Client
}

// bootstrap loads config and builds the snapshot/analysis clients.
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	var cache *redis.Cache
	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, snapshot cache disabled")
	} else if redisClient.Enabled() {
		cache = redis.NewCache(redisClient, "chanscan", cfg.Quote.CacheTTL)
	}

	primary := eastmoney.NewClient(cfg, log)
	var fallback market.SpotProvider
	if cfg.Quote.FallbackURL != "" {
		fallback = eastmoney.NewBoardClient(cfg.Quote.FallbackURL, log)
	}

	return &app{
		cfg:     cfg,
		log:     log,
		cache:   cache,
		fetcher: market.NewFetcher(primary, fallback, cache, cfg.Quote.MaxRetries, log),
		oracle:  oracle.NewHTTPClient(cfg, log),
	}, nil
}

// universeConfig maps the scanner defaults to a filter config.
func (a *app) universeConfig() universe.Config {
	s := a.cfg.Scanner
	return universe.Config{
		IncludeMain: s.IncludeMain,
		IncludeGEM:  s.IncludeGEM,
		IncludeSTAR: s.IncludeSTAR,
		IncludeBSE:  s.IncludeBSE,
		MinPrice:    s.MinPrice,
		MaxPrice:    s.MaxPrice,
	}
}

// scanConfig maps the scanner defaults to a scan config.
func (a *app) scanConfig() scan.Config {
	s := a.cfg.Scanner
	return scan.Config{
		RecencyDays:  s.RecencyDays,
		HistoryDays:  s.HistoryDays,
		UseResonance: s.UseResonance,
		MaxWorkers:   s.MaxWorkers,
	}
}
