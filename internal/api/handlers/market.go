package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/zlin/chanscan/internal/market"
	"github.com/zlin/chanscan/internal/store"
	"github.com/zlin/chanscan/internal/universe"
	"github.com/zlin/chanscan/pkg/logger"
	"github.com/zlin/chanscan/pkg/redis"
)

// SnapshotSource yields the latest full-market snapshot.
type SnapshotSource interface {
	Fetch(ctx context.Context) *market.Snapshot
}

// MarketHandler serves universe and master-list queries
// ⭐ SSOT: 行情类 API 处理只在这个结构体
type MarketHandler struct {
	source SnapshotSource
	repo   *store.Repository // nil 表示未配置数据库
	cache  *redis.Cache      // nil 表示无缓存
	logger *logger.Logger
}

// NewMarketHandler creates a new market handler. repo and cache may be
// nil when the database or Redis is not configured.
func NewMarketHandler(source SnapshotSource, repo *store.Repository, cache *redis.Cache, log *logger.Logger) *MarketHandler {
	return &MarketHandler{source: source, repo: repo, cache: cache, logger: log}
}

// UniverseResponse represents the filtered universe response
type UniverseResponse struct {
	Success bool           `json:"success"`
	Total   int            `json:"total"`
	Data    []market.Quote `json:"data"`
}

// GetUniverse returns the filtered instrument universe
// GET /api/universe?boards=main,gem&min_price=5&max_price=100
func (h *MarketHandler) GetUniverse(w http.ResponseWriter, r *http.Request) {
	cfg, err := universeConfigFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot := h.source.Fetch(r.Context())
	if snapshot.Empty() {
		respondError(w, http.StatusServiceUnavailable, "行情快照暂不可用, 请稍后重试")
		return
	}

	filtered := universe.Filter(snapshot.Quotes, cfg)
	respondJSON(w, http.StatusOK, UniverseResponse{Success: true, Total: len(filtered), Data: filtered})
}

// GetStocks returns the persisted master list
// GET /api/stocks
func (h *MarketHandler) GetStocks(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "数据库未配置")
		return
	}

	if h.cache != nil {
		var cached []store.Stock
		if ok, err := h.cache.Get(r.Context(), redis.KeyStockList, &cached); err != nil {
			h.logger.WithError(err).Warn("Stocklist cache read failed")
		} else if ok {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"total":   len(cached),
				"data":    cached,
			})
			return
		}
	}

	stocks, err := h.repo.ListStocks(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list stocks")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve stocks")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), redis.KeyStockList, stocks); err != nil {
			h.logger.WithError(err).Warn("Stocklist cache write failed")
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"total":   len(stocks),
		"data":    stocks,
	})
}

func universeConfigFromQuery(r *http.Request) (universe.Config, error) {
	cfg := universe.Config{MinPrice: 0, MaxPrice: 10000}

	boards := r.URL.Query().Get("boards")
	if boards == "" {
		boards = "main"
	}
	for _, b := range strings.Split(boards, ",") {
		switch strings.TrimSpace(b) {
		case "main":
			cfg.IncludeMain = true
		case "gem":
			cfg.IncludeGEM = true
		case "star":
			cfg.IncludeSTAR = true
		case "bse":
			cfg.IncludeBSE = true
		}
	}

	if v := r.URL.Query().Get("min_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, errInvalidParam("min_price")
		}
		cfg.MinPrice = f
	}
	if v := r.URL.Query().Get("max_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, errInvalidParam("max_price")
		}
		cfg.MaxPrice = f
	}
	return cfg, nil
}

type paramError string

func errInvalidParam(name string) error { return paramError(name) }

func (e paramError) Error() string { return "invalid query parameter: " + string(e) }

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
