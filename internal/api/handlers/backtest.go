package handlers

import (
	"net/http"

	"github.com/zlin/chanscan/internal/backtest"
	"github.com/zlin/chanscan/pkg/logger"
)

// BacktestHandler re-prices an uploaded recommendation export
type BacktestHandler struct {
	evaluator *backtest.Evaluator
	logger    *logger.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(evaluator *backtest.Evaluator, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{evaluator: evaluator, logger: log}
}

// BacktestResponse represents the backtest evaluation response
type BacktestResponse struct {
	Success bool              `json:"success"`
	Rows    []backtest.Row    `json:"rows"`
	Summary *backtest.Summary `json:"summary"` // 无可解析行时为 null
}

// Evaluate parses the uploaded export file and re-prices it
// POST /api/backtest  (body: 导出的TXT内容)
func (h *BacktestHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	rows, err := backtest.Parse(r.Body)
	if err != nil {
		h.logger.WithError(err).Error("Failed to parse backtest upload")
		respondError(w, http.StatusBadRequest, "无法解析上传的文件")
		return
	}
	if len(rows) == 0 {
		respondError(w, http.StatusBadRequest, "文件中没有有效的股票数据")
		return
	}

	enriched, summary := h.evaluator.Evaluate(r.Context(), rows)
	respondJSON(w, http.StatusOK, BacktestResponse{Success: true, Rows: enriched, Summary: summary})
}
