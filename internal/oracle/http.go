package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zlin/chanscan/pkg/config"
	"github.com/zlin/chanscan/pkg/httputil"
	"github.com/zlin/chanscan/pkg/logger"
)

// HTTPClient talks to the 缠论 analysis service.
// ⭐ SSOT: 分析服务的 HTTP 调用只在这里
type HTTPClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewHTTPClient creates an analysis service client from config.
func NewHTTPClient(cfg *config.Config, log *logger.Logger) *HTTPClient {
	return &HTTPClient{
		httpClient: httputil.NewWithTimeout(log, cfg.Oracle.Timeout),
		logger:     log.WithField("module", "oracle"),
		baseURL:    cfg.Oracle.BaseURL,
	}
}

var _ Client = (*HTTPClient)(nil)

type computeResponse struct {
	CandleCount int `json:"candle_count"`
	Signals     []struct {
		Class string `json:"class"`
		IsBuy bool   `json:"is_buy"`
		Time  string `json:"time"`
	} `json:"signals"`
}

// Compute requests signal analysis for one instrument at one timeframe.
func (c *HTTPClient) Compute(ctx context.Context, code string, tf Timeframe, begin, end time.Time, cfg Config) (*Result, error) {
	params := url.Values{}
	params.Set("code", code)
	params.Set("freq", string(tf))
	params.Set("begin", begin.Format("2006-01-02"))
	params.Set("end", end.Format("2006-01-02"))
	params.Set("adjust", cfg.Adjust)
	if cfg.StrictBi {
		params.Set("strict_bi", "1")
	}

	reqURL := fmt.Sprintf("%s/api/analysis/signals?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var parsed computeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse analysis response failed: %w", err)
	}

	result := &Result{CandleCount: parsed.CandleCount}
	for _, s := range parsed.Signals {
		// 信号时间带分钟精度 (30分/5分线), 日线只有日期
		t, err := time.Parse("2006-01-02 15:04:05", s.Time)
		if err != nil {
			t, err = time.Parse("2006-01-02", s.Time)
			if err != nil {
				c.logger.WithFields(map[string]interface{}{
					"code": code,
					"time": s.Time,
				}).Warn("Skipping signal with unparseable time")
				continue
			}
		}
		result.Signals = append(result.Signals, Signal{Class: s.Class, IsBuy: s.IsBuy, Time: t})
	}

	c.logger.WithFields(map[string]interface{}{
		"code":    code,
		"freq":    string(tf),
		"candles": result.CandleCount,
		"signals": len(result.Signals),
	}).Debug("Computed analysis")
	return result, nil
}
