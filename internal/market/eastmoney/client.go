package eastmoney

import (
	"github.com/zlin/chanscan/pkg/config"
	"github.com/zlin/chanscan/pkg/httputil"
	"github.com/zlin/chanscan/pkg/logger"
)

// Client handles communication with the 东方财富 realtime quote endpoints
// ⭐ SSOT: 行情快照 API 调用只在这个客户端进行
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new quote client. Retry is disabled on the HTTP layer
// because the snapshot Fetcher owns the backoff policy.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	httpClient := httputil.New(log).
		DisableRetry().
		WithRateLimit(cfg.Quote.RateLimit)

	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "eastmoney"),
		baseURL:    cfg.Quote.BaseURL,
	}
}
