package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlin/chanscan/internal/backtest"
	"github.com/zlin/chanscan/internal/market"
	"github.com/zlin/chanscan/internal/oracle"
	"github.com/zlin/chanscan/internal/scan"
	"github.com/zlin/chanscan/pkg/logger"
)

type stubSource struct {
	snapshot *market.Snapshot
}

func (s *stubSource) Fetch(context.Context) *market.Snapshot { return s.snapshot }

func marketSnapshot() *market.Snapshot {
	return &market.Snapshot{
		Quotes: []market.Quote{
			{Code: "600000", Name: "浦发银行", Price: 10.52, ChangePct: 2.34, Volume: 1000},
			{Code: "300750", Name: "宁德时代", Price: 180.0, ChangePct: 1.0, Volume: 2000},
			{Code: "600001", Name: "ST某某", Price: 3.0, ChangePct: 0, Volume: 500},
		},
		FetchedAt: time.Now(),
	}
}

func TestGetUniverseFilters(t *testing.T) {
	h := NewMarketHandler(&stubSource{snapshot: marketSnapshot()}, nil, nil, logger.Nop())

	req := httptest.NewRequest("GET", "/api/universe?boards=main&min_price=5&max_price=100", nil)
	rec := httptest.NewRecorder()
	h.GetUniverse(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "600000")
	assert.NotContains(t, body, "300750") // 创业板未选
	assert.NotContains(t, body, "ST某某")
}

func TestGetUniverseSnapshotUnavailable(t *testing.T) {
	h := NewMarketHandler(&stubSource{snapshot: &market.Snapshot{}}, nil, nil, logger.Nop())

	rec := httptest.NewRecorder()
	h.GetUniverse(rec, httptest.NewRequest("GET", "/api/universe", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetStocksWithoutDatabase(t *testing.T) {
	h := NewMarketHandler(&stubSource{snapshot: marketSnapshot()}, nil, nil, logger.Nop())

	rec := httptest.NewRecorder()
	h.GetStocks(rec, httptest.NewRequest("GET", "/api/stocks", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBacktestEndpoint(t *testing.T) {
	source := &stubSource{snapshot: &market.Snapshot{
		Quotes:    []market.Quote{{Code: "600000", Price: 11.0}},
		FetchedAt: time.Now(),
	}}
	h := NewBacktestHandler(backtest.NewEvaluator(source, logger.Nop()), logger.Nop())

	body := `======================================================================
A股买点扫描结果 - 2026-08-20 15:30:00
======================================================================

代码        名称          现价       涨跌%      风险系数      买点类型
----------------------------------------------------------------------
600000    浦发银行       10.00     +2.34%    ★★★★★     1
----------------------------------------------------------------------
`
	rec := httptest.NewRecorder()
	h.Evaluate(rec, httptest.NewRequest("POST", "/api/backtest", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `"resolved":1`)
	assert.Contains(t, out, `"avg_return":10`)
}

func TestBacktestEndpointEmptyUpload(t *testing.T) {
	source := &stubSource{snapshot: &market.Snapshot{}}
	h := NewBacktestHandler(backtest.NewEvaluator(source, logger.Nop()), logger.Nop())

	rec := httptest.NewRecorder()
	h.Evaluate(rec, httptest.NewRequest("POST", "/api/backtest", strings.NewReader("不是导出文件")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type wsOracle struct{}

func (o *wsOracle) Compute(_ context.Context, code string, tf oracle.Timeframe, _, _ time.Time, _ oracle.Config) (*oracle.Result, error) {
	if code == "600000" && tf == oracle.TimeframeDay {
		return &oracle.Result{
			CandleCount: 240,
			Signals:     []oracle.Signal{{Class: "1", IsBuy: true, Time: time.Now().Add(-time.Hour)}},
		}, nil
	}
	return &oracle.Result{CandleCount: 240}, nil
}

func TestScanWebSocket(t *testing.T) {
	orch := scan.NewOrchestrator(scan.NewAnalyzer(&wsOracle{}, logger.Nop()), logger.Nop())
	defaults := scan.Config{RecencyDays: 3, HistoryDays: 365, MaxWorkers: 2}
	h := NewScanHandler(&stubSource{snapshot: marketSnapshot()}, orch, defaults, logger.Nop())

	server := httptest.NewServer(http.HandlerFunc(h.Serve))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"action": "start",
		"boards": []string{"main"},
	}))

	var sawProgress, sawFound, sawFinished bool
	deadline := time.Now().Add(10 * time.Second)
	for !sawFinished {
		conn.SetReadDeadline(deadline)
		var frame map[string]interface{}
		require.NoError(t, conn.ReadJSON(&frame))
		switch frame["type"] {
		case "progress":
			sawProgress = true
		case "found":
			result := frame["result"].(map[string]interface{})
			assert.Equal(t, "600000", result["code"])
			assert.Equal(t, float64(5), result["risk_rating"])
			sawFound = true
		case "finished":
			summary := frame["summary"].(map[string]interface{})
			assert.Equal(t, float64(1), summary["found"])
			sawFinished = true
		}
	}
	assert.True(t, sawProgress)
	assert.True(t, sawFound)
}

func TestScanWebSocketRejectsUnknownAction(t *testing.T) {
	orch := scan.NewOrchestrator(scan.NewAnalyzer(&wsOracle{}, logger.Nop()), logger.Nop())
	h := NewScanHandler(&stubSource{snapshot: marketSnapshot()}, orch, scan.Config{MaxWorkers: 1}, logger.Nop())

	server := httptest.NewServer(http.HandlerFunc(h.Serve))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "pause"}))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame map[string]interface{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "error", frame["type"])
}
