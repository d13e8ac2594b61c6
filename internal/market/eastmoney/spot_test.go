package eastmoney

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlin/chanscan/pkg/config"
	"github.com/zlin/chanscan/pkg/logger"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.Config{}
	cfg.Quote.BaseURL = baseURL
	cfg.Quote.RateLimit = 1000
	return NewClient(cfg, logger.Nop())
}

func TestFetchSpotSinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("pn")
		if page != "1" {
			fmt.Fprint(w, `{"data":null}`)
			return
		}
		fmt.Fprint(w, `{
			"data": {
				"total": 3,
				"diff": [
					{"f2": 10.52, "f3": 2.34, "f5": 1234567, "f12": "600000", "f14": "浦发银行"},
					{"f2": 12.80, "f3": -1.05, "f5": 987654, "f12": "000001", "f14": "平安银行"},
					{"f2": "-", "f3": "-", "f5": 0, "f12": "300750", "f14": "宁德时代"}
				]
			}
		}`)
	}))
	defer server.Close()

	quotes, err := newTestClient(server.URL).FetchSpot(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	assert.Equal(t, "600000", quotes[0].Code)
	assert.Equal(t, "浦发银行", quotes[0].Name)
	assert.Equal(t, 10.52, quotes[0].Price)
	assert.Equal(t, 2.34, quotes[0].ChangePct)
	assert.Equal(t, int64(1234567), quotes[0].Volume)

	// 停牌股: "-" 占位符解析为 0
	assert.Equal(t, "300750", quotes[2].Code)
	assert.Equal(t, 0.0, quotes[2].Price)
	assert.Equal(t, int64(0), quotes[2].Volume)
}

func TestFetchSpotPaginates(t *testing.T) {
	pages := map[string]string{
		"1": `{"data":{"total":4,"diff":[
			{"f2":1.0,"f3":0,"f5":10,"f12":"600001","f14":"甲"},
			{"f2":2.0,"f3":0,"f5":20,"f12":"600002","f14":"乙"}]}}`,
		"2": `{"data":{"total":4,"diff":[
			{"f2":3.0,"f3":0,"f5":30,"f12":"600003","f14":"丙"},
			{"f2":4.0,"f3":0,"f5":40,"f12":"600004","f14":"丁"}]}}`,
	}

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, ok := pages[r.URL.Query().Get("pn")]
		if !ok {
			fmt.Fprint(w, `{"data":null}`)
			return
		}
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	quotes, err := newTestClient(server.URL).FetchSpot(context.Background())
	require.NoError(t, err)
	assert.Len(t, quotes, 4)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "600004", quotes[3].Code)
}

func TestFetchSpotEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":null}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchSpot(context.Background())
	assert.Error(t, err)
}

func TestFetchSpotServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchSpot(context.Background())
	assert.Error(t, err)
}
