package eastmoney

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/zlin/chanscan/internal/market"
)

// spot API page size; the full A-share universe is ~5500 rows
const spotPageSize = 100

// spotResponse mirrors the push2 clist endpoint payload.
// fltt=2 makes the endpoint return prices as plain floats.
type spotResponse struct {
	Data *struct {
		Total int        `json:"total"`
		Diff  []spotItem `json:"diff"`
	} `json:"data"`
}

// spotItem uses the push2 field codes:
// f2=最新价 f3=涨跌幅 f5=成交量 f12=代码 f14=名称
type spotItem struct {
	Price     flexNumber `json:"f2"`
	ChangePct flexNumber `json:"f3"`
	Volume    flexNumber `json:"f5"`
	Code      string     `json:"f12"`
	Name      string     `json:"f14"`
}

// flexNumber tolerates the "-" placeholder the endpoint emits for halted
// stocks, both bare and quoted.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "-" || string(b) == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexNumber(v)
	return nil
}

// FetchSpot fetches the full A-share realtime snapshot, paginating through
// the clist endpoint until every row is consumed.
func (c *Client) FetchSpot(ctx context.Context) ([]market.Quote, error) {
	var quotes []market.Quote

	for page := 1; ; page++ {
		url := fmt.Sprintf(
			"%s/api/qt/clist/get?pn=%d&pz=%d&po=1&np=1&fltt=2&fid=f12&fs=m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23,m:0+t:81+s:2048&fields=f2,f3,f5,f12,f14",
			c.baseURL, page, spotPageSize,
		)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request failed: %w", err)
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
		req.Header.Set("Referer", "https://quote.eastmoney.com/")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		var parsed spotResponse
		err = json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("parse spot response failed: %w", err)
		}

		if parsed.Data == nil || len(parsed.Data.Diff) == 0 {
			break
		}

		for _, item := range parsed.Data.Diff {
			quotes = append(quotes, market.Quote{
				Code:      item.Code,
				Name:      item.Name,
				Price:     float64(item.Price),
				ChangePct: float64(item.ChangePct),
				Volume:    int64(item.Volume),
			})
		}

		if len(quotes) >= parsed.Data.Total {
			break
		}
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("spot endpoint returned no rows")
	}

	c.logger.WithField("count", len(quotes)).Debug("Fetched spot snapshot")
	return quotes, nil
}
