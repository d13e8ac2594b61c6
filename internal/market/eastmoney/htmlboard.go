package eastmoney

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zlin/chanscan/internal/market"
	"github.com/zlin/chanscan/pkg/httputil"
	"github.com/zlin/chanscan/pkg/logger"
)

// maximum pages on the legacy HTML quote board (~5500 stocks, 20 per page)
const boardMaxPages = 300

// BoardClient scrapes the legacy HTML quote board. It serves as a fallback
// snapshot source when the JSON spot API is exhausted.
// ⭐ SSOT: HTML 行情列表页的抓取只在这里
type BoardClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewBoardClient creates a fallback quote-board scraper.
func NewBoardClient(baseURL string, log *logger.Logger) *BoardClient {
	return &BoardClient{
		httpClient: httputil.New(log).DisableRetry(),
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// FetchSpot implements market.SpotProvider by paginating the HTML board.
func (c *BoardClient) FetchSpot(ctx context.Context) ([]market.Quote, error) {
	var quotes []market.Quote
	emptyPages := 0

	for page := 1; page <= boardMaxPages; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		url := fmt.Sprintf("%s/center/gridlist.html?p=%d", c.baseURL, page)

		resp, err := c.httpClient.Get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response body failed: %w", err)
		}

		pageQuotes, hasMore := parseBoardHTML(string(body))
		quotes = append(quotes, pageQuotes...)

		if len(pageQuotes) == 0 {
			emptyPages++
			if emptyPages >= 2 {
				break
			}
		} else {
			emptyPages = 0
		}

		if !hasMore {
			break
		}
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("quote board returned no rows")
	}

	c.logger.WithField("count", len(quotes)).Debug("Fetched quote board snapshot")
	return quotes, nil
}

var boardCodeRe = regexp.MustCompile(`^\d{6}$`)

// parseBoardHTML extracts quote rows from one board page.
// 表格列: 代码 | 名称 | 最新价 | 涨跌幅 | 成交量
func parseBoardHTML(html string) ([]market.Quote, bool) {
	var quotes []market.Quote

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return quotes, false
	}

	table := doc.Find("table.quote-table")
	if table.Length() == 0 {
		return quotes, false
	}

	parseFloat := func(s string) float64 {
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" || s == "-" {
			return 0
		}
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}

		code := strings.TrimSpace(cells.Eq(0).Text())
		if !boardCodeRe.MatchString(code) {
			return
		}

		quotes = append(quotes, market.Quote{
			Code:      code,
			Name:      strings.TrimSpace(cells.Eq(1).Text()),
			Price:     parseFloat(cells.Eq(2).Text()),
			ChangePct: parseFloat(cells.Eq(3).Text()),
			Volume:    int64(parseFloat(cells.Eq(4).Text())),
		})
	})

	hasMore := doc.Find(".next-page").Length() > 0
	return quotes, hasMore
}
