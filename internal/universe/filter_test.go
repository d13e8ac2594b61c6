package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zlin/chanscan/internal/market"
)

func q(code, name string, price, changePct float64, volume int64) market.Quote {
	return market.Quote{Code: code, Name: name, Price: price, ChangePct: changePct, Volume: volume}
}

func codes(quotes []market.Quote) []string {
	out := make([]string, 0, len(quotes))
	for _, quote := range quotes {
		out = append(out, quote.Code)
	}
	return out
}

func TestFilterFixedExclusions(t *testing.T) {
	cfg := Config{IncludeMain: true, MinPrice: 0, MaxPrice: 10000}

	quotes := []market.Quote{
		q("600000", "浦发银行", 10.5, 1.2, 1000),
		q("600001", "ST邯钢", 3.2, 0.5, 500),   // ST
		q("600002", "*st华菱", 2.1, -1.0, 400), // 小写 st 同样排除
		q("200011", "深物业B", 8.0, 0.1, 300),   // 深B
		q("900901", "云赛B股", 0.5, 0.0, 200),   // 沪B
		q("920001", "某CDR", 15.0, 2.0, 600),  // CDR
		q("600003", "停牌股", 12.0, 0.0, 0),     // 零成交量
		q("600004", "退市股", 0, 0.0, 100),      // 非正价格
	}

	got := Filter(quotes, cfg)
	assert.Equal(t, []string{"600000"}, codes(got))
}

func TestFilterBoards(t *testing.T) {
	quotes := []market.Quote{
		q("600000", "主板沪", 10, 0, 100),
		q("000001", "主板深", 10, 0, 100),
		q("003816", "中小段", 10, 0, 100),
		q("300750", "创业板", 10, 0, 100),
		q("301236", "创业板新", 10, 0, 100),
		q("688981", "科创板", 10, 0, 100),
		q("830799", "北交所8", 10, 0, 100),
		q("430047", "北交所43", 10, 0, 100),
	}

	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{
			name: "main only excludes 003 segment",
			cfg:  Config{IncludeMain: true, MaxPrice: 10000},
			want: []string{"600000", "000001"},
		},
		{
			name: "gem only",
			cfg:  Config{IncludeGEM: true, MaxPrice: 10000},
			want: []string{"300750", "301236"},
		},
		{
			name: "star only",
			cfg:  Config{IncludeSTAR: true, MaxPrice: 10000},
			want: []string{"688981"},
		},
		{
			name: "bse only",
			cfg:  Config{IncludeBSE: true, MaxPrice: 10000},
			want: []string{"830799", "430047"},
		},
		{
			name: "boards union preserves snapshot order",
			cfg:  Config{IncludeMain: true, IncludeSTAR: true, MaxPrice: 10000},
			want: []string{"600000", "000001", "688981"},
		},
		{
			name: "no board selected yields empty universe",
			cfg:  Config{MaxPrice: 10000},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(Filter(quotes, tt.cfg)))
		})
	}
}

func TestFilterPriceRange(t *testing.T) {
	quotes := []market.Quote{
		q("600001", "低价", 4.99, 0, 100),
		q("600002", "下界", 5.00, 0, 100),
		q("600003", "中间", 30.00, 0, 100),
		q("600004", "上界", 50.00, 0, 100),
		q("600005", "高价", 50.01, 0, 100),
	}

	got := Filter(quotes, Config{IncludeMain: true, MinPrice: 5, MaxPrice: 50})
	// 区间两端都包含
	assert.Equal(t, []string{"600002", "600003", "600004"}, codes(got))
}

func TestMasterList(t *testing.T) {
	quotes := []market.Quote{
		q("600000", "浦发银行", 10.5, 1.2, 1000),
		q("000001", "平安银行", 11.0, 0.3, 900),
		q("300750", "宁德时代", 180.0, 2.1, 800),
		q("600001", "ST邯钢", 3.2, 0.5, 500),  // ST
		q("900901", "云赛B股", 0.5, 0.0, 200),  // 沪B
		q("200011", "深物业B", 8.0, 0.1, 300),  // 深B
		q("920001", "某CDR", 15.0, 2.0, 600), // CDR
		q("688981", "中芯国际", 50.0, 0.8, 700), // 科创板不入主表
		q("830799", "艾融软件", 20.0, 0.2, 100), // 北交所不入主表
		q("430047", "诺思兰德", 9.0, 0.0, 100),  // 北交所不入主表
	}

	got := MasterList(quotes)
	assert.Equal(t, []string{"600000", "000001", "300750"}, codes(got))
}

func TestFilterEmptyInput(t *testing.T) {
	got := Filter(nil, Config{IncludeMain: true, MaxPrice: 100})
	assert.Empty(t, got)
}
