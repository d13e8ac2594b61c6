package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zlin/chanscan/internal/scan"
)

const lineWidth = 70

// Write emits the scan result table in the export text format. The layout
// is a stable contract: the backtest importer parses it back.
// ⭐ SSOT: 导出文本格式只在这里定义
func Write(w io.Writer, results []*scan.Result, at time.Time) error {
	rule := strings.Repeat("=", lineWidth)
	dash := strings.Repeat("-", lineWidth)
	out := &stickyWriter{w: w}

	out.printf("%s\nA股买点扫描结果 - %s\n%s\n\n",
		rule, at.Format("2006-01-02 15:04:05"), rule)

	out.printf("%-10s%-12s%-10s%-10s%-12s%s\n", "代码", "名称", "现价", "涨跌%", "风险系数", "买点类型")
	out.printf("%s\n", dash)

	for _, r := range results {
		out.printf("%-10s%-12s%-10.2f%-10s%-12s%s\n",
			r.Instrument.Code,
			r.Instrument.Name,
			r.Instrument.Price,
			fmt.Sprintf("%+.2f%%", r.Instrument.ChangePct),
			RiskStars(r.RiskRating),
			SignalType(r),
		)
	}

	out.printf("\n%s\n共 %d 只股票\n", dash, len(results))
	out.printf("\n风险系数说明:\n")
	out.printf("★★★★★ (5星) - 最可靠\n")
	out.printf("★★★★☆ (4星) - 较可靠\n")
	out.printf("★★★☆☆ (3星) - 一般\n")
	out.printf("★★☆☆☆ (2星) - 风险较高\n")
	return out.err
}

// stickyWriter keeps the first write error and drops everything after it.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) printf(format string, args ...interface{}) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}
