package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlin/chanscan/internal/market"
	"github.com/zlin/chanscan/internal/oracle"
	"github.com/zlin/chanscan/internal/scan"
)

func sampleResult(resonance bool) *scan.Result {
	r := &scan.Result{
		Instrument:     market.Quote{Code: "600000", Name: "浦发银行", Price: 10.52, ChangePct: 2.34, Volume: 1000},
		Base:           scan.Evidence{Timeframe: oracle.TimeframeDay, Class: "1", IsBuy: true, Time: time.Now()},
		ResonanceCount: 1,
		RiskRating:     5,
	}
	if resonance {
		r.Confirming = []scan.Evidence{
			{Timeframe: oracle.Timeframe30m, Class: "2", IsBuy: true, Time: time.Now()},
			{Timeframe: oracle.Timeframe5m, Class: "3a", IsBuy: true, Time: time.Now()},
		}
		r.ResonanceCount = 3
	}
	return r
}

func TestDescriptor(t *testing.T) {
	assert.Equal(t, "日线", Descriptor(sampleResult(false)))
	assert.Equal(t, "日线+30分+5分", Descriptor(sampleResult(true)))
}

func TestSignalType(t *testing.T) {
	assert.Equal(t, "1", SignalType(sampleResult(false)))
	assert.Equal(t, "1(日线+30分+5分)", SignalType(sampleResult(true)))
}

func TestRiskStars(t *testing.T) {
	assert.Equal(t, "★★★★★", RiskStars(5))
	assert.Equal(t, "★★★☆☆", RiskStars(3))
	assert.Equal(t, "★☆☆☆☆", RiskStars(1))
}

func TestWriteLayout(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2026, 8, 28, 15, 30, 0, 0, time.Local)
	require.NoError(t, Write(&buf, []*scan.Result{sampleResult(true)}, at))
	out := buf.String()

	assert.Contains(t, out, "A股买点扫描结果 - 2026-08-28 15:30:00")
	assert.Contains(t, out, "600000")
	assert.Contains(t, out, "浦发银行")
	assert.Contains(t, out, "10.52")
	assert.Contains(t, out, "+2.34%")
	assert.Contains(t, out, "★★★★★")
	assert.Contains(t, out, "1(日线+30分+5分)")
	assert.Contains(t, out, "共 1 只股票")

	// 表头分隔线在数据行之前
	lines := strings.Split(out, "\n")
	var dashIdx, dataIdx int
	for i, line := range lines {
		if strings.HasPrefix(line, "----------") && dashIdx == 0 {
			dashIdx = i
		}
		if strings.HasPrefix(line, "600000") {
			dataIdx = i
		}
	}
	assert.Greater(t, dataIdx, dashIdx)
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, time.Now()))
	assert.Contains(t, buf.String(), "共 0 只股票")
}

// failWriter fails after limit bytes, like a full disk mid-export.
type failWriter struct {
	limit   int
	written int
}

func (f *failWriter) Write(p []byte) (int, error) {
	if f.written+len(p) > f.limit {
		return 0, errors.New("disk full")
	}
	f.written += len(p)
	return len(p), nil
}

func TestWriteReportsLateFailure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []*scan.Result{sampleResult(true)}, time.Now()))
	full := buf.Len()

	tests := []struct {
		name  string
		limit int
	}{
		{"first write fails", 0},
		{"mid write fails", 200},
		{"last write fails", full - 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Write(&failWriter{limit: tt.limit}, []*scan.Result{sampleResult(true)}, time.Now())
			assert.EqualError(t, err, "disk full")
		})
	}
}
