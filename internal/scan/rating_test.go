package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateBaseTable(t *testing.T) {
	tests := []struct {
		class string
		count int
		want  int
	}{
		{"1", 1, 5},
		{"1p", 1, 4},
		{"2", 1, 4},
		{"2s", 1, 3},
		{"3a", 1, 3},
		{"3b", 1, 2},
		{"奇怪类别", 1, 3}, // 未知类别取中性 3 星
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Rate(tt.class, tt.count), "class=%s count=%d", tt.class, tt.count)
	}
}

func TestRateResonanceBoost(t *testing.T) {
	assert.Equal(t, 5, Rate("1", 1))
	assert.Equal(t, 5, Rate("1", 3)) // 顶格封顶 5 星
	assert.Equal(t, 2, Rate("3b", 1))
	assert.Equal(t, 3, Rate("3b", 2))
	assert.Equal(t, 4, Rate("3b", 3))
	assert.Equal(t, 5, Rate("2s", 3))
}

func TestRateDirectionMarkersStripped(t *testing.T) {
	assert.Equal(t, Rate("1", 1), Rate("b1", 1))
	assert.Equal(t, Rate("2s", 1), Rate("s2s", 1))
	assert.Equal(t, Rate("3a", 2), Rate("b3a", 2))
}

func TestRateMonotonicInResonanceCount(t *testing.T) {
	for _, class := range []string{"1", "1p", "2", "2s", "3a", "3b", "unknown"} {
		prev := 0
		for count := 1; count <= 3; count++ {
			got := Rate(class, count)
			assert.GreaterOrEqual(t, got, prev, "class=%s count=%d", class, count)
			assert.GreaterOrEqual(t, got, 1)
			assert.LessOrEqual(t, got, 5)
			prev = got
		}
	}
}
