package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlin/chanscan/internal/market"
	"github.com/zlin/chanscan/pkg/logger"
)

type stubSource struct{ snapshot *market.Snapshot }

func (s *stubSource) Fetch(ctx context.Context) *market.Snapshot { return s.snapshot }

type recordingStore struct {
	schemaCalls int
	upserted    []market.Quote
}

func (r *recordingStore) EnsureSchema(ctx context.Context) error {
	r.schemaCalls++
	return nil
}

func (r *recordingStore) UpsertQuotes(ctx context.Context, quotes []market.Quote) (int, error) {
	r.upserted = append(r.upserted, quotes...)
	return len(quotes), nil
}

func TestStocklistJobFiltersBeforePersist(t *testing.T) {
	snapshot := &market.Snapshot{
		Quotes: []market.Quote{
			{Code: "600000", Name: "浦发银行", Price: 10.5, Volume: 1000},
			{Code: "600001", Name: "ST邯钢", Price: 3.2, Volume: 500},
			{Code: "900901", Name: "云赛B股", Price: 0.5, Volume: 200},
			{Code: "688981", Name: "中芯国际", Price: 50.0, Volume: 700},
			{Code: "830799", Name: "艾融软件", Price: 20.0, Volume: 100},
			{Code: "300750", Name: "宁德时代", Price: 180.0, Volume: 800},
		},
		FetchedAt: time.Now(),
	}
	repo := &recordingStore{}
	job := NewStocklistJob(&stubSource{snapshot: snapshot}, repo, nil, "@daily", logger.Nop())

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, 1, repo.schemaCalls)
	var persisted []string
	for _, q := range repo.upserted {
		persisted = append(persisted, q.Code)
	}
	// ST / B股 / 科创板 / 北交所 不入主表
	assert.Equal(t, []string{"600000", "300750"}, persisted)
}

func TestStocklistJobEmptySnapshot(t *testing.T) {
	repo := &recordingStore{}
	job := NewStocklistJob(&stubSource{snapshot: &market.Snapshot{}}, repo, nil, "@daily", logger.Nop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, repo.upserted)
	assert.Zero(t, repo.schemaCalls)
}
