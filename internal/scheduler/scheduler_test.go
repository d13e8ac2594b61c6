package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlin/chanscan/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	runs     atomic.Int32
	err      error
}

func (j *fakeJob) Name() string                { return j.name }
func (j *fakeJob) Schedule() string            { return j.schedule }
func (j *fakeJob) Run(_ context.Context) error { j.runs.Add(1); return j.err }

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := New(logger.Nop())
	job := &fakeJob{name: "refresh", schedule: "@daily"}

	require.NoError(t, s.AddJob(job))
	assert.Error(t, s.AddJob(job))
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(logger.Nop())
	assert.Error(t, s.AddJob(&fakeJob{name: "bad", schedule: "not-a-cron"}))
}

func TestRunJobImmediately(t *testing.T) {
	s := New(logger.Nop())
	job := &fakeJob{name: "refresh", schedule: "@daily"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("refresh"))
	assert.Eventually(t, func() bool {
		return job.runs.Load() == 1
	}, 3*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		h := s.History("refresh")
		return h != nil && len(h.Results) == 1 && h.Results[0].Success
	}, 3*time.Second, 10*time.Millisecond)
}

func TestRunJobUnknown(t *testing.T) {
	s := New(logger.Nop())
	assert.Error(t, s.RunJob("missing"))
}

func TestJobHistoryTrimsAndRates(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "x", Success: i%2 == 0})
	}
	assert.Len(t, h.Results, 100)
	assert.InDelta(t, 0.5, h.SuccessRate(), 0.01)
}
