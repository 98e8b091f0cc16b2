package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
	ctx  atomic.Value // context.Context of the last run
}

func (j *countingJob) Run(ctx context.Context) error {
	j.ctx.Store(ctx)
	j.runs.Add(1)
	return j.err
}

func (j *countingJob) Name() string {
	if j.name == "" {
		return "counting"
	}
	return j.name
}

// TestAddJob_InvalidSchedule tests that malformed schedules are rejected
func TestAddJob_InvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a schedule", &countingJob{})
	assert.Error(t, err)

	// Five-field specs need the seconds field
	err = s.AddJob("0 3 * * *", &countingJob{})
	assert.Error(t, err)
	assert.Empty(t, s.Status())
}

// TestAddJob_DuplicateName tests that one job name is registered once
func TestAddJob_DuplicateName(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("0 0 3 * * *", &countingJob{name: "snapshot_10pm"}))
	err := s.AddJob("0 0 4 * * *", &countingJob{name: "snapshot_10pm"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot_10pm")
}

// TestAddJob_Runs tests that a registered job fires on schedule and its outcome is recorded
func TestAddJob_Runs(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("upstream down")}

	require.NoError(t, s.AddJob("@every 1s", job))
	s.Start()

	assert.Eventually(t, func() bool {
		st := s.Status()
		return len(st) == 1 && st[0].Runs > 0
	}, 3*time.Second, 50*time.Millisecond)
	s.Stop()

	st := s.Status()[0]
	assert.Equal(t, "counting", st.Name)
	assert.Equal(t, "@every 1s", st.Schedule)
	assert.Equal(t, "upstream down", st.LastError)
	assert.False(t, st.LastRun.IsZero())

	// The job context is cancelled once the scheduler has stopped
	ctx := job.ctx.Load().(context.Context)
	assert.Error(t, ctx.Err())
}

// TestStatus_NextRun tests that the next run is known before the scheduler starts
func TestStatus_NextRun(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("0 0 3 * * *", &countingJob{name: "snapshot_10pm"}))
	require.NoError(t, s.AddJob("0 0 17 * * *", &countingJob{name: "snapshot_12pm"}))

	status := s.Status()

	require.Len(t, status, 2)
	assert.Equal(t, "snapshot_10pm", status[0].Name)
	assert.Equal(t, "snapshot_12pm", status[1].Name)
	for _, st := range status {
		require.False(t, st.Next.IsZero(), st.Name)
		assert.True(t, st.Next.After(time.Now()), st.Name)
		assert.Equal(t, 0, st.Next.Minute())
	}
	assert.Equal(t, 3, status[0].Next.UTC().Hour())
	assert.Equal(t, 17, status[1].Next.UTC().Hour())
}

// TestRunNow tests immediate execution of registered and ad hoc jobs
func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("boom")}

	err := s.RunNow(job)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, int32(1), job.runs.Load())

	require.NoError(t, s.AddJob("0 0 3 * * *", job))
	assert.Error(t, s.RunNow(job))
	assert.Equal(t, 1, s.Status()[0].Runs)
}
