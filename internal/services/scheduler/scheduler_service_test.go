package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/spendsense/internal/common"
	"github.com/ternarybob/spendsense/internal/services/insights"
)

type fakeRefresher struct {
	windows [][]int
	summary *insights.RefreshSummary
	err     error
}

func (f *fakeRefresher) RefreshAll(ctx context.Context, windows []int) (*insights.RefreshSummary, error) {
	f.windows = append(f.windows, windows)
	return f.summary, f.err
}

func TestRegisterJob_Validation(t *testing.T) {
	s := NewService(arbor.NewLogger())
	noop := func(ctx context.Context) error { return nil }

	err := s.RegisterJob("every_minute", "* * * * *", "", noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")

	require.NoError(t, s.RegisterJob("nightly", "0 2 * * *", "", noop))
	err = s.RegisterJob("nightly", "0 3 * * *", "", noop)
	assert.EqualError(t, err, "job nightly already registered")
}

func TestRunJob_TracksStatus(t *testing.T) {
	s := NewService(arbor.NewLogger())
	calls := 0
	require.NoError(t, s.RegisterJob("nightly", "0 2 * * *", "test job", func(ctx context.Context) error {
		calls++
		if calls == 2 {
			return errors.New("source offline")
		}
		return nil
	}))

	require.NoError(t, s.RunJob("nightly"))
	status, err := s.GetJobStatus("nightly")
	require.NoError(t, err)
	require.NotNil(t, status.LastRun)
	assert.Empty(t, status.LastError)
	assert.False(t, status.IsRunning)
	assert.Nil(t, status.NextRun)

	assert.EqualError(t, s.RunJob("nightly"), "source offline")
	status, err = s.GetJobStatus("nightly")
	require.NoError(t, err)
	assert.Equal(t, "source offline", status.LastError)

	assert.EqualError(t, s.RunJob("missing"), "job missing not found")
}

func TestRunJob_RecoversPanic(t *testing.T) {
	s := NewService(arbor.NewLogger())
	require.NoError(t, s.RegisterJob("bad", "0 2 * * *", "", func(ctx context.Context) error {
		panic("boom")
	}))

	err := s.RunJob("bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked: boom")

	status, err := s.GetJobStatus("bad")
	require.NoError(t, err)
	assert.False(t, status.IsRunning)
	assert.Contains(t, status.LastError, "boom")
}

func TestRegisterRefresh(t *testing.T) {
	config := common.SchedulerConfig{Schedule: "0 2 * * *", WindowDays: []int{30, 180}}

	ok := &fakeRefresher{summary: &insights.RefreshSummary{Users: 2, Generated: 4, Failed: map[string]error{}}}
	s := NewService(arbor.NewLogger())
	require.NoError(t, s.RegisterRefresh(config, ok))
	require.NoError(t, s.RunJob(RefreshJobName))
	assert.Equal(t, [][]int{{30, 180}}, ok.windows)

	partial := &fakeRefresher{summary: &insights.RefreshSummary{
		Users:     2,
		Generated: 3,
		Failed:    map[string]error{"user_b/30": errors.New("no accounts")},
	}}
	s = NewService(arbor.NewLogger())
	require.NoError(t, s.RegisterRefresh(config, partial))
	assert.EqualError(t, s.RunJob(RefreshJobName), "1 of 4 refreshes failed")

	failing := &fakeRefresher{err: errors.New("list failed")}
	s = NewService(arbor.NewLogger())
	require.NoError(t, s.RegisterRefresh(config, failing))
	assert.EqualError(t, s.RunJob(RefreshJobName), "list failed")
}

func TestStartStop(t *testing.T) {
	s := NewService(arbor.NewLogger())
	ran := make(chan struct{}, 1)
	var jobCtx context.Context
	require.NoError(t, s.RegisterJob("nightly", "0 2 * * *", "", func(ctx context.Context) error {
		jobCtx = ctx
		ran <- struct{}{}
		return nil
	}))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())

	statuses := s.GetAllJobStatuses()
	require.Len(t, statuses, 1)
	require.NotNil(t, statuses[0].NextRun)
	assert.True(t, statuses[0].NextRun.After(time.Now()))

	require.NoError(t, s.TriggerJob("nightly"))
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("triggered job did not run")
	}
	assert.Error(t, s.TriggerJob("missing"))

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.Error(t, jobCtx.Err())
	assert.NoError(t, s.Stop())
}
