package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betting-tracker/internal/service"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) RefreshAll(context.Context) (service.RefreshResult, error) {
	r.calls.Add(1)
	return service.RefreshResult{Refreshed: 1}, r.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(&countingRefresher{}, quietLogger())

	assert.Error(t, s.Start(), "no jobs scheduled")
	assert.Error(t, s.ScheduleStatsRefresh("not a cron line"))

	require.NoError(t, s.ScheduleStatsRefresh("0 */6 * * *"))
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleStatsRefresh("@hourly"), "jobs cannot be added while running")

	next := s.NextRun()
	assert.False(t, next.IsZero())
	assert.True(t, next.After(time.Now()))

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.True(t, s.NextRun().IsZero())
	assert.NoError(t, s.Stop())
}

func TestSchedulerRunsRefresh(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("database down")}
	s := NewScheduler(refresher, quietLogger())

	require.NoError(t, s.ScheduleStatsRefresh("@every 1s"))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond,
		"a failing run is logged and the job stays scheduled")
}
