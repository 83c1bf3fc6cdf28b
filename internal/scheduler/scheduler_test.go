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

	"github.com/mistward/paperfuse/internal/config"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNextWait(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	t.Run("interval mode returns the interval", func(t *testing.T) {
		s := New(config.ScheduleConfig{Interval: 6 * time.Hour}, testLogger())

		wait, err := s.nextWait(now)

		require.NoError(t, err)
		assert.Equal(t, 6*time.Hour, wait)
	})

	t.Run("zero interval defaults to daily", func(t *testing.T) {
		s := New(config.ScheduleConfig{}, testLogger())

		wait, err := s.nextWait(now)

		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, wait)
	})

	t.Run("at later today", func(t *testing.T) {
		s := New(config.ScheduleConfig{At: "15:04"}, testLogger())

		wait, err := s.nextWait(now)

		require.NoError(t, err)
		assert.Equal(t, 5*time.Hour+4*time.Minute, wait)
	})

	t.Run("at earlier today rolls to tomorrow", func(t *testing.T) {
		s := New(config.ScheduleConfig{At: "09:30"}, testLogger())

		wait, err := s.nextWait(now)

		require.NoError(t, err)
		assert.Equal(t, 23*time.Hour+30*time.Minute, wait)
	})

	t.Run("at overrides interval", func(t *testing.T) {
		s := New(config.ScheduleConfig{Interval: time.Minute, At: "15:04"}, testLogger())

		wait, err := s.nextWait(now)

		require.NoError(t, err)
		assert.Equal(t, 5*time.Hour+4*time.Minute, wait)
	})

	t.Run("malformed at is an error", func(t *testing.T) {
		s := New(config.ScheduleConfig{At: "25:99"}, testLogger())

		_, err := s.nextWait(now)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "schedule.at")
	})
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	s := New(config.ScheduleConfig{Interval: 5 * time.Millisecond}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var runs atomic.Int32
	err := s.Run(ctx, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, runs.Load(), int32(2), "loop should have fired repeatedly")
}

func TestRun_TaskFailureKeepsLooping(t *testing.T) {
	s := New(config.ScheduleConfig{Interval: 5 * time.Millisecond}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	err := s.Run(ctx, func(context.Context) error {
		if runs.Add(1) >= 3 {
			cancel()
		}
		return errors.New("pass blew up")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, runs.Load(), int32(3), "failures must not stop the schedule")
}

func TestRun_MalformedScheduleStopsImmediately(t *testing.T) {
	s := New(config.ScheduleConfig{At: "later"}, testLogger())

	err := s.Run(context.Background(), func(context.Context) error {
		t.Fatal("task must not run with a malformed schedule")
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule.at")
}
