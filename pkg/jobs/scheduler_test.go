package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSchedulerFiresEntries(t *testing.T) {
	var runs int32
	s := NewScheduler(SchedulerConfig{})
	_, err := s.Add("sweep", "@every 1s", func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	s.Start(context.Background())
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 1 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	_, err := s.Add("broken", "every now and then", func(ctx context.Context) error { return nil })
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestSchedulerRunOnceLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := NewScheduler(SchedulerConfig{Timeout: time.Second, Logger: zap.New(core)})

	err := s.RunOnce(context.Background(), "retention", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return errors.New("disk full")
	})
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("job failed").Len())
}

func TestSchedulerRecoversPanics(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := NewScheduler(SchedulerConfig{Logger: zap.New(core)})
	id, err := s.Add("explode", "@every 1h", func(ctx context.Context) error {
		panic("boom")
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() { s.cron.Entry(id).WrappedJob.Run() })
	assert.Equal(t, 1, logs.FilterMessage("cron: panic").Len())
}

func TestSchedulerStopCancelsRunContext(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	s.Start(context.Background())
	ctx := s.context()
	s.Stop()

	select {
	case <-ctx.Done():
	default:
		t.Fatal("run context still live after Stop")
	}
}
