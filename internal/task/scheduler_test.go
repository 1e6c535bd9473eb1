package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTask struct {
	name string
	err  error
	runs chan struct{}
}

func newRecordingTask(name string, err error) *recordingTask {
	return &recordingTask{name: name, err: err, runs: make(chan struct{}, 4)}
}

func (r *recordingTask) Name() string { return r.name }

func (r *recordingTask) Run(ctx context.Context) error {
	r.runs <- struct{}{}
	return r.err
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := NewScheduler(SchedulerConfig{TaskTimeout: time.Second}, nil)
	require.NoError(t, err)
	return s
}

func TestSchedulerRegister(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t)
	s.Start()
	t.Cleanup(func() { _ = s.Shutdown() })

	require.NoError(t, s.Register("15 3 * * *", newRecordingTask("cleanup", nil)))

	err := s.Register("15 3 * * *", newRecordingTask("cleanup", nil))
	assert.ErrorContains(t, err, "already registered")

	err = s.Register("not a cron", newRecordingTask("broken", nil))
	assert.Error(t, err)

	assert.Error(t, s.Register("* * * * *", nil))
}

func TestSchedulerRunNow(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t)

	ok := newRecordingTask("ok", nil)
	failing := newRecordingTask("failing", errors.New("boom"))
	require.NoError(t, s.Register("0 0 1 1 *", ok))
	require.NoError(t, s.Register("0 0 1 1 *", failing))

	s.Start()
	t.Cleanup(func() { assert.NoError(t, s.Shutdown()) })

	require.NoError(t, s.RunNow("ok"))
	require.NoError(t, s.RunNow("failing"))

	for _, task := range []*recordingTask{ok, failing} {
		select {
		case <-task.runs:
		case <-time.After(5 * time.Second):
			t.Fatalf("task %s did not run", task.name)
		}
	}

	assert.ErrorIs(t, s.RunNow("missing"), ErrUnknownTask)
}

func TestSchedulerNextRun(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t)

	require.NoError(t, s.Register("15 3 * * *", newRecordingTask("cleanup", nil)))
	s.Start()
	t.Cleanup(func() { _ = s.Shutdown() })

	require.Eventually(t, func() bool {
		next, err := s.NextRun("cleanup")
		return err == nil && !next.IsZero()
	}, 5*time.Second, 10*time.Millisecond)

	next, err := s.NextRun("cleanup")
	require.NoError(t, err)
	assert.Equal(t, 3, next.UTC().Hour())
	assert.Equal(t, 15, next.UTC().Minute())

	_, err = s.NextRun("missing")
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestSchedulerRunStopsWithContext(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
