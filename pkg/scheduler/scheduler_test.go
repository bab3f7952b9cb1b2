package scheduler

import (
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	return NewScheduler(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestSchedule_ZeroDelayRunsInline(t *testing.T) {
	s := newTestScheduler()

	ran := false
	handle := s.Schedule("wf-1", 0, func() { ran = true })

	assert.True(t, ran, "zero-delay task must run before Schedule returns")
	assert.Nil(t, handle)
	assert.Equal(t, 0, s.PendingCount())
}

func TestSchedule_DelayedTaskFires(t *testing.T) {
	s := newTestScheduler()

	var ran atomic.Bool

	handle := s.Schedule("wf-1", 10*time.Millisecond, func() { ran.Store(true) })
	require.NotNil(t, handle)
	assert.False(t, ran.Load(), "delayed task must not block the caller")
	assert.Equal(t, 1, s.PendingCount())

	s.Wait()
	assert.True(t, ran.Load())
	assert.Equal(t, 0, s.PendingCount())
}

func TestHandle_Cancel(t *testing.T) {
	s := newTestScheduler()

	var ran atomic.Bool

	handle := s.Schedule("wf-1", time.Hour, func() { ran.Store(true) })
	assert.True(t, handle.Cancel())
	assert.False(t, handle.Cancel(), "second cancel reports nothing stopped")

	s.Wait()
	assert.False(t, ran.Load())
	assert.Equal(t, 0, s.PendingCount())
}

func TestCancelGroup(t *testing.T) {
	s := newTestScheduler()

	var count atomic.Int32

	s.Schedule("wf-1", time.Hour, func() { count.Add(1) })
	s.Schedule("wf-1", time.Hour, func() { count.Add(1) })
	s.Schedule("wf-2", 5*time.Millisecond, func() { count.Add(1) })

	assert.Equal(t, 2, s.CancelGroup("wf-1"))

	s.Wait()
	assert.Equal(t, int32(1), count.Load(), "only the other group's task runs")
}

func TestCancelGroup_Empty(t *testing.T) {
	s := newTestScheduler()

	assert.Equal(t, 0, s.CancelGroup("nothing-here"))
}

func TestStop_DropsNewSubmissions(t *testing.T) {
	s := newTestScheduler()

	var ran atomic.Bool

	s.Schedule("wf-1", time.Hour, func() { ran.Store(true) })
	s.Stop()

	handle := s.Schedule("wf-2", time.Minute, func() { ran.Store(true) })
	assert.Nil(t, handle)

	s.Wait()
	assert.False(t, ran.Load())
	assert.Equal(t, 0, s.PendingCount())
}
