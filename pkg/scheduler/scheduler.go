// Package scheduler provides delayed task submission with cancellable
// handles. Workflow delays and per-action delays go through here instead of
// raw timers so that deleting a workflow can cancel its pending work.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handle identifies one scheduled task and allows cancelling it before it
// fires. Cancel is a no-op once the task has started.
type Handle struct {
	id    string
	group string
	timer *time.Timer
	s     *Scheduler
}

// Cancel stops the task if it has not fired yet. Reports whether the task
// was prevented from running.
func (h *Handle) Cancel() bool {
	return h.s.cancel(h)
}

// Scheduler runs submitted functions after a delay. Zero-delay submissions
// execute inline, synchronously, before Schedule returns.
type Scheduler struct {
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]map[string]*Handle // group -> handle id -> handle
	wg      sync.WaitGroup
	stopped bool
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		logger:  logger.With("module", "scheduler"),
		pending: make(map[string]map[string]*Handle),
	}
}

// Schedule submits fn to run after delay, associated with a group (the
// owning workflow ID). A zero or negative delay runs fn inline and returns a
// nil handle.
func (s *Scheduler) Schedule(group string, delay time.Duration, fn func()) *Handle {
	if delay <= 0 {
		fn()

		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		s.logger.Warn("Scheduler is stopped, dropping task", "group", group)

		return nil
	}

	handle := &Handle{
		id:    uuid.New().String(),
		group: group,
		s:     s,
	}

	s.wg.Add(1)
	handle.timer = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		s.remove(handle)
		fn()
	})

	if s.pending[group] == nil {
		s.pending[group] = make(map[string]*Handle)
	}

	s.pending[group][handle.id] = handle

	return handle
}

// CancelGroup cancels every pending task in the group. Tasks whose timers
// have already fired run to completion. Returns the number of tasks
// cancelled.
func (s *Scheduler) CancelGroup(group string) int {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.pending[group]))

	for _, handle := range s.pending[group] {
		handles = append(handles, handle)
	}
	s.mu.Unlock()

	cancelled := 0

	for _, handle := range handles {
		if s.cancel(handle) {
			cancelled++
		}
	}

	return cancelled
}

// Stop cancels all pending tasks and refuses new delayed submissions.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	groups := make([]string, 0, len(s.pending))

	for group := range s.pending {
		groups = append(groups, group)
	}
	s.mu.Unlock()

	for _, group := range groups {
		s.CancelGroup(group)
	}
}

// Wait blocks until every task whose timer already fired has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// PendingCount reports the number of tasks not yet fired, across all groups.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, group := range s.pending {
		count += len(group)
	}

	return count
}

func (s *Scheduler) cancel(h *Handle) bool {
	if h == nil || h.timer == nil {
		return false
	}

	stopped := h.timer.Stop()
	if stopped {
		s.wg.Done()
	}

	s.remove(h)

	return stopped
}

func (s *Scheduler) remove(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if group, ok := s.pending[h.group]; ok {
		delete(group, h.id)

		if len(group) == 0 {
			delete(s.pending, h.group)
		}
	}
}
