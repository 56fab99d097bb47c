package view

import (
	"sort"
	"time"
)

// Scheduler runs fire-and-forget callbacks after a delay.
type Scheduler interface {
	After(d time.Duration, fn func()) Task
}

// Task is a scheduled callback.
type Task interface {
	// Cancel prevents the callback from running. It reports whether it was still pending.
	Cancel() bool
}

// QueueScheduler holds callbacks until the host loop runs them with RunDue.
// Callbacks therefore run on the host's goroutine, between two commands.
// It is not safe for concurrent use.
type QueueScheduler struct {
	now   func() time.Time
	seq   int
	queue []*queuedTask
}

type queuedTask struct {
	due      time.Time
	seq      int
	fn       func()
	canceled bool
	done     bool
}

func (t *queuedTask) Cancel() bool {
	if t.done || t.canceled {
		return false
	}
	t.canceled = true
	return true
}

// NewQueueScheduler creates a scheduler reading time from now, or time.Now when nil.
func NewQueueScheduler(now func() time.Time) *QueueScheduler {
	if now == nil {
		now = time.Now
	}
	return &QueueScheduler{now: now}
}

// After implements Scheduler.
func (s *QueueScheduler) After(d time.Duration, fn func()) Task {
	s.seq++
	t := &queuedTask{due: s.now().Add(d), seq: s.seq, fn: fn}
	s.queue = append(s.queue, t)
	sort.SliceStable(s.queue, func(i, j int) bool {
		if s.queue[i].due.Equal(s.queue[j].due) {
			return s.queue[i].seq < s.queue[j].seq
		}
		return s.queue[i].due.Before(s.queue[j].due)
	})
	return t
}

// RunDue runs every pending callback whose delay has elapsed and returns how many ran.
func (s *QueueScheduler) RunDue() int {
	return s.run(func(t *queuedTask) bool { return !t.due.After(s.now()) })
}

// Flush runs every pending callback regardless of its due time.
func (s *QueueScheduler) Flush() int {
	return s.run(func(*queuedTask) bool { return true })
}

// Next returns the due time of the earliest pending callback.
func (s *QueueScheduler) Next() (time.Time, bool) {
	s.compact()
	if len(s.queue) == 0 {
		return time.Time{}, false
	}
	return s.queue[0].due, true
}

// Pending returns the number of callbacks waiting to run.
func (s *QueueScheduler) Pending() int {
	s.compact()
	return len(s.queue)
}

func (s *QueueScheduler) run(ready func(*queuedTask) bool) int {
	ran := 0
	for {
		s.compact()
		if len(s.queue) == 0 || !ready(s.queue[0]) {
			return ran
		}
		t := s.queue[0]
		s.queue = s.queue[1:]
		t.done = true
		t.fn()
		ran++
	}
}

func (s *QueueScheduler) compact() {
	kept := s.queue[:0]
	for _, t := range s.queue {
		if !t.canceled {
			kept = append(kept, t)
		}
	}
	s.queue = kept
}
