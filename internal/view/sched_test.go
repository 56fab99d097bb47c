package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueueScheduler(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := NewQueueScheduler(clock.Now)

	var ran []string
	s.After(300*time.Millisecond, func() { ran = append(ran, "late") })
	s.After(100*time.Millisecond, func() { ran = append(ran, "first") })
	s.After(100*time.Millisecond, func() { ran = append(ran, "second") })
	canceled := s.After(50*time.Millisecond, func() { ran = append(ran, "canceled") })

	assert.True(t, canceled.Cancel())
	assert.False(t, canceled.Cancel())
	assert.Equal(t, 3, s.Pending())

	next, ok := s.Next()
	assert.True(t, ok)
	assert.Equal(t, clock.now.Add(100*time.Millisecond), next)

	assert.Zero(t, s.RunDue())
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 2, s.RunDue())
	assert.Equal(t, []string{"first", "second"}, ran)

	assert.Equal(t, 1, s.Flush())
	assert.Equal(t, []string{"first", "second", "late"}, ran)

	_, ok = s.Next()
	assert.False(t, ok)
}

func TestQueueSchedulerCallbackSchedules(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := NewQueueScheduler(clock.Now)

	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			s.After(0, tick)
		}
	}
	s.After(0, tick)

	assert.Equal(t, 3, s.RunDue())
	assert.Equal(t, 3, count)
}

func TestQueueSchedulerTaskDoneCannotCancel(t *testing.T) {
	s := NewQueueScheduler(nil)
	task := s.After(0, func() {})
	assert.Equal(t, 1, s.Flush())
	assert.False(t, task.Cancel())
}
