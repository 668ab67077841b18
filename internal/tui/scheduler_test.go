package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_AfterFuncFiresOnce(t *testing.T) {
	s := NewScheduler()
	calls := 0
	h := s.AfterFunc(10*time.Millisecond, func() { calls++ })

	assert.Equal(t, 1, s.Active())
	assert.NotNil(t, s.Flush())
	assert.Nil(t, s.Flush(), "flush drains pending ticks")

	s.Fire(timerMsg{id: 1})
	s.Fire(timerMsg{id: 1})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Active())
	assert.False(t, h.Stop())
}

func TestScheduler_StoppedTimerIsDropped(t *testing.T) {
	s := NewScheduler()
	calls := 0
	h := s.AfterFunc(time.Second, func() { calls++ })

	assert.True(t, h.Stop())
	s.Fire(timerMsg{id: 1})
	assert.Zero(t, calls)
}

func TestScheduler_EveryFuncRearms(t *testing.T) {
	s := NewScheduler()
	calls := 0
	s.EveryFunc(50*time.Millisecond, func() { calls++ })
	s.Flush()

	s.Fire(timerMsg{id: 1})
	assert.NotNil(t, s.Flush(), "recurring timer armed again")
	s.Fire(timerMsg{id: 1})
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, s.Active())
}

func TestScheduler_EveryFuncStopInsideCallback(t *testing.T) {
	s := NewScheduler()
	calls := 0
	var h interface{ Stop() bool }
	h = s.EveryFunc(50*time.Millisecond, func() {
		calls++
		h.Stop()
	})
	s.Flush()

	s.Fire(timerMsg{id: 1})
	assert.Nil(t, s.Flush())
	assert.Equal(t, 0, s.Active())
	assert.Equal(t, 1, calls)
}

func TestScheduler_Now(t *testing.T) {
	at := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
	s := NewScheduler()
	s.now = func() time.Time { return at }
	assert.Equal(t, at, s.Now())
}
