package timer

import (
	"container/heap"
	"time"
)

// Manual is a Scheduler driven explicitly by Advance. It is deterministic:
// timers due at the same instant fire in the order they were scheduled.
type Manual struct {
	now   time.Time
	seq   uint64
	queue timerQueue
}

// NewManual returns a Manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

type manualTimer struct {
	m        *Manual
	due      time.Time
	every    time.Duration
	seq      uint64
	f        func()
	index    int
	stopped  bool
	inFlight bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	if t.index >= 0 {
		heap.Remove(&t.m.queue, t.index)
		return true
	}
	// A recurring timer stopped from inside its own callback.
	return t.inFlight
}

// Now returns the manual clock.
func (m *Manual) Now() time.Time {
	return m.now
}

// AfterFunc schedules f once after d.
func (m *Manual) AfterFunc(d time.Duration, f func()) Handle {
	return m.schedule(d, 0, f)
}

// EveryFunc schedules f every d, first after d. A non-positive interval is
// treated as one nanosecond.
func (m *Manual) EveryFunc(d time.Duration, f func()) Handle {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.schedule(d, d, f)
}

func (m *Manual) schedule(d, every time.Duration, f func()) *manualTimer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, due: m.now.Add(d), every: every, seq: m.seq, f: f, index: -1}
	heap.Push(&m.queue, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that falls due in
// order. Timers scheduled by callbacks fire too if they fall inside the
// window.
func (m *Manual) Advance(d time.Duration) {
	end := m.now.Add(d)
	for len(m.queue) > 0 && !m.queue[0].due.After(end) {
		t := heap.Pop(&m.queue).(*manualTimer)
		m.now = t.due
		if t.every > 0 {
			t.inFlight = true
			t.f()
			t.inFlight = false
			if !t.stopped {
				m.seq++
				t.seq = m.seq
				t.due = t.due.Add(t.every)
				heap.Push(&m.queue, t)
			}
			continue
		}
		t.stopped = true
		t.f()
	}
	m.now = end
}

// Pending returns the number of scheduled timers.
func (m *Manual) Pending() int {
	return len(m.queue)
}

type timerQueue []*manualTimer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*manualTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
