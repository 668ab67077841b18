package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fyrsmithlabs/vault/internal/timer"
)

// timerMsg is delivered when a scheduled tea.Tick fires.
type timerMsg struct {
	id uint64
	at time.Time
}

// Scheduler implements timer.Scheduler on top of tea.Tick. Callbacks run
// inside Update when their tick message arrives, so they share the event
// goroutine with every other handler. Ticks for stopped timers are dropped.
type Scheduler struct {
	now     func() time.Time
	seq     uint64
	timers  map[uint64]*scheduled
	pending []tea.Cmd
}

type scheduled struct {
	s     *Scheduler
	id    uint64
	every time.Duration
	f     func()
}

func (t *scheduled) Stop() bool {
	if _, ok := t.s.timers[t.id]; !ok {
		return false
	}
	delete(t.s.timers, t.id)
	return true
}

// NewScheduler creates a Scheduler reading the wall clock.
func NewScheduler() *Scheduler {
	return &Scheduler{now: time.Now, timers: make(map[uint64]*scheduled)}
}

// Now implements timer.Scheduler.
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// AfterFunc implements timer.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) timer.Handle {
	return s.add(d, 0, f)
}

// EveryFunc implements timer.Scheduler.
func (s *Scheduler) EveryFunc(d time.Duration, f func()) timer.Handle {
	if d <= 0 {
		d = time.Millisecond
	}
	return s.add(d, d, f)
}

func (s *Scheduler) add(d, every time.Duration, f func()) *scheduled {
	s.seq++
	t := &scheduled{s: s, id: s.seq, every: every, f: f}
	s.timers[t.id] = t
	s.arm(t.id, d)
	return t
}

func (s *Scheduler) arm(id uint64, d time.Duration) {
	s.pending = append(s.pending, tea.Tick(d, func(at time.Time) tea.Msg {
		return timerMsg{id: id, at: at}
	}))
}

// Fire runs the callback for msg. A recurring timer is re-armed unless its
// callback stopped it.
func (s *Scheduler) Fire(msg timerMsg) {
	t, ok := s.timers[msg.id]
	if !ok {
		return
	}
	if t.every == 0 {
		delete(s.timers, t.id)
		t.f()
		return
	}
	t.f()
	if _, still := s.timers[t.id]; still {
		s.arm(t.id, t.every)
	}
}

// Flush returns the ticks armed since the last Flush as one command.
func (s *Scheduler) Flush() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

// Active returns the number of live timers.
func (s *Scheduler) Active() int {
	return len(s.timers)
}
