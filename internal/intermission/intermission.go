// Package intermission types a short message between the games and the
// dashboard, then moves on by itself.
package intermission

import (
	"context"

	"github.com/fyrsmithlabs/vault/internal/config"
	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/timer"
	"github.com/fyrsmithlabs/vault/internal/view"
)

// Scene is stage 4.
type Scene struct {
	cfg   config.IntermissionConfig
	view  view.View
	sched timer.Scheduler
	next  func()

	text   []rune
	typed  int
	timers timer.Group
}

// NewScene creates the intermission. next requests stage 5.
func NewScene(cfg config.IntermissionConfig, v view.View, sched timer.Scheduler, next func()) *Scene {
	return &Scene{
		cfg:   cfg,
		view:  v,
		sched: sched,
		next:  next,
		text:  []rune(cfg.Text),
	}
}

// Enter clears the text and starts typing one rune per interval. After the
// last rune it waits for the hold and calls next.
func (s *Scene) Enter(ctx context.Context) error {
	s.timers.StopAll()
	s.typed = 0
	s.view.SetText(view.IntermissionText, "")
	logging.FromContext(ctx).Debug(ctx, "intermission started")

	if len(s.text) == 0 {
		s.hold()
		return nil
	}

	var typer timer.Handle
	typer = s.timers.Add(s.sched.EveryFunc(s.cfg.CharInterval.Duration(), func() {
		s.typed++
		s.view.SetText(view.IntermissionText, string(s.text[:s.typed]))
		if s.typed >= len(s.text) {
			typer.Stop()
			s.hold()
		}
	}))
	return nil
}

func (s *Scene) hold() {
	s.timers.Add(s.sched.AfterFunc(s.cfg.Hold.Duration(), s.next))
}

// Exit cancels typing and the pending advance.
func (s *Scene) Exit() {
	s.timers.StopAll()
}

// Done reports whether the whole text has been typed.
func (s *Scene) Done() bool {
	return s.typed >= len(s.text)
}
