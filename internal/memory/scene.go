package memory

import (
	"context"
	"math/rand/v2"

	"github.com/fyrsmithlabs/vault/internal/config"
	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/timer"
	"github.com/fyrsmithlabs/vault/internal/view"
	"go.uber.org/zap"
)

// Scene is stage 2. Finishing the board reveals the next action; the
// player acknowledges it before the stage changes.
type Scene struct {
	cfg    config.MemoryConfig
	view   view.View
	engine *Engine
	next   func()
	ctx    context.Context
}

// NewScene creates the memory stage. next requests stage 3.
func NewScene(cfg config.MemoryConfig, v view.View, sched timer.Scheduler, rng *rand.Rand, next func()) *Scene {
	s := &Scene{cfg: cfg, view: v, next: next, ctx: context.Background()}
	s.engine = NewEngine(cfg.Symbols, cfg.MismatchDelay.Duration(), cfg.CompleteDelay.Duration(), sched, rng, s.completed)
	return s
}

// Engine exposes the board for rendering.
func (s *Scene) Engine() *Engine { return s.engine }

// Enter deals a new board.
func (s *Scene) Enter(ctx context.Context) error {
	s.ctx = ctx
	s.view.Hide(view.NextStage2)
	s.engine.Deal()
	logging.FromContext(ctx).Debug(ctx, "memory board dealt", zap.Int("cards", 2*s.engine.TotalPairs()))
	return nil
}

// Exit cancels the board's timers.
func (s *Scene) Exit() {
	s.engine.Stop()
}

// Flip forwards a card selection to the engine.
func (s *Scene) Flip(i int) FlipResult {
	r := s.engine.Flip(i)
	if r != Ignored {
		logging.FromContext(s.ctx).Trace(s.ctx, "memory flip", zap.Int("index", i), zap.Stringer("result", r))
	}
	return r
}

// Next activates the revealed next action. It reports false before the
// board is complete.
func (s *Scene) Next() bool {
	if !s.engine.Complete() {
		return false
	}
	s.view.ShowMessage(view.Message{
		Text:      s.cfg.CompletionMessage,
		Emoji:     "🃏",
		Button:    "Next Game",
		OnConfirm: s.next,
	})
	return true
}

func (s *Scene) completed() {
	logging.FromContext(s.ctx).Info(s.ctx, "memory board complete", zap.Int("pairs", s.engine.Pairs()))
	s.view.Reveal(view.NextStage2)
}
