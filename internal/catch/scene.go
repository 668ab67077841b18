package catch

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/fyrsmithlabs/vault/internal/config"
	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/session"
	"github.com/fyrsmithlabs/vault/internal/timer"
	"github.com/fyrsmithlabs/vault/internal/view"
	"go.uber.org/zap"
)

// Phase is the game lifecycle.
type Phase int

const (
	Idle Phase = iota
	Countdown
	Active
	Finished
)

func (p Phase) String() string {
	switch p {
	case Countdown:
		return "countdown"
	case Active:
		return "active"
	case Finished:
		return "finished"
	}
	return "idle"
}

// Scene is stage 3. State.GameActive is the frame loop's running flag: each
// frame re-schedules itself only while it is set.
type Scene struct {
	cfg     config.CatchConfig
	view    view.View
	sched   timer.Scheduler
	state   *session.State
	rng     *rand.Rand
	engine  *Engine
	metrics *Metrics
	next    func()

	ctx       context.Context
	phase     Phase
	count     int
	countdown timer.Handle
	frame     timer.Handle
}

// SceneOption configures a Scene.
type SceneOption func(*Scene)

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) SceneOption {
	return func(s *Scene) { s.metrics = m }
}

// NewScene creates the catch stage for a play area width units wide. next
// requests stage 4 once the victory modal is confirmed.
func NewScene(cfg config.CatchConfig, v view.View, sched timer.Scheduler, state *session.State, rng *rand.Rand, width float64, next func(), opts ...SceneOption) *Scene {
	s := &Scene{
		cfg:   cfg,
		view:  v,
		sched: sched,
		state: state,
		rng:   rng,
		next:  next,
		ctx:   context.Background(),
	}
	s.engine = NewEngine(width, cfg.Height, cfg.PaddleWidth, cfg.PaddleHeight, cfg.PaddleOffset, cfg.VictoryScore, rng)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the physics for rendering and input.
func (s *Scene) Engine() *Engine { return s.engine }

// Phase returns the lifecycle phase.
func (s *Scene) Phase() Phase { return s.phase }

// Enter resets the game and starts the countdown.
func (s *Scene) Enter(ctx context.Context) error {
	s.ctx = ctx
	s.halt()
	w, _ := s.engine.Size()
	s.engine.Reset(w)
	s.updateScore()

	s.phase = Countdown
	s.count = s.cfg.CountdownFrom
	s.countdown = s.sched.EveryFunc(s.cfg.CountdownStep.Duration(), s.tickCountdown)
	logging.FromContext(ctx).Debug(ctx, "catch countdown started", zap.Int("from", s.count))
	return nil
}

// Exit stops the countdown and the frame loop.
func (s *Scene) Exit() {
	s.halt()
	if s.phase != Finished {
		s.phase = Idle
	}
}

func (s *Scene) halt() {
	s.state.GameActive = false
	s.countdown = timer.Stop(s.countdown)
	s.frame = timer.Stop(s.frame)
}

func (s *Scene) tickCountdown() {
	if s.count <= 0 {
		s.countdown = timer.Stop(s.countdown)
		s.view.CloseMessage()
		s.phase = Active
		s.state.GameActive = true
		s.scheduleFrame()
		logging.FromContext(s.ctx).Info(s.ctx, "catch game started")
		return
	}
	s.view.ShowMessage(view.Message{
		Text:  fmt.Sprintf("Game starting in...\n\n%d", s.count),
		Emoji: "🎮",
	})
	s.count--
}

func (s *Scene) scheduleFrame() {
	s.frame = s.sched.AfterFunc(s.cfg.FrameInterval.Duration(), s.runFrame)
}

func (s *Scene) runFrame() {
	s.frame = nil
	if !s.state.GameActive {
		return
	}
	s.Step()
	if s.state.GameActive {
		s.scheduleFrame()
	}
}

// Step runs one frame while the game is active and applies its effects to
// the view.
func (s *Scene) Step() StepResult {
	if s.phase != Active {
		return StepResult{}
	}
	res := s.engine.Step()
	s.metrics.RecordStep(s.ctx, res)
	if len(res.Caught) > 0 {
		s.updateScore()
	}
	if res.Victory {
		s.win()
	}
	return res
}

func (s *Scene) win() {
	score := s.engine.Score()
	s.phase = Finished
	s.state.GameActive = false
	s.frame = timer.Stop(s.frame)
	s.metrics.RecordVictory(s.ctx, score)
	logging.FromContext(s.ctx).Info(s.ctx, "catch game won", zap.Int("score", score))

	msg := s.cfg.VictoryMessages[s.rng.IntN(len(s.cfg.VictoryMessages))]
	s.view.ShowMessage(view.Message{
		Text:      fmt.Sprintf("You Scored %d!\n\n%s", score, msg),
		Emoji:     "🏆",
		Button:    "Continue",
		OnConfirm: s.next,
	})
}

// MoveTo positions the paddle under pointer x.
func (s *Scene) MoveTo(x float64) {
	s.engine.MoveTo(x)
}

// Nudge moves the paddle by dx.
func (s *Scene) Nudge(dx float64) {
	s.engine.Nudge(dx)
}

// Resize follows a change of the play-area width.
func (s *Scene) Resize(width float64) {
	s.engine.Resize(width)
}

func (s *Scene) updateScore() {
	s.view.SetText(view.ScoreDisplay, fmt.Sprintf("Score: %d / %d", s.engine.Score(), s.engine.VictoryScore()))
}
