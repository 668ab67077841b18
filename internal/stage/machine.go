// Package stage implements the linear stage state machine.
package stage

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/session"
	"github.com/fyrsmithlabs/vault/internal/view"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Stage numbers.
const (
	Gate         = 1
	Memory       = 2
	Catch        = 3
	Intermission = 4
	Dashboard    = 5
)

// Name returns a label for stage n.
func Name(n int) string {
	switch n {
	case Gate:
		return "gate"
	case Memory:
		return "memory"
	case Catch:
		return "catch"
	case Intermission:
		return "intermission"
	case Dashboard:
		return "dashboard"
	}
	return fmt.Sprintf("stage-%d", n)
}

// Scene is the behaviour attached to one stage. Enter runs the stage's entry
// action; Exit cancels every timer the scene started.
type Scene interface {
	Enter(ctx context.Context) error
	Exit()
}

// Hook observes completed transitions. from is 0 for the initial entry.
type Hook func(ctx context.Context, from, to int)

// Machine owns the session State and moves it through the stages.
type Machine struct {
	state   *session.State
	store   session.Store
	view    view.View
	scenes  map[int]Scene
	hooks   []Hook
	metrics *Metrics
	tracer  trace.Tracer

	started       bool
	transitioning bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(mc *Machine) { mc.metrics = m }
}

// WithTracer sets the tracer used for the stage.advance span.
func WithTracer(t trace.Tracer) Option {
	return func(mc *Machine) { mc.tracer = t }
}

// NewMachine creates a Machine over a restored session State.
func NewMachine(state *session.State, store session.Store, v view.View, opts ...Option) *Machine {
	m := &Machine{
		state:  state,
		store:  store,
		view:   v,
		scenes: make(map[int]Scene),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tracer == nil {
		m.tracer = otel.Tracer(InstrumentationName)
	}
	return m
}

// Register attaches the scene for stage n. Stages without a scene only
// toggle visibility.
func (m *Machine) Register(n int, s Scene) error {
	if !session.ValidStage(n) {
		return fmt.Errorf("%w: %d", ErrUnknownStage, n)
	}
	if _, ok := m.scenes[n]; ok {
		return fmt.Errorf("%w: %d", ErrAlreadyRegistered, n)
	}
	m.scenes[n] = s
	return nil
}

// OnTransition registers a hook run after every completed transition.
func (m *Machine) OnTransition(h Hook) {
	m.hooks = append(m.hooks, h)
}

// State returns the session state the machine owns.
func (m *Machine) State() *session.State {
	return m.state
}

// Current returns the current stage.
func (m *Machine) Current() int {
	return m.state.Stage
}

// Start enters the restored stage. It runs the same transition as
// AdvanceTo, without the forward-only check.
func (m *Machine) Start(ctx context.Context) error {
	if m.transitioning {
		return ErrTransitionInProgress
	}
	m.started = true
	return m.transition(ctx, 0, m.state.Stage)
}

// AdvanceTo moves to stage n. Only forward moves are accepted, and only one
// transition runs at a time.
func (m *Machine) AdvanceTo(ctx context.Context, n int) error {
	switch {
	case !m.started:
		return ErrNotStarted
	case !session.ValidStage(n):
		m.metrics.RecordRejected(ctx, "unknown")
		return fmt.Errorf("%w: %d", ErrUnknownStage, n)
	case m.transitioning:
		m.metrics.RecordRejected(ctx, "in_progress")
		return ErrTransitionInProgress
	case n <= m.state.Stage:
		m.metrics.RecordRejected(ctx, "backward")
		return fmt.Errorf("%w: %d to %d", ErrBackTransition, m.state.Stage, n)
	}

	from := m.state.Stage
	if s, ok := m.scenes[from]; ok {
		s.Exit()
	}
	return m.transition(ctx, from, n)
}

func (m *Machine) transition(ctx context.Context, from, to int) error {
	m.transitioning = true
	defer func() { m.transitioning = false }()

	ctx, span := m.tracer.Start(ctx, "stage.advance",
		trace.WithAttributes(attribute.Int("from", from), attribute.Int("to", to)))
	defer span.End()

	logger := logging.FromContext(ctx)

	for i := session.FirstStage; i <= session.LastStage; i++ {
		m.view.Hide(view.StageID(i))
	}
	m.view.Reveal(view.StageID(to))

	m.state.Stage = to
	if err := m.store.SaveStage(ctx, to); err != nil {
		logger.Warn(ctx, "persist stage failed", zap.Int("stage", to), zap.Error(err))
	}

	logger.Info(ctx, "stage entered", zap.Int("from", from), zap.Int("to", to), zap.String("name", Name(to)))

	var enterErr error
	if s, ok := m.scenes[to]; ok {
		if err := s.Enter(ctx); err != nil {
			enterErr = fmt.Errorf("enter %s: %w", Name(to), err)
			span.RecordError(enterErr)
			span.SetStatus(codes.Error, "scene entry failed")
			logger.Error(ctx, "stage entry failed", zap.Int("stage", to), zap.Error(err))
		}
	}

	m.metrics.RecordTransition(ctx, to)
	for _, h := range m.hooks {
		h(ctx, from, to)
	}
	return enterErr
}
