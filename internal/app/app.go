// Package app assembles the stages from configuration and registers them on
// the stage machine.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/fyrsmithlabs/vault/internal/catch"
	"github.com/fyrsmithlabs/vault/internal/config"
	"github.com/fyrsmithlabs/vault/internal/dashboard"
	"github.com/fyrsmithlabs/vault/internal/gate"
	"github.com/fyrsmithlabs/vault/internal/intermission"
	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/memory"
	"github.com/fyrsmithlabs/vault/internal/session"
	"github.com/fyrsmithlabs/vault/internal/stage"
	"github.com/fyrsmithlabs/vault/internal/telemetry"
	"github.com/fyrsmithlabs/vault/internal/timer"
	"github.com/fyrsmithlabs/vault/internal/view"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrMissingDeps is returned by New when a required collaborator is nil.
var ErrMissingDeps = errors.New("view, scheduler and store are required")

// DefaultPlayWidth is the catch play-area width used until the terminal
// reports its size.
const DefaultPlayWidth = 400

// Deps are the collaborators the stages run against.
type Deps struct {
	View      view.View
	Scheduler timer.Scheduler
	Store     session.Store
	// Telemetry is optional; nil records on the global providers.
	Telemetry *telemetry.Telemetry
	// Rand is optional; nil seeds from catch.seed or the clock.
	Rand      *rand.Rand
	PlayWidth float64
}

// App is one assembled experience.
type App struct {
	Config       *config.Config
	State        *session.State
	Machine      *stage.Machine
	Gate         *gate.Scene
	Memory       *memory.Scene
	Catch        *catch.Scene
	Intermission *intermission.Scene
	Dashboard    *dashboard.Controller

	ctx   context.Context
	store session.Store
}

// New restores the session from deps.Store and builds every stage.
func New(ctx context.Context, cfg *config.Config, deps Deps) (*App, error) {
	if deps.View == nil || deps.Scheduler == nil || deps.Store == nil {
		return nil, ErrMissingDeps
	}
	rng := deps.Rand
	if rng == nil {
		rng = newRand(cfg.Catch.Seed)
	}
	width := deps.PlayWidth
	if width <= 0 {
		width = DefaultPlayWidth
	}

	var (
		meter  metric.Meter
		tracer trace.Tracer
	)
	if deps.Telemetry != nil {
		meter = deps.Telemetry.Meter(stage.InstrumentationName)
		tracer = deps.Telemetry.Tracer(stage.InstrumentationName)
	}
	stageMetrics, err := stage.NewMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("stage metrics: %w", err)
	}
	var catchMeter metric.Meter
	if deps.Telemetry != nil {
		catchMeter = deps.Telemetry.Meter(catch.InstrumentationName)
	}
	catchMetrics, err := catch.NewMetrics(catchMeter)
	if err != nil {
		return nil, fmt.Errorf("catch metrics: %w", err)
	}

	a := &App{
		Config: cfg,
		State:  session.Restore(ctx, deps.Store),
		ctx:    ctx,
		store:  deps.Store,
	}

	opts := []stage.Option{stage.WithMetrics(stageMetrics)}
	if tracer != nil {
		opts = append(opts, stage.WithTracer(tracer))
	}
	a.Machine = stage.NewMachine(a.State, deps.Store, deps.View, opts...)

	a.Gate = gate.NewScene(cfg.Gate, deps.View, deps.Scheduler.Now, a.advance(stage.Memory))
	a.Memory = memory.NewScene(cfg.Memory, deps.View, deps.Scheduler, rng, a.advance(stage.Catch))
	a.Catch = catch.NewScene(cfg.Catch, deps.View, deps.Scheduler, a.State, rng, width,
		a.advance(stage.Intermission), catch.WithMetrics(catchMetrics))
	a.Intermission = intermission.NewScene(cfg.Intermission, deps.View, deps.Scheduler, a.advance(stage.Dashboard))
	a.Dashboard = dashboard.NewController(cfg.Dashboard, deps.View, deps.Scheduler, a.State)

	scenes := map[int]stage.Scene{
		stage.Gate:         a.Gate,
		stage.Memory:       a.Memory,
		stage.Catch:        a.Catch,
		stage.Intermission: a.Intermission,
		stage.Dashboard:    a.Dashboard,
	}
	for n := session.FirstStage; n <= session.LastStage; n++ {
		if err := a.Machine.Register(n, scenes[n]); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func newRand(seed int64) *rand.Rand {
	if seed != 0 {
		return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	}
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
}

// advance returns the completion callback that requests stage n.
func (a *App) advance(n int) func() {
	return func() {
		if err := a.Machine.AdvanceTo(a.ctx, n); err != nil {
			logging.FromContext(a.ctx).Warn(a.ctx, "stage advance refused",
				zap.String("to", stage.Name(n)), zap.Error(err))
		}
	}
}

// Start enters the restored stage.
func (a *App) Start() error {
	return a.Machine.Start(a.ctx)
}

// Context returns the context the stages log with.
func (a *App) Context() context.Context {
	return a.ctx
}

// Close exits the current stage and releases the store.
func (a *App) Close() error {
	switch a.State.Stage {
	case stage.Gate:
		a.Gate.Exit()
	case stage.Memory:
		a.Memory.Exit()
	case stage.Catch:
		a.Catch.Exit()
	case stage.Intermission:
		a.Intermission.Exit()
	case stage.Dashboard:
		a.Dashboard.Exit()
	}
	return a.store.Close()
}
