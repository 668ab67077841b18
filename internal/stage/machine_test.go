package stage

import (
	"context"
	"errors"
	"testing"

	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/session"
	"github.com/fyrsmithlabs/vault/internal/telemetry"
	"github.com/fyrsmithlabs/vault/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap/zapcore"
)

type fakeScene struct {
	enters  int
	exits   int
	err     error
	onEnter func(ctx context.Context)
}

func (s *fakeScene) Enter(ctx context.Context) error {
	s.enters++
	if s.onEnter != nil {
		s.onEnter(ctx)
	}
	return s.err
}

func (s *fakeScene) Exit() { s.exits++ }

type failingStore struct {
	session.MemoryStore
}

func (f *failingStore) SaveStage(context.Context, int) error {
	return errors.New("disk full")
}

func newMachine(t *testing.T, store session.Store) (*Machine, *view.Recorder, map[int]*fakeScene) {
	t.Helper()
	rec := view.NewRecorder()
	st := session.Restore(context.Background(), store)
	m := NewMachine(st, store, rec)
	scenes := make(map[int]*fakeScene)
	for n := session.FirstStage; n <= session.LastStage; n++ {
		scenes[n] = &fakeScene{}
		require.NoError(t, m.Register(n, scenes[n]))
	}
	return m, rec, scenes
}

func TestMachine_StartEntersRestoredStage(t *testing.T) {
	m, rec, scenes := newMachine(t, session.NewMemoryStoreWith("3"))

	require.NoError(t, m.Start(context.Background()))

	assert.Equal(t, Catch, m.Current())
	assert.Equal(t, 1, scenes[Catch].enters)
	assert.Equal(t, 0, scenes[Gate].enters)
	assert.True(t, rec.Visible(view.StageID(3)))
	assert.False(t, rec.Visible(view.StageID(1)))
}

func TestMachine_StartDefaultsToGate(t *testing.T) {
	m, rec, scenes := newMachine(t, session.NewMemoryStoreWith("banana"))
	require.NoError(t, m.Start(context.Background()))
	assert.Equal(t, Gate, m.Current())
	assert.Equal(t, 1, scenes[Gate].enters)
	assert.True(t, rec.Visible(view.StageID(1)))
}

func TestMachine_AdvancePersistsAndReveals(t *testing.T) {
	store := session.NewMemoryStore()
	m, rec, scenes := newMachine(t, store)
	ctx := context.Background()
	require.NoError(t, m.Start(ctx))

	require.NoError(t, m.AdvanceTo(ctx, Memory))

	assert.Equal(t, 1, scenes[Gate].exits)
	assert.Equal(t, 1, scenes[Memory].enters)
	assert.Equal(t, Memory, m.State().Stage)
	for n := 1; n <= 5; n++ {
		assert.Equal(t, n == Memory, rec.Visible(view.StageID(n)), "stage %d", n)
	}

	stored, ok, err := store.LoadStage(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Memory, stored)
}

func TestMachine_SkipForwardAllowed(t *testing.T) {
	m, _, scenes := newMachine(t, session.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.AdvanceTo(ctx, Dashboard))
	assert.Equal(t, 1, scenes[Dashboard].enters)
	assert.Equal(t, 0, scenes[Memory].enters)
}

func TestMachine_RejectsInvalidTransitions(t *testing.T) {
	m, _, scenes := newMachine(t, session.NewMemoryStoreWith("3"))
	ctx := context.Background()

	assert.ErrorIs(t, m.AdvanceTo(ctx, Intermission), ErrNotStarted)
	require.NoError(t, m.Start(ctx))

	tests := []struct {
		name string
		to   int
		want error
	}{
		{"backward", Memory, ErrBackTransition},
		{"same stage", Catch, ErrBackTransition},
		{"zero", 0, ErrUnknownStage},
		{"past the end", 6, ErrUnknownStage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, m.AdvanceTo(ctx, tt.to), tt.want)
			assert.Equal(t, Catch, m.Current())
		})
	}
	assert.Equal(t, 0, scenes[Catch].exits)
}

func TestMachine_ReentrantAdvanceRejected(t *testing.T) {
	m, _, scenes := newMachine(t, session.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, m.Start(ctx))

	var nested error
	scenes[Memory].onEnter = func(ctx context.Context) {
		nested = m.AdvanceTo(ctx, Catch)
	}

	require.NoError(t, m.AdvanceTo(ctx, Memory))
	assert.ErrorIs(t, nested, ErrTransitionInProgress)
	assert.Equal(t, Memory, m.Current())
	assert.Equal(t, 0, scenes[Catch].enters)

	require.NoError(t, m.AdvanceTo(ctx, Catch))
	assert.Equal(t, 1, scenes[Catch].enters)
}

func TestMachine_StoreFailureIsLoggedAndIgnored(t *testing.T) {
	tl := logging.NewTestLogger()
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	m, rec, scenes := newMachine(t, &failingStore{})
	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.AdvanceTo(ctx, Memory))

	assert.Equal(t, Memory, m.Current())
	assert.True(t, rec.Visible(view.StageID(Memory)))
	assert.Equal(t, 1, scenes[Memory].enters)
	tl.AssertLogged(t, zapcore.WarnLevel, "persist stage failed")
}

func TestMachine_EnterErrorIsReturned(t *testing.T) {
	m, _, scenes := newMachine(t, session.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, m.Start(ctx))

	scenes[Memory].err = errors.New("boom")
	err := m.AdvanceTo(ctx, Memory)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enter memory")
	assert.Equal(t, Memory, m.Current(), "the stage still changes")
}

func TestMachine_RegisterErrors(t *testing.T) {
	m := NewMachine(&session.State{Stage: 1}, session.NewMemoryStore(), view.NewRecorder())
	assert.ErrorIs(t, m.Register(0, &fakeScene{}), ErrUnknownStage)
	require.NoError(t, m.Register(Gate, &fakeScene{}))
	assert.ErrorIs(t, m.Register(Gate, &fakeScene{}), ErrAlreadyRegistered)
}

func TestMachine_HooksObserveTransitions(t *testing.T) {
	m, _, _ := newMachine(t, session.NewMemoryStore())
	ctx := context.Background()

	var seen [][2]int
	m.OnTransition(func(_ context.Context, from, to int) {
		seen = append(seen, [2]int{from, to})
	})

	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.AdvanceTo(ctx, Memory))
	assert.Equal(t, [][2]int{{0, Gate}, {Gate, Memory}}, seen)
}

func TestMachine_Telemetry(t *testing.T) {
	tel := telemetry.NewTestTelemetry()
	metrics, err := NewMetrics(tel.Meter(InstrumentationName))
	require.NoError(t, err)

	store := session.NewMemoryStore()
	rec := view.NewRecorder()
	m := NewMachine(session.Restore(context.Background(), store), store, rec,
		WithMetrics(metrics), WithTracer(tel.Tracer(InstrumentationName)))
	ctx := context.Background()

	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.AdvanceTo(ctx, Memory))
	_ = m.AdvanceTo(ctx, Gate)

	tel.AssertSpanExists(t, "stage.advance")
	assert.Equal(t, int64(1), tel.Counter(t, "vault.stage.transitions.total", attribute.Int("to", Memory)))
	assert.Equal(t, int64(1), tel.Counter(t, "vault.stage.transition.errors.total", attribute.String("reason", "backward")))
}

func TestName(t *testing.T) {
	assert.Equal(t, "gate", Name(Gate))
	assert.Equal(t, "dashboard", Name(Dashboard))
	assert.Equal(t, "stage-9", Name(9))
}
