package app

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/fyrsmithlabs/vault/internal/catch"
	"github.com/fyrsmithlabs/vault/internal/config"
	"github.com/fyrsmithlabs/vault/internal/dashboard"
	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/session"
	"github.com/fyrsmithlabs/vault/internal/stage"
	"github.com/fyrsmithlabs/vault/internal/telemetry"
	"github.com/fyrsmithlabs/vault/internal/timer"
	"github.com/fyrsmithlabs/vault/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type harness struct {
	app   *App
	clock *timer.Manual
	rec   *view.Recorder
	store *session.MemoryStore
	log   *logging.TestLogger
}

func newHarness(t *testing.T, store *session.MemoryStore) *harness {
	t.Helper()
	clock := timer.NewManual(time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC))
	rec := view.NewRecorder()
	log := logging.NewTestLogger()
	ctx := logging.WithLogger(context.Background(), log.Logger)
	a, err := New(ctx, config.Default(), Deps{
		View:      rec,
		Scheduler: clock,
		Store:     store,
		Telemetry: telemetry.NewTestTelemetry().Telemetry,
		Rand:      rand.New(rand.NewPCG(1, 2)),
	})
	require.NoError(t, err)
	require.NoError(t, a.Start())
	t.Cleanup(func() { _ = a.Close() })
	return &harness{app: a, clock: clock, rec: rec, store: store, log: log}
}

func (h *harness) stored(t *testing.T) int {
	t.Helper()
	n, ok, err := h.store.LoadStage(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	return n
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(context.Background(), config.Default(), Deps{})
	assert.ErrorIs(t, err, ErrMissingDeps)
}

func TestFlow_GateToCatch(t *testing.T) {
	h := newHarness(t, session.NewMemoryStore())
	ctx := context.Background()
	assert.Equal(t, stage.Gate, h.app.Machine.Current())
	assert.True(t, h.rec.Visible(view.StageID(1)))

	require.True(t, h.app.Gate.Submit(ctx, "10/08/24"))
	require.True(t, h.rec.Confirm())
	assert.Equal(t, stage.Memory, h.app.Machine.Current())
	assert.Equal(t, stage.Memory, h.stored(t))

	cards := h.app.Memory.Engine().Cards()
	pairs := make(map[string][]int)
	for i, c := range cards {
		pairs[c.Symbol] = append(pairs[c.Symbol], i)
	}
	for _, idx := range pairs {
		h.app.Memory.Flip(idx[0])
		h.app.Memory.Flip(idx[1])
	}
	h.clock.Advance(600 * time.Millisecond)
	require.True(t, h.app.Memory.Next())
	require.True(t, h.rec.Confirm())

	assert.Equal(t, stage.Catch, h.app.Machine.Current())
	assert.Equal(t, catch.Countdown, h.app.Catch.Phase())
	assert.Equal(t, "Score: 0 / 15", h.rec.Text(view.ScoreDisplay))

	h.clock.Advance(4 * time.Second)
	assert.True(t, h.app.State.GameActive)
}

func TestFlow_IntermissionAutoAdvancesToDashboard(t *testing.T) {
	h := newHarness(t, session.NewMemoryStoreWith("4"))
	assert.Equal(t, stage.Intermission, h.app.Machine.Current())

	text := config.Default().Intermission.Text
	h.clock.Advance(time.Duration(len([]rune(text))) * 60 * time.Millisecond)
	assert.Equal(t, text, h.rec.Text(view.IntermissionText))
	assert.Equal(t, stage.Intermission, h.app.Machine.Current())

	h.clock.Advance(2500 * time.Millisecond)
	assert.Equal(t, stage.Dashboard, h.app.Machine.Current())
	assert.Equal(t, dashboard.Memories, h.app.Dashboard.Current())
	assert.True(t, h.app.State.MemoriesViewed)
	assert.Equal(t, stage.Dashboard, h.stored(t))
}

func TestFlow_RestoredDashboardUnlocksLetter(t *testing.T) {
	h := newHarness(t, session.NewMemoryStoreWith("5"))
	d := h.app.Dashboard

	assert.ErrorIs(t, d.Open(dashboard.Letter), dashboard.ErrTabLocked)
	require.NoError(t, d.Open(dashboard.Stats))
	require.NoError(t, d.Open(dashboard.Portrait))
	require.NoError(t, d.Open(dashboard.Letter))
	require.True(t, d.Reply())
	assert.Equal(t, 1, h.rec.Celebrations())
}

func TestFlow_AdvanceRefusedIsLogged(t *testing.T) {
	h := newHarness(t, session.NewMemoryStoreWith("3"))
	// A stale completion from an earlier stage must not move the machine back.
	h.app.advance(stage.Memory)()
	assert.Equal(t, stage.Catch, h.app.Machine.Current())
	h.log.AssertLogged(t, zapcore.WarnLevel, "stage advance refused")
}

func TestClose_StopsActiveStageTimers(t *testing.T) {
	h := newHarness(t, session.NewMemoryStoreWith("3"))
	require.Positive(t, h.clock.Pending())
	require.NoError(t, h.app.Close())
	assert.Equal(t, 0, h.clock.Pending())
}
