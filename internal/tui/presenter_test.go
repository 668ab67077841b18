package tui

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/fyrsmithlabs/vault/internal/config"
	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/timer"
	"github.com/fyrsmithlabs/vault/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type fakePlayer struct {
	calls int
	err   error
}

func (f *fakePlayer) Play(context.Context) error {
	f.calls++
	return f.err
}

func newTestPresenter(t *testing.T, player Celebrator) (*Presenter, *timer.Manual, *logging.TestLogger) {
	t.Helper()
	clock := timer.NewManual(time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC))
	log := logging.NewTestLogger()
	ctx := logging.WithLogger(context.Background(), log.Logger)
	p := NewPresenter(ctx, config.Default().Dashboard, clock, player, rand.New(rand.NewPCG(1, 1)))
	return p, clock, log
}

func TestPresenter_Modal(t *testing.T) {
	p, _, _ := newTestPresenter(t, nil)

	p.ShowMessage(view.Message{Text: "Game starting in...\n\n3", Emoji: "🎮"})
	assert.False(t, p.Confirm(), "modal without a button cannot be confirmed")
	_, open := p.Modal()
	assert.True(t, open)

	p.CloseMessage()
	_, open = p.Modal()
	assert.False(t, open)

	p.ShowMessage(view.Message{Text: "first", Button: "Next", OnConfirm: func() {
		_, stillOpen := p.Modal()
		assert.False(t, stillOpen, "closed before the callback")
		p.ShowMessage(view.Message{Text: "second", Button: "Close"})
	}})
	require.True(t, p.Confirm())
	msg, open := p.Modal()
	require.True(t, open)
	assert.Equal(t, "second", msg.Text)

	require.True(t, p.Confirm())
	_, open = p.Modal()
	assert.False(t, open)
}

func TestPresenter_Shake(t *testing.T) {
	p, clock, _ := newTestPresenter(t, nil)

	p.Shake(view.GateBox)
	assert.Equal(t, 0, p.ShakeOffset(view.GateBox))
	clock.Advance(shakeInterval)
	assert.Equal(t, 2, p.ShakeOffset(view.GateBox))
	clock.Advance(shakeInterval)
	assert.Equal(t, 4, p.ShakeOffset(view.GateBox))

	clock.Advance(shakeFrames * shakeInterval)
	assert.Equal(t, 0, p.ShakeOffset(view.GateBox))
	assert.Equal(t, 0, clock.Pending())
}

func TestPresenter_InputMode(t *testing.T) {
	p, _, _ := newTestPresenter(t, nil)

	p.SetText(view.GateInput, "hello")
	assert.Equal(t, "hello", p.Text(view.GateInput))

	p.SetInputMode(view.InputDate)
	assert.Equal(t, view.InputDate, p.InputMode())
	assert.Empty(t, p.Text(view.GateInput))
	assert.Equal(t, "YYYY-MM-DD", p.input.Placeholder)
	assert.Equal(t, 10, p.input.CharLimit)
}

func TestPresenter_TextAndVisibility(t *testing.T) {
	p, _, _ := newTestPresenter(t, nil)

	p.Reveal(view.StageID(2))
	p.SetText(view.ScoreDisplay, "Score: 3 / 15")
	assert.True(t, p.Visible(view.StageID(2)))
	assert.Equal(t, "Score: 3 / 15", p.Text(view.ScoreDisplay))

	p.Hide(view.StageID(2))
	assert.False(t, p.Visible(view.StageID(2)))
	assert.False(t, p.Visible("missing"))
}

func TestPresenter_Scroll(t *testing.T) {
	p, _, _ := newTestPresenter(t, nil)
	id := view.ElementID(config.Default().Dashboard.Galleries[0].ID)
	content := ansi.StringWidth(galleryStrip(config.Default().Dashboard.Galleries[0].Items))

	ext, ok := p.ScrollExtent(id)
	require.True(t, ok)
	assert.Equal(t, view.Extent{Offset: 0, Viewport: 80 - 2*frameLeft, Content: content}, ext)
	assert.True(t, ext.Overflows())

	p.SetScroll(id, 5)
	assert.Equal(t, ansi.Cut(galleryStrip(config.Default().Dashboard.Galleries[0].Items), 5, 5+ext.Viewport), p.GalleryWindow(id))

	p.SetScroll(id, 10_000)
	ext, _ = p.ScrollExtent(id)
	assert.Equal(t, content-ext.Viewport, ext.Offset)
	assert.True(t, ext.AtEnd())

	p.SetScroll(id, -3)
	ext, _ = p.ScrollExtent(id)
	assert.Equal(t, 0, ext.Offset)

	p.SetScroll(id, 10_000)
	p.Resize(400, 50)
	ext, _ = p.ScrollExtent(id)
	assert.False(t, ext.Overflows())
	assert.Equal(t, 0, ext.Offset, "offset clamped to the wider viewport")

	_, ok = p.ScrollExtent("unknown")
	assert.False(t, ok)
	p.SetScroll("unknown", 3)
}

func TestPresenter_Background(t *testing.T) {
	p, clock, _ := newTestPresenter(t, nil)

	p.SetBackground(view.ThemeLight)
	assert.Equal(t, 0, clock.Pending(), "already on light")

	p.SetBackground(view.ThemeDark)
	assert.Equal(t, view.ThemeDark, p.Theme())
	assert.Equal(t, 1, clock.Pending())
	clock.Advance(5 * time.Second)
	assert.Equal(t, "#000000", p.Background())
	assert.Equal(t, 0, clock.Pending())
}

func TestPresenter_Celebration(t *testing.T) {
	player := &fakePlayer{err: errors.New("no audio device")}
	p, clock, log := newTestPresenter(t, player)

	p.PlayCelebration()
	assert.Equal(t, 1, p.Celebrations())
	assert.Equal(t, 1, player.calls)
	assert.NotEmpty(t, p.ConfettiView())
	log.AssertLogged(t, zapcore.WarnLevel, "celebration track failed")

	clock.Advance(time.Minute)
	assert.Empty(t, p.ConfettiView())
	assert.Equal(t, 0, clock.Pending())
}

func TestPresenter_CelebrationWithoutPlayer(t *testing.T) {
	p, _, log := newTestPresenter(t, nil)
	p.PlayCelebration()
	assert.Equal(t, 1, p.Celebrations())
	log.AssertNotLogged(t, zapcore.WarnLevel, "celebration track failed")
}
