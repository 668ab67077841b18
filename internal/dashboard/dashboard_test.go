package dashboard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fyrsmithlabs/vault/internal/config"
	"github.com/fyrsmithlabs/vault/internal/session"
	"github.com/fyrsmithlabs/vault/internal/timer"
	"github.com/fyrsmithlabs/vault/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	firsts    = view.ElementID("gallery-firsts")
	favorites = view.ElementID("gallery-favorites")
)

var now = time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)

func newController(t *testing.T) (*Controller, *timer.Manual, *view.Recorder, *session.State) {
	t.Helper()
	clock := timer.NewManual(now)
	rec := view.NewRecorder()
	rec.AddScrollable(firsts, 10, 14)
	rec.AddScrollable(favorites, 10, 40)
	st := &session.State{Stage: 5}
	c := NewController(config.Default().Dashboard, rec, clock, st)
	require.NoError(t, c.Enter(context.Background()))
	return c, clock, rec, st
}

func TestEnter_OpensMemories(t *testing.T) {
	c, _, rec, st := newController(t)
	assert.Equal(t, Memories, c.Current())
	assert.True(t, st.MemoriesViewed)
	assert.True(t, rec.Visible(view.TabID("memories")))
	assert.False(t, rec.Visible(view.TabID("stats")))
	assert.Equal(t, view.ThemeLight, rec.Theme())
	assert.Equal(t, LockedLabel, rec.Text(view.LetterNav))
	assert.Equal(t, "129", rec.Text(view.StatCounter))
}

func TestLetterUnlocksOnlyAfterAllThree(t *testing.T) {
	orders := [][]Tab{
		{Stats, Portrait},
		{Portrait, Stats},
		{Portrait, Memories, Portrait, Stats},
	}
	for _, order := range orders {
		c, _, rec, _ := newController(t)
		for i, tab := range order {
			if i < len(order)-1 {
				assert.ErrorIs(t, c.Open(Letter), ErrTabLocked)
				assert.False(t, c.Unlocked())
			}
			require.NoError(t, c.Open(tab))
		}
		assert.True(t, c.Unlocked(), "order %v", order)
		assert.Equal(t, UnlockedLabel, rec.Text(view.LetterNav))
		require.NoError(t, c.Open(Letter))
		assert.Equal(t, Letter, c.Current())
	}
}

func TestLockedLetterChangesNothing(t *testing.T) {
	c, _, rec, _ := newController(t)
	require.NoError(t, c.Open(Stats))
	before := len(rec.Calls)

	assert.ErrorIs(t, c.Open(Letter), ErrTabLocked)
	assert.Equal(t, Stats, c.Current())
	assert.Len(t, rec.Calls, before)
}

func TestUnknownTab(t *testing.T) {
	c, _, _, _ := newController(t)
	assert.ErrorIs(t, c.Open("settings"), ErrUnknownTab)
	_, err := ParseTab("portrait")
	assert.NoError(t, err)
}

func TestPortraitThemeAndLyrics(t *testing.T) {
	c, _, rec, _ := newController(t)
	line := config.Default().Dashboard.Lyrics
	assert.Equal(t, line, rec.Text(view.Lyrics))

	require.NoError(t, c.Open(Portrait))
	assert.Equal(t, view.ThemeDark, rec.Theme())
	expanded := rec.Text(view.Lyrics)
	assert.Equal(t, 150, strings.Count(expanded, line))

	require.NoError(t, c.Open(Stats))
	assert.Equal(t, view.ThemeLight, rec.Theme())

	require.NoError(t, c.Open(Portrait))
	assert.Equal(t, expanded, rec.Text(view.Lyrics), "lyrics expand once")
}

func TestViewedFlagsIdempotent(t *testing.T) {
	c, _, _, st := newController(t)
	require.NoError(t, c.Open(Stats))
	require.NoError(t, c.Open(Stats))
	assert.True(t, st.StatsViewed)
	assert.False(t, st.PortraitViewed)
	assert.False(t, c.Unlocked())
}

func TestGalleryAutoScroll(t *testing.T) {
	c, clock, rec, _ := newController(t)

	clock.Advance(99 * time.Millisecond)
	assert.False(t, c.Scrolling(firsts), "scrolling waits for the start delay")

	clock.Advance(time.Millisecond)
	require.True(t, c.Scrolling(firsts))
	require.True(t, c.Scrolling(favorites))

	clock.Advance(90 * time.Millisecond)
	assert.Equal(t, 3, rec.Scroll(firsts))
	assert.Equal(t, 3, rec.Scroll(favorites))

	// firsts: viewport 10 of 14 reaches its end at offset 3.
	clock.Advance(30 * time.Millisecond)
	assert.Equal(t, 0, rec.Scroll(firsts), "wraps to the start")
	assert.Equal(t, 4, rec.Scroll(favorites))
}

func TestGallerySkipsStripsWithoutOverflow(t *testing.T) {
	clock := timer.NewManual(now)
	rec := view.NewRecorder()
	rec.AddScrollable(firsts, 20, 20)
	c := NewController(config.Default().Dashboard, rec, clock, &session.State{Stage: 5})
	require.NoError(t, c.Enter(context.Background()))

	clock.Advance(time.Second)
	assert.False(t, c.Scrolling(firsts))
	assert.False(t, c.Scrolling(favorites), "missing containers are skipped")
	assert.Equal(t, 0, clock.Pending())
}

func TestHoverPausesOnlyThatStrip(t *testing.T) {
	c, clock, rec, _ := newController(t)
	clock.Advance(100 * time.Millisecond)

	c.Hover(favorites, true)
	clock.Advance(300 * time.Millisecond)
	assert.Equal(t, 0, rec.Scroll(favorites))
	assert.True(t, c.Scrolling(firsts))

	c.Hover(favorites, false)
	clock.Advance(60 * time.Millisecond)
	assert.Equal(t, 2, rec.Scroll(favorites), "resumes once the pointer leaves")
}

func TestSwitchingAwayCancelsScrolling(t *testing.T) {
	c, clock, _, _ := newController(t)
	clock.Advance(100 * time.Millisecond)
	require.True(t, c.Scrolling(firsts))

	require.NoError(t, c.Open(Stats))
	assert.False(t, c.Scrolling(firsts))
	assert.Equal(t, 0, clock.Pending())

	c.Hover(firsts, false)
	assert.False(t, c.Scrolling(firsts), "leaving a strip off the memories tab does not restart it")
}

func TestSwitchingAwayBeforeStartDelay(t *testing.T) {
	c, clock, _, _ := newController(t)
	require.NoError(t, c.Open(Portrait))
	clock.Advance(time.Second)
	assert.False(t, c.Scrolling(firsts))
}

func TestExitCancelsScrolling(t *testing.T) {
	c, clock, _, _ := newController(t)
	clock.Advance(100 * time.Millisecond)
	c.Exit()
	assert.Equal(t, 0, clock.Pending())
}

func TestReplyCelebrates(t *testing.T) {
	c, _, rec, _ := newController(t)
	assert.False(t, c.Reply())

	for _, tab := range []Tab{Stats, Portrait, Letter} {
		require.NoError(t, c.Open(tab))
	}
	require.True(t, c.Reply())
	assert.Equal(t, 1, rec.Celebrations())

	msg, open := rec.Modal()
	require.True(t, open)
	assert.Equal(t, "💖✨", msg.Emoji)
	assert.Contains(t, msg.Text, "I knew you'd say yes!")
}

func TestDayCount(t *testing.T) {
	c, _, _, _ := newController(t)
	assert.Equal(t, 129, c.DayCount())

	clock := timer.NewManual(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	rec := view.NewRecorder()
	c = NewController(config.Default().Dashboard, rec, clock, &session.State{})
	c.RefreshStats()
	assert.Equal(t, "815", rec.Text(view.StatCounter))

	clock = timer.NewManual(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	c = NewController(config.Default().Dashboard, rec, clock, &session.State{})
	c.RefreshStats()
	assert.Equal(t, "1,911", rec.Text(view.StatCounter))
}
