// Package dashboard implements the final tabbed stage.
//
// Three informational tabs (memories, stats, portrait) must each be opened
// once before the letter tab unlocks. The memories tab auto-scrolls every
// overflowing gallery strip on its own timer; hovering a strip pauses only
// that strip.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fyrsmithlabs/vault/internal/config"
	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/session"
	"github.com/fyrsmithlabs/vault/internal/timer"
	"github.com/fyrsmithlabs/vault/internal/view"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Tab names a dashboard tab.
type Tab string

const (
	Memories Tab = "memories"
	Stats    Tab = "stats"
	Portrait Tab = "portrait"
	Letter   Tab = "letter"
)

// Tabs lists the tabs in navigation order.
var Tabs = []Tab{Memories, Stats, Portrait, Letter}

// LockedLabel and UnlockedLabel are the letter navigation captions.
const (
	LockedLabel   = "🔒 Letter"
	UnlockedLabel = "Letter"
)

var (
	// ErrTabLocked is returned when opening the letter before it unlocks.
	ErrTabLocked = errors.New("tab is locked")
	// ErrUnknownTab is returned for a tab name outside Tabs.
	ErrUnknownTab = errors.New("unknown tab")
)

// ParseTab resolves a tab name.
func ParseTab(name string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, name)
}

// Controller is stage 5.
type Controller struct {
	cfg   config.DashboardConfig
	view  view.View
	sched timer.Scheduler
	state *session.State
	start time.Time
	opens metric.Int64Counter

	ctx            context.Context
	current        Tab
	unlocked       bool
	lyricsExpanded bool

	scrollStart timer.Handle
	scrolling   map[view.ElementID]timer.Handle
	hovered     map[view.ElementID]bool
}

// NewController creates the dashboard. The start date must already be
// validated by config.Validate.
func NewController(cfg config.DashboardConfig, v view.View, sched timer.Scheduler, state *session.State) *Controller {
	start, _ := time.Parse(time.DateOnly, cfg.StartDate)
	opens, err := otel.Meter("github.com/fyrsmithlabs/vault/internal/dashboard").Int64Counter(
		"vault.dashboard.tab.opens.total",
		metric.WithDescription("Dashboard tab opens by tab"),
	)
	if err != nil {
		opens = nil
	}
	return &Controller{
		cfg:       cfg,
		view:      v,
		sched:     sched,
		state:     state,
		start:     start,
		opens:     opens,
		ctx:       context.Background(),
		scrolling: make(map[view.ElementID]timer.Handle),
		hovered:   make(map[view.ElementID]bool),
	}
}

// Enter refreshes the day counter and opens the memories tab.
func (c *Controller) Enter(ctx context.Context) error {
	c.ctx = ctx
	c.RefreshStats()
	if !c.lyricsExpanded {
		c.view.SetText(view.Lyrics, c.cfg.Lyrics)
	}
	if c.unlocked || c.state.AllViewed() {
		c.unlocked = true
		c.view.SetText(view.LetterNav, UnlockedLabel)
	} else {
		c.view.SetText(view.LetterNav, LockedLabel)
	}
	return c.Open(Memories)
}

// Exit cancels every gallery timer.
func (c *Controller) Exit() {
	c.stopScrolling()
}

// Current returns the open tab.
func (c *Controller) Current() Tab { return c.current }

// Unlocked reports whether the letter tab can be opened.
func (c *Controller) Unlocked() bool { return c.unlocked }

// Open switches to tab. Opening the letter before the other three tabs have
// been seen returns ErrTabLocked and changes nothing.
func (c *Controller) Open(tab Tab) error {
	if _, err := ParseTab(string(tab)); err != nil {
		return err
	}
	if tab == Letter && !c.unlocked {
		return ErrTabLocked
	}

	for _, t := range Tabs {
		c.view.Hide(view.TabID(string(t)))
	}
	c.view.Reveal(view.TabID(string(tab)))
	c.current = tab
	c.stopScrolling()

	if tab == Portrait {
		c.state.PortraitViewed = true
		c.view.SetBackground(view.ThemeDark)
		c.expandLyrics()
	} else {
		c.view.SetBackground(view.ThemeLight)
	}

	switch tab {
	case Memories:
		c.state.MemoriesViewed = true
		c.scrollStart = c.sched.AfterFunc(c.cfg.ScrollStartDelay.Duration(), c.startScrolling)
	case Stats:
		c.state.StatsViewed = true
		c.RefreshStats()
	}

	if !c.unlocked && c.state.AllViewed() {
		c.unlocked = true
		c.view.SetText(view.LetterNav, UnlockedLabel)
		logging.FromContext(c.ctx).Info(c.ctx, "letter unlocked")
	}

	if c.opens != nil {
		c.opens.Add(c.ctx, 1, metric.WithAttributes(attribute.String("tab", string(tab))))
	}
	logging.FromContext(c.ctx).Debug(c.ctx, "tab opened", zap.String("tab", string(tab)))
	return nil
}

func (c *Controller) expandLyrics() {
	if c.lyricsExpanded {
		return
	}
	c.lyricsExpanded = true
	c.view.SetText(view.Lyrics, strings.Repeat(c.cfg.Lyrics+" ", c.cfg.LyricsRepeat))
}

// DayCount returns the whole days between the start date and now.
func (c *Controller) DayCount() int {
	d := c.sched.Now().Sub(c.start)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}

// RefreshStats writes the day count to the stat counter.
func (c *Controller) RefreshStats() {
	c.view.SetText(view.StatCounter, humanize.Comma(int64(c.DayCount())))
}

// Reply answers the letter: it plays the celebration and shows the reply.
// It reports false unless the letter tab is open.
func (c *Controller) Reply() bool {
	if c.current != Letter {
		return false
	}
	logging.FromContext(c.ctx).Info(c.ctx, "letter answered", zap.Int("days", c.DayCount()))
	c.view.PlayCelebration()
	c.view.ShowMessage(view.Message{
		Text:   c.cfg.ReplyMessage,
		Emoji:  "💖✨",
		Button: "Close",
	})
	return true
}

// Hover pauses or resumes the auto-scroll of one gallery strip.
func (c *Controller) Hover(id view.ElementID, over bool) {
	c.hovered[id] = over
	if over {
		if h, ok := c.scrolling[id]; ok {
			h.Stop()
			delete(c.scrolling, id)
		}
		return
	}
	if c.current == Memories && c.scrollStart == nil {
		c.startStrip(id)
	}
}

// Scrolling reports whether the strip has a running scroll timer.
func (c *Controller) Scrolling(id view.ElementID) bool {
	_, ok := c.scrolling[id]
	return ok
}

func (c *Controller) startScrolling() {
	c.scrollStart = nil
	for _, g := range c.cfg.Galleries {
		id := view.ElementID(g.ID)
		if !c.hovered[id] {
			c.startStrip(id)
		}
	}
}

func (c *Controller) startStrip(id view.ElementID) {
	if _, running := c.scrolling[id]; running {
		return
	}
	ext, ok := c.view.ScrollExtent(id)
	if !ok || !ext.Overflows() {
		return
	}
	c.scrolling[id] = c.sched.EveryFunc(c.cfg.ScrollInterval.Duration(), func() {
		e, ok := c.view.ScrollExtent(id)
		if !ok {
			return
		}
		if e.AtEnd() {
			c.view.SetScroll(id, 0)
			return
		}
		c.view.SetScroll(id, e.Offset+1)
	})
}

func (c *Controller) stopScrolling() {
	c.scrollStart = timer.Stop(c.scrollStart)
	for id, h := range c.scrolling {
		h.Stop()
		delete(c.scrolling, id)
	}
}
