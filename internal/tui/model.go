// Package tui renders the stages in the terminal with Bubble Tea.
//
// The Presenter implements view.View and the Scheduler implements
// timer.Scheduler on top of tea.Tick, so every stage callback runs inside
// Model.Update on the program's event goroutine.
package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fyrsmithlabs/vault/internal/app"
	"github.com/fyrsmithlabs/vault/internal/dashboard"
	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/stage"
	"github.com/fyrsmithlabs/vault/internal/view"
	"go.uber.org/zap"
)

const (
	nudgeStep   = 20.0
	maxPlayCols = 120
	lockedHint  = "Open memories, stats and portrait first."
)

// Model is the Bubble Tea model driving one App.
type Model struct {
	app   *app.App
	pres  *Presenter
	sched *Scheduler

	keys     keyMap
	help     help.Model
	progress progress.Model

	cursor      int
	status      string
	bodyTop     int
	galleryRows map[int]view.ElementID
	hovered     view.ElementID
	quitting    bool
	err         error
}

// NewModel creates a Model. a must have been built with pres as its view
// and sched as its scheduler.
func NewModel(a *app.App, pres *Presenter, sched *Scheduler) *Model {
	return &Model{
		app:   a,
		pres:  pres,
		sched: sched,
		keys:  newKeyMap(),
		help:  help.New(),
		progress: progress.New(
			progress.WithGradient("#f783ac", "#d6336c"),
			progress.WithWidth(30),
		),
		bodyTop: frameTop + 2,
	}
}

// Init enters the restored stage.
func (m *Model) Init() tea.Cmd {
	if err := m.app.Start(); err != nil {
		m.err = err
		m.status = err.Error()
	}
	return tea.Batch(textinput.Blink, m.sched.Flush())
}

// Err returns the error the first stage failed to enter with.
func (m *Model) Err() error {
	return m.err
}

// Update handles messages. Timers armed by any handler are flushed as one
// batch.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case timerMsg:
		m.sched.Fire(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		cmd = m.handleKey(msg)
		if m.quitting {
			return m, tea.Quit
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	default:
		if m.app.Machine.Current() == stage.Gate {
			cmd = m.pres.UpdateInput(msg)
		}
	}
	return m, tea.Batch(cmd, m.sched.Flush())
}

func (m *Model) resize(width, height int) {
	m.pres.Resize(width, height)
	m.help.Width = width
	cols := min(max(width-2*frameLeft, minViewport), maxPlayCols)
	m.app.Catch.Resize(float64(cols) * unitsPerCol)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	current := m.app.Machine.Current()
	if current != stage.Gate && key.Matches(msg, m.keys.Leave) {
		m.quitting = true
		return nil
	}
	if _, open := m.pres.Modal(); open {
		if key.Matches(msg, m.keys.Confirm) {
			m.pres.Confirm()
		}
		return nil
	}

	ctx := m.app.Context()
	switch current {
	case stage.Gate:
		if key.Matches(msg, m.keys.Submit) {
			if input := m.pres.Text(view.GateInput); m.app.Gate.CanSubmit(input) {
				m.app.Gate.Submit(ctx, input)
			}
			return nil
		}
		return m.pres.UpdateInput(msg)

	case stage.Memory:
		n := len(m.app.Memory.Engine().Cards())
		if n == 0 {
			return nil
		}
		switch {
		case key.Matches(msg, m.keys.Left):
			m.cursor = (m.cursor + n - 1) % n
		case key.Matches(msg, m.keys.Right):
			m.cursor = (m.cursor + 1) % n
		case key.Matches(msg, m.keys.Up):
			m.cursor = (m.cursor + n - memoryColumns) % n
		case key.Matches(msg, m.keys.Down):
			m.cursor = (m.cursor + memoryColumns) % n
		case key.Matches(msg, m.keys.Flip):
			m.app.Memory.Flip(m.cursor)
		case key.Matches(msg, m.keys.Next):
			m.app.Memory.Next()
		}

	case stage.Catch:
		switch {
		case key.Matches(msg, m.keys.Left):
			m.app.Catch.Nudge(-nudgeStep)
		case key.Matches(msg, m.keys.Right):
			m.app.Catch.Nudge(nudgeStep)
		}

	case stage.Dashboard:
		for i, b := range m.keys.Tab {
			if key.Matches(msg, b) {
				m.openTab(dashboard.Tabs[i])
				return nil
			}
		}
		switch {
		case key.Matches(msg, m.keys.NextTab):
			m.openTab(m.neighbourTab(1))
		case key.Matches(msg, m.keys.PrevTab):
			m.openTab(m.neighbourTab(-1))
		case key.Matches(msg, m.keys.Reply):
			m.app.Dashboard.Reply()
		}
	}
	return nil
}

func (m *Model) neighbourTab(step int) dashboard.Tab {
	n := len(dashboard.Tabs)
	for i, t := range dashboard.Tabs {
		if t == m.app.Dashboard.Current() {
			return dashboard.Tabs[(i+step+n)%n]
		}
	}
	return dashboard.Memories
}

func (m *Model) openTab(t dashboard.Tab) {
	m.status = ""
	err := m.app.Dashboard.Open(t)
	switch {
	case errors.Is(err, dashboard.ErrTabLocked):
		m.status = lockedHint
	case err != nil:
		ctx := m.app.Context()
		logging.FromContext(ctx).Warn(ctx, "open tab failed", zap.String("tab", string(t)), zap.Error(err))
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch m.app.Machine.Current() {
	case stage.Catch:
		if msg.Action == tea.MouseActionMotion {
			m.app.Catch.MoveTo(float64(msg.X-frameLeft) * unitsPerCol)
		}
	case stage.Dashboard:
		if msg.Action != tea.MouseActionMotion {
			return
		}
		over := m.galleryRows[msg.Y-m.bodyTop]
		if over == m.hovered {
			return
		}
		if m.hovered != "" {
			m.app.Dashboard.Hover(m.hovered, false)
		}
		if over != "" {
			m.app.Dashboard.Hover(over, true)
		}
		m.hovered = over
	}
}

// View renders the current stage.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}
