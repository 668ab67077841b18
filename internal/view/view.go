// Package view defines the presentation contract the stage logic drives.
//
// Core packages never render anything themselves. They call a View to show
// modal messages, toggle visibility, replace text, scroll galleries and
// change the backdrop. Every method is a silent no-op for unknown element
// ids.
package view

import "fmt"

// ElementID names a presentational element.
type ElementID string

// Element ids shared by the stages and the terminal presenter.
const (
	GateBox          ElementID = "gate-box"
	GateInput        ElementID = "gatekeeper-input"
	GateInstruction  ElementID = "gate-instruction"
	MemoryGrid       ElementID = "memory-grid"
	NextStage2       ElementID = "next-stage-2"
	ScoreDisplay     ElementID = "score-display"
	CatchArea        ElementID = "catch-area"
	IntermissionText ElementID = "intermission-text"
	StatCounter      ElementID = "stat-counter"
	Lyrics           ElementID = "lyrics"
	LetterNav        ElementID = "final-letter-nav"
)

// StageID returns the container id of stage n.
func StageID(n int) ElementID {
	return ElementID(fmt.Sprintf("stage-%d", n))
}

// TabID returns the content id of a dashboard tab.
func TabID(name string) ElementID {
	return ElementID("tab-" + name)
}

// Theme is the dashboard backdrop.
type Theme int

const (
	ThemeLight Theme = iota
	ThemeDark
)

// Hex returns the backdrop colour.
func (t Theme) Hex() string {
	if t == ThemeDark {
		return "#000000"
	}
	return "#fffafa"
}

func (t Theme) String() string {
	if t == ThemeDark {
		return "dark"
	}
	return "light"
}

// InputMode selects the gate input widget.
type InputMode int

const (
	InputText InputMode = iota
	InputDate
)

func (m InputMode) String() string {
	if m == InputDate {
		return "date"
	}
	return "text"
}

// Message is a modal. An empty Button hides the confirm action. The View
// closes the modal before invoking OnConfirm; a nil OnConfirm just closes it.
type Message struct {
	Text      string
	Emoji     string
	Button    string
	OnConfirm func()
}

// Extent describes a horizontally scrollable container.
type Extent struct {
	Offset   int
	Viewport int
	Content  int
}

// Overflows reports whether the content is wider than the viewport.
func (e Extent) Overflows() bool {
	return e.Content > e.Viewport
}

// AtEnd reports whether the viewport touches the end of the content.
func (e Extent) AtEnd() bool {
	return e.Offset+e.Viewport >= e.Content-1
}

// View is the presentation collaborator.
type View interface {
	ShowMessage(msg Message)
	CloseMessage()
	Shake(id ElementID)
	SetInputMode(mode InputMode)
	Reveal(id ElementID)
	Hide(id ElementID)
	SetText(id ElementID, text string)
	SetScroll(id ElementID, offset int)
	ScrollExtent(id ElementID) (Extent, bool)
	SetBackground(theme Theme)
	PlayCelebration()
}
