package view

import "fmt"

// Recorder is an in-memory View that remembers every interaction. It backs
// the stage tests and the headless `vault status` rendering.
type Recorder struct {
	Calls []string

	modal      *Message
	visible    map[ElementID]bool
	texts      map[ElementID]string
	extents    map[ElementID]Extent
	shakes     map[ElementID]int
	mode       InputMode
	theme      Theme
	celebrated int
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		visible: make(map[ElementID]bool),
		texts:   make(map[ElementID]string),
		extents: make(map[ElementID]Extent),
		shakes:  make(map[ElementID]int),
	}
}

func (r *Recorder) record(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

// ShowMessage implements View.
func (r *Recorder) ShowMessage(msg Message) {
	r.record("show %q", msg.Text)
	m := msg
	r.modal = &m
}

// CloseMessage implements View.
func (r *Recorder) CloseMessage() {
	r.record("close")
	r.modal = nil
}

// Shake implements View.
func (r *Recorder) Shake(id ElementID) {
	r.record("shake %s", id)
	r.shakes[id]++
}

// SetInputMode implements View.
func (r *Recorder) SetInputMode(mode InputMode) {
	r.record("input %s", mode)
	r.mode = mode
}

// Reveal implements View.
func (r *Recorder) Reveal(id ElementID) {
	r.record("reveal %s", id)
	r.visible[id] = true
}

// Hide implements View.
func (r *Recorder) Hide(id ElementID) {
	r.record("hide %s", id)
	r.visible[id] = false
}

// SetText implements View.
func (r *Recorder) SetText(id ElementID, text string) {
	r.texts[id] = text
}

// SetScroll implements View. Unknown containers are ignored.
func (r *Recorder) SetScroll(id ElementID, offset int) {
	e, ok := r.extents[id]
	if !ok {
		return
	}
	e.Offset = offset
	r.extents[id] = e
}

// ScrollExtent implements View.
func (r *Recorder) ScrollExtent(id ElementID) (Extent, bool) {
	e, ok := r.extents[id]
	return e, ok
}

// SetBackground implements View.
func (r *Recorder) SetBackground(theme Theme) {
	r.record("background %s", theme)
	r.theme = theme
}

// PlayCelebration implements View.
func (r *Recorder) PlayCelebration() {
	r.record("celebrate")
	r.celebrated++
}

// AddScrollable registers a scroll container.
func (r *Recorder) AddScrollable(id ElementID, viewport, content int) {
	r.extents[id] = Extent{Viewport: viewport, Content: content}
}

// Modal returns the open modal, if any.
func (r *Recorder) Modal() (Message, bool) {
	if r.modal == nil {
		return Message{}, false
	}
	return *r.modal, true
}

// Confirm presses the modal button: it closes the modal and runs its action.
// It reports false when no modal is open or the button is hidden.
func (r *Recorder) Confirm() bool {
	if r.modal == nil || r.modal.Button == "" {
		return false
	}
	action := r.modal.OnConfirm
	r.CloseMessage()
	if action != nil {
		action()
	}
	return true
}

// Visible reports whether id was last revealed.
func (r *Recorder) Visible(id ElementID) bool { return r.visible[id] }

// Text returns the last text set on id.
func (r *Recorder) Text(id ElementID) string { return r.texts[id] }

// Shakes returns how many times id was shaken.
func (r *Recorder) Shakes(id ElementID) int { return r.shakes[id] }

// InputMode returns the current gate input mode.
func (r *Recorder) InputMode() InputMode { return r.mode }

// Theme returns the current backdrop.
func (r *Recorder) Theme() Theme { return r.theme }

// Celebrations returns how many times the celebration was played.
func (r *Recorder) Celebrations() int { return r.celebrated }

// Scroll returns the current offset of a scroll container.
func (r *Recorder) Scroll(id ElementID) int { return r.extents[id].Offset }
