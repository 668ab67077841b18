package tui

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/fyrsmithlabs/vault/internal/config"
	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/timer"
	"github.com/fyrsmithlabs/vault/internal/view"
	"go.uber.org/zap"
)

const (
	shakeFrames   = 10
	shakeInterval = 50 * time.Millisecond
	confettiRows  = 8
	minViewport   = 10
)

// shakePattern is the horizontal offset of each shake frame.
var shakePattern = [shakeFrames]int{0, 2, 4, 2, 0, 2, 4, 2, 1, 0}

// Celebrator plays the celebration soundtrack.
type Celebrator interface {
	Play(ctx context.Context) error
}

type gallery struct {
	id     view.ElementID
	strip  string
	offset int
}

// Presenter is the terminal implementation of view.View. It only holds what
// the stages asked it to show; the Model renders it.
type Presenter struct {
	ctx    context.Context
	sched  timer.Scheduler
	rng    *rand.Rand
	player Celebrator

	width, height int

	modal   *view.Message
	visible map[view.ElementID]bool
	texts   map[view.ElementID]string
	input   textinput.Model
	mode    view.InputMode

	shakes     map[view.ElementID]int
	shakeTimer timer.Handle

	theme      view.Theme
	blend      *themeBlend
	blendTimer timer.Handle

	confetti      *confetti
	confettiTimer timer.Handle
	celebrations  int

	galleries []*gallery
}

var _ view.View = (*Presenter)(nil)

// NewPresenter creates a Presenter. player may be nil.
func NewPresenter(ctx context.Context, cfg config.DashboardConfig, sched timer.Scheduler, player Celebrator, rng *rand.Rand) *Presenter {
	in := textinput.New()
	in.Placeholder = "Type your answer"
	in.CharLimit = 32
	in.Width = 24
	in.Focus()

	p := &Presenter{
		ctx:     ctx,
		sched:   sched,
		rng:     rng,
		player:  player,
		width:   80,
		height:  24,
		visible: make(map[view.ElementID]bool),
		texts:   make(map[view.ElementID]string),
		input:   in,
		shakes:  make(map[view.ElementID]int),
		blend:   newThemeBlend(),
	}
	for _, g := range cfg.Galleries {
		p.galleries = append(p.galleries, &gallery{id: view.ElementID(g.ID), strip: galleryStrip(g.Items)})
	}
	return p
}

func galleryStrip(items []string) string {
	framed := make([]string, len(items))
	for i, it := range items {
		framed[i] = "[ " + it + " ]"
	}
	return strings.Join(framed, "  ")
}

// ShowMessage implements view.View.
func (p *Presenter) ShowMessage(msg view.Message) {
	p.modal = &msg
}

// CloseMessage implements view.View.
func (p *Presenter) CloseMessage() {
	p.modal = nil
}

// Confirm presses the modal button. The modal closes before its callback
// runs, so a callback may open the next one.
func (p *Presenter) Confirm() bool {
	if p.modal == nil || p.modal.Button == "" {
		return false
	}
	msg := p.modal
	p.modal = nil
	if msg.OnConfirm != nil {
		msg.OnConfirm()
	}
	return true
}

// Modal returns the open modal.
func (p *Presenter) Modal() (view.Message, bool) {
	if p.modal == nil {
		return view.Message{}, false
	}
	return *p.modal, true
}

// Shake implements view.View.
func (p *Presenter) Shake(id view.ElementID) {
	p.shakes[id] = shakeFrames
	if p.shakeTimer != nil {
		return
	}
	p.shakeTimer = p.sched.EveryFunc(shakeInterval, func() {
		for k, n := range p.shakes {
			if n <= 1 {
				delete(p.shakes, k)
				continue
			}
			p.shakes[k] = n - 1
		}
		if len(p.shakes) == 0 {
			p.shakeTimer = timer.Stop(p.shakeTimer)
		}
	})
}

// ShakeOffset returns the current horizontal displacement of id.
func (p *Presenter) ShakeOffset(id view.ElementID) int {
	n, ok := p.shakes[id]
	if !ok {
		return 0
	}
	return shakePattern[shakeFrames-n]
}

// SetInputMode implements view.View.
func (p *Presenter) SetInputMode(mode view.InputMode) {
	p.mode = mode
	p.input.SetValue("")
	if mode == view.InputDate {
		p.input.Placeholder = "YYYY-MM-DD"
		p.input.CharLimit = 10
		return
	}
	p.input.Placeholder = "Type your answer"
	p.input.CharLimit = 32
}

// InputMode returns the gate input widget.
func (p *Presenter) InputMode() view.InputMode {
	return p.mode
}

// UpdateInput forwards a message to the gate input.
func (p *Presenter) UpdateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// InputView renders the gate input.
func (p *Presenter) InputView() string {
	return p.input.View()
}

// Reveal implements view.View.
func (p *Presenter) Reveal(id view.ElementID) {
	p.visible[id] = true
}

// Hide implements view.View.
func (p *Presenter) Hide(id view.ElementID) {
	p.visible[id] = false
}

// Visible reports whether id was revealed.
func (p *Presenter) Visible(id view.ElementID) bool {
	return p.visible[id]
}

// SetText implements view.View. The gate input is backed by the text field.
func (p *Presenter) SetText(id view.ElementID, text string) {
	if id == view.GateInput {
		p.input.SetValue(text)
		return
	}
	p.texts[id] = text
}

// Text returns the text of id.
func (p *Presenter) Text(id view.ElementID) string {
	if id == view.GateInput {
		return p.input.Value()
	}
	return p.texts[id]
}

func (p *Presenter) gallery(id view.ElementID) *gallery {
	for _, g := range p.galleries {
		if g.id == id {
			return g
		}
	}
	return nil
}

// Galleries returns the gallery ids in display order.
func (p *Presenter) Galleries() []view.ElementID {
	ids := make([]view.ElementID, len(p.galleries))
	for i, g := range p.galleries {
		ids[i] = g.id
	}
	return ids
}

func (p *Presenter) viewport() int {
	return max(p.width-2*frameLeft, minViewport)
}

// SetScroll implements view.View.
func (p *Presenter) SetScroll(id view.ElementID, offset int) {
	g := p.gallery(id)
	if g == nil {
		return
	}
	limit := max(ansi.StringWidth(g.strip)-p.viewport(), 0)
	g.offset = min(max(offset, 0), limit)
}

// ScrollExtent implements view.View.
func (p *Presenter) ScrollExtent(id view.ElementID) (view.Extent, bool) {
	g := p.gallery(id)
	if g == nil {
		return view.Extent{}, false
	}
	return view.Extent{Offset: g.offset, Viewport: p.viewport(), Content: ansi.StringWidth(g.strip)}, true
}

// GalleryWindow returns the visible slice of a gallery strip.
func (p *Presenter) GalleryWindow(id view.ElementID) string {
	g := p.gallery(id)
	if g == nil {
		return ""
	}
	return ansi.Cut(g.strip, g.offset, g.offset+p.viewport())
}

// SetBackground implements view.View. The backdrop springs towards theme.
func (p *Presenter) SetBackground(theme view.Theme) {
	p.theme = theme
	p.blend.SetTarget(theme)
	if p.blendTimer != nil || p.blend.Settled() {
		return
	}
	p.blendTimer = p.sched.EveryFunc(time.Second/animationFPS, func() {
		if !p.blend.Step() {
			p.blendTimer = timer.Stop(p.blendTimer)
		}
	})
}

// Theme returns the last requested theme.
func (p *Presenter) Theme() view.Theme {
	return p.theme
}

// Background returns the current backdrop colour.
func (p *Presenter) Background() string {
	return p.blend.Background()
}

// Foreground returns the text colour for the current backdrop.
func (p *Presenter) Foreground() string {
	return p.blend.Foreground()
}

// PlayCelebration implements view.View. A failing soundtrack is logged and
// the confetti still runs.
func (p *Presenter) PlayCelebration() {
	p.celebrations++
	p.confetti = newConfetti(p.viewport(), confettiRows, p.rng)
	if p.confettiTimer == nil {
		p.confettiTimer = p.sched.EveryFunc(time.Second/animationFPS, func() {
			if !p.confetti.Step() {
				p.confettiTimer = timer.Stop(p.confettiTimer)
				p.confetti = nil
			}
		})
	}
	if p.player == nil {
		return
	}
	if err := p.player.Play(p.ctx); err != nil {
		logging.FromContext(p.ctx).Warn(p.ctx, "celebration track failed", zap.Error(err))
	}
}

// Celebrations returns how often the celebration played.
func (p *Presenter) Celebrations() int {
	return p.celebrations
}

// ConfettiView renders the live confetti band, or "".
func (p *Presenter) ConfettiView() string {
	if p.confetti == nil {
		return ""
	}
	return p.confetti.View()
}

// Resize records the terminal size. Scroll offsets are clamped to the new
// viewport.
func (p *Presenter) Resize(width, height int) {
	p.width, p.height = width, height
	for _, g := range p.galleries {
		p.SetScroll(g.id, g.offset)
	}
}

// Size returns the terminal size.
func (p *Presenter) Size() (width, height int) {
	return p.width, p.height
}
