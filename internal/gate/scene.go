package gate

import (
	"context"
	"strings"
	"time"

	"github.com/fyrsmithlabs/vault/internal/config"
	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/fyrsmithlabs/vault/internal/view"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// DateLayout is the value format of the date picker.
const DateLayout = time.DateOnly

// DatePicker mirrors a date input with a max attribute of today.
type DatePicker struct {
	Now func() time.Time
}

// Max returns the latest selectable date.
func (p DatePicker) Max() string {
	return p.Now().Format(DateLayout)
}

// Allows reports whether value is a well-formed date no later than today.
func (p DatePicker) Allows(value string) bool {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return false
	}
	return value <= p.Max() && d.Format(DateLayout) == value
}

// Scene drives the gate through the View.
type Scene struct {
	cfg       config.GateConfig
	validator *Validator
	view      view.View
	picker    DatePicker
	onSuccess func()
	attempts  metric.Int64Counter
}

// NewScene wires a validator to the view. onSuccess runs when the success
// modal is confirmed.
func NewScene(cfg config.GateConfig, v view.View, now func() time.Time, onSuccess func()) *Scene {
	if now == nil {
		now = time.Now
	}
	counter, err := otel.Meter("github.com/fyrsmithlabs/vault/internal/gate").Int64Counter(
		"vault.gate.attempts.total",
		metric.WithDescription("Gate submissions by result"),
	)
	if err != nil {
		counter = nil
	}
	return &Scene{
		cfg:       cfg,
		validator: NewValidator(cfg),
		view:      v,
		picker:    DatePicker{Now: now},
		onSuccess: onSuccess,
		attempts:  counter,
	}
}

// Validator exposes the scene's validator.
func (s *Scene) Validator() *Validator { return s.validator }

// Picker returns the date picker used after escalation.
func (s *Scene) Picker() DatePicker { return s.picker }

// Enter implements stage.Scene.
func (s *Scene) Enter(_ context.Context) error {
	if s.validator.Escalated() {
		s.view.SetInputMode(view.InputDate)
		s.view.SetText(view.GateInstruction, s.cfg.DateInstruction)
		return nil
	}
	s.view.SetInputMode(view.InputText)
	s.view.SetText(view.GateInstruction, s.cfg.Instruction)
	return nil
}

// Exit implements stage.Scene. The gate owns no timers.
func (s *Scene) Exit() {}

// CanSubmit reports whether the submit action is enabled for input.
func (s *Scene) CanSubmit(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}
	if s.validator.Escalated() {
		return s.picker.Allows(input)
	}
	return true
}

// Submit handles one submission. Disabled submissions are ignored and do
// not count as attempts. It reports whether the answer matched.
func (s *Scene) Submit(ctx context.Context, input string) bool {
	if !s.CanSubmit(input) {
		return false
	}

	out := s.validator.Check(input)
	logger := logging.FromContext(ctx)
	logger.Debug(ctx, "gate attempt",
		logging.Answer(input),
		zap.Bool("matched", out.Matched),
		zap.Int("attempts", s.validator.Attempts()),
	)
	s.record(ctx, out)

	if out.Matched {
		s.view.ShowMessage(view.Message{
			Text:      out.Message,
			Emoji:     "💖",
			Button:    "Proceed",
			OnConfirm: s.onSuccess,
		})
		return true
	}

	s.view.Shake(view.GateBox)
	if out.Escalated {
		logger.Info(ctx, "gate escalated to date picker", zap.Int("attempts", s.validator.Attempts()))
		s.view.ShowMessage(view.Message{
			Text:   s.cfg.MisdirectionMessage,
			Emoji:  "🧐",
			Button: "Try Again 🙄",
		})
		s.view.SetInputMode(view.InputDate)
		s.view.SetText(view.GateInstruction, s.cfg.DateInstruction)
		return false
	}
	if out.ClearInput {
		s.view.SetText(view.GateInput, "")
	}
	return false
}

func (s *Scene) record(ctx context.Context, out Outcome) {
	if s.attempts == nil {
		return
	}
	result := "miss"
	if out.Matched {
		result = "match"
	}
	s.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
