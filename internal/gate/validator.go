// Package gate implements the stage 1 gatekeeper: a date answer check with
// an attempt counter that escalates to a date picker.
package gate

import (
	"github.com/fyrsmithlabs/vault/internal/config"
)

// Outcome describes what a submission should do to the view.
type Outcome struct {
	Matched bool
	// Message is the success text; set only when Matched.
	Message string
	// Shake is set for every miss.
	Shake bool
	// Escalated is set on the miss that switches to the date picker.
	Escalated bool
	// ClearInput is set on a miss that does not escalate.
	ClearInput bool
}

// Validator checks gate answers. It keeps the attempt count and the
// escalation flag for the life of the process; neither ever resets.
type Validator struct {
	accepted      map[string]struct{}
	escalateAfter int
	quickWin      string
	persisted     string

	attempts  int
	escalated bool
}

// NewValidator builds a Validator from the gate config.
func NewValidator(cfg config.GateConfig) *Validator {
	accepted := make(map[string]struct{}, len(cfg.Accepted))
	for _, a := range cfg.Accepted {
		accepted[a.Value()] = struct{}{}
	}
	after := cfg.EscalateAfter
	if after < 1 {
		after = 2
	}
	return &Validator{
		accepted:      accepted,
		escalateAfter: after,
		quickWin:      cfg.QuickWinMessage,
		persisted:     cfg.PersistedMessage,
	}
}

// Check compares input against the accepted answers. Comparison is exact.
func (v *Validator) Check(input string) Outcome {
	if _, ok := v.accepted[input]; ok {
		msg := v.persisted
		if v.attempts < v.escalateAfter && !v.escalated {
			msg = v.quickWin
		}
		return Outcome{Matched: true, Message: msg}
	}

	v.attempts++
	if v.attempts >= v.escalateAfter && !v.escalated {
		v.escalated = true
		return Outcome{Shake: true, Escalated: true}
	}
	return Outcome{Shake: true, ClearInput: true}
}

// Attempts returns the number of misses so far.
func (v *Validator) Attempts() int { return v.attempts }

// Escalated reports whether the date picker phase has started.
func (v *Validator) Escalated() bool { return v.escalated }
