// Package session holds the per-session state and persists the current stage.
//
// Only the stage number survives a reload. The view flags and the catch
// running flag live in State for the lifetime of one process.
package session

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stage bounds.
const (
	FirstStage = 1
	LastStage  = 5
)

// StageKey is the name the stage is persisted under.
const StageKey = "vault_stage"

// EnvSessionID overrides the session id when no flag is given.
const EnvSessionID = "VAULT_SESSION"

// State is the in-memory session record.
type State struct {
	Stage          int
	MemoriesViewed bool
	StatsViewed    bool
	PortraitViewed bool
	GameActive     bool
}

// AllViewed reports whether every gated dashboard tab has been visited.
func (s *State) AllViewed() bool {
	return s.MemoriesViewed && s.StatsViewed && s.PortraitViewed
}

// Restore builds the session State from the store. A missing, unreadable or
// out-of-range stage restores to the first stage; store errors are logged
// and otherwise ignored.
func Restore(ctx context.Context, store Store) *State {
	st := &State{Stage: FirstStage}

	n, ok, err := store.LoadStage(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn(ctx, "restore stage failed, starting over", zap.Error(err))
		return st
	}
	if ok && ValidStage(n) {
		st.Stage = n
	}
	return st
}

// ValidStage reports whether n names a stage.
func ValidStage(n int) bool {
	return n >= FirstStage && n <= LastStage
}

// ParseStage reads a persisted stage the lenient way a browser's parseInt
// does: optional surrounding spaces, an optional sign, then leading digits.
// It reports false when no digits lead the value.
func ParseStage(raw string) (int, bool) {
	i := 0
	for i < len(raw) && (raw[i] == ' ' || raw[i] == '\t' || raw[i] == '\n') {
		i++
	}
	start := i
	if i < len(raw) && (raw[i] == '+' || raw[i] == '-') {
		i++
	}
	digits := i
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		i++
	}
	if i == digits {
		return 0, false
	}
	n, err := strconv.Atoi(raw[start:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ResolveID picks the session id: the explicit flag, then $VAULT_SESSION,
// then the parent process id so reruns from the same shell resume. A random
// id is used when there is no meaningful parent.
func ResolveID(flag string) (string, error) {
	id := flag
	if id == "" {
		id = os.Getenv(EnvSessionID)
	}
	if id == "" {
		if ppid := os.Getppid(); ppid > 1 {
			id = "ppid-" + strconv.Itoa(ppid)
		} else {
			id = uuid.NewString()
		}
	}
	if err := logging.ValidateSessionID(id); err != nil {
		return "", fmt.Errorf("invalid session id %q: %w", id, err)
	}
	return id, nil
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}
