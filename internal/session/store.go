package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/fyrsmithlabs/vault/internal/config"
)

// Store persists the current stage of one session.
type Store interface {
	// LoadStage returns the stored stage. ok is false when nothing usable is
	// stored.
	LoadStage(ctx context.Context) (stage int, ok bool, err error)
	SaveStage(ctx context.Context, stage int) error
	Clear(ctx context.Context) error
	Close() error
}

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown session backend")

// Open builds the Store selected by cfg for session id.
func Open(ctx context.Context, cfg config.SessionConfig, id string) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.Dir, id)
	case config.BackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL.Value(), cfg.KeyPrefix, id, cfg.TTL.Duration())
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// MemoryStore keeps the stage in process memory.
type MemoryStore struct {
	mu  sync.Mutex
	raw string
	set bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith returns a MemoryStore holding raw, as if a previous run
// had written it.
func NewMemoryStoreWith(raw string) *MemoryStore {
	return &MemoryStore{raw: raw, set: true}
}

// LoadStage implements Store.
func (m *MemoryStore) LoadStage(_ context.Context) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return 0, false, nil
	}
	n, ok := ParseStage(m.raw)
	return n, ok, nil
}

// SaveStage implements Store.
func (m *MemoryStore) SaveStage(_ context.Context, stage int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw, m.set = strconv.Itoa(stage), true
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw, m.set = "", false
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
