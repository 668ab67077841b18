package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// fileRecord is the on-disk document.
type fileRecord struct {
	Stage     string    `json:"vault_stage"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileStore keeps one JSON document per session in a directory.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore for session id under dir. The directory is
// created with 0700 permissions.
func NewFileStore(dir, id string) (*FileStore, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "vault-sessions")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, id+".json")}, nil
}

// Path returns the session file path.
func (s *FileStore) Path() string {
	return s.path
}

// LoadStage implements Store.
func (s *FileStore) LoadStage(_ context.Context) (int, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read session file: %w", err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, false, fmt.Errorf("decode session file: %w", err)
	}
	n, ok := ParseStage(rec.Stage)
	return n, ok, nil
}

// SaveStage implements Store. The write is atomic: a temp file in the same
// directory is renamed over the target.
func (s *FileStore) SaveStage(_ context.Context, stage int) error {
	data, err := json.Marshal(fileRecord{Stage: strconv.Itoa(stage), UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".stage-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("save session file: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session file: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
