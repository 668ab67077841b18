package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fyrsmithlabs/vault/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct {
	*session.MemoryStore
}

func (brokenStore) LoadStage(context.Context) (int, bool, error) {
	return 0, false, errors.New("connection refused")
}

func (brokenStore) Clear(context.Context) error {
	return errors.New("connection refused")
}

func TestPrintStatus(t *testing.T) {
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, printStatus(ctx, &out, session.NewMemoryStore(), "s1", "memory"))
	assert.Contains(t, out.String(), "Session:  s1 (memory)")
	assert.Contains(t, out.String(), "not started (resumes at 1/5 gate)")

	out.Reset()
	require.NoError(t, printStatus(ctx, &out, session.NewMemoryStoreWith("3"), "s1", "memory"))
	assert.Contains(t, out.String(), "Stage:    3/5 catch")

	err := printStatus(ctx, &out, brokenStore{session.NewMemoryStore()}, "s1", "redis")
	assert.ErrorContains(t, err, "connection refused")
}

func TestResetSession(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStoreWith("4")

	var out bytes.Buffer
	require.NoError(t, resetSession(ctx, &out, store, "s1", false))
	_, ok, err := store.LoadStage(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotContains(t, out.String(), "New session id")

	out.Reset()
	require.NoError(t, resetSession(ctx, &out, store, "s1", true))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	_, err = uuid.Parse(strings.TrimPrefix(lines[1], "New session id: "))
	assert.NoError(t, err)

	assert.Error(t, resetSession(ctx, &out, brokenStore{session.NewMemoryStore()}, "s1", false))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "Version:    dev")
}
