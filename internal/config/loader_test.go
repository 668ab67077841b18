package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestHome points HOME at a temporary directory and returns the vault
// config directory inside it.
func setupTestHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "vault")
	require.NoError(t, os.MkdirAll(dir, 0700))
	return dir
}

func writeConfig(t *testing.T, dir, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestLoadWithFile_MissingFileUsesDefaults(t *testing.T) {
	setupTestHome(t)

	cfg, err := LoadWithFile("")
	require.NoError(t, err)

	assert.Equal(t, []string{"10/08/24", "10/08/2024", "2024-10-08", "10-08-24", "10-08-2024"}, Secrets(cfg.Gate.Accepted))
	assert.Equal(t, 2, cfg.Gate.EscalateAfter)
	assert.Equal(t, []string{"♥", "♦", "♣", "♠", "Q", "K"}, cfg.Memory.Symbols)
	assert.Equal(t, 800*time.Millisecond, cfg.Memory.MismatchDelay.Duration())
	assert.Equal(t, 15, cfg.Catch.VictoryScore)
	assert.Equal(t, 300.0, cfg.Catch.Height)
	assert.Equal(t, 60*time.Millisecond, cfg.Intermission.CharInterval.Duration())
	assert.Equal(t, "2024-10-08", cfg.Dashboard.StartDate)
	assert.Equal(t, BackendFile, cfg.Session.Backend)
	assert.Equal(t, 0.5, cfg.Audio.MaxVolume)
	assert.Equal(t, "vault", cfg.Telemetry.ServiceName)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadWithFile_ValidYAML(t *testing.T) {
	dir := setupTestHome(t)

	path := writeConfig(t, dir, `gate:
  accepted:
    - "2023-02-14"
  escalate_after: 3
memory:
  mismatch_delay: 1s
catch:
  victory_score: 20
  seed: 42
session:
  backend: memory
dashboard:
  galleries:
    - id: strip
      items: [a, b, c]
`, 0600)

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-02-14"}, Secrets(cfg.Gate.Accepted))
	assert.Equal(t, 3, cfg.Gate.EscalateAfter)
	assert.Equal(t, time.Second, cfg.Memory.MismatchDelay.Duration())
	assert.Equal(t, 20, cfg.Catch.VictoryScore)
	assert.Equal(t, int64(42), cfg.Catch.Seed)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	require.Len(t, cfg.Dashboard.Galleries, 1)
	assert.Equal(t, "strip", cfg.Dashboard.Galleries[0].ID)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Dashboard.Galleries[0].Items)

	// Untouched sections keep their defaults.
	assert.Equal(t, 600*time.Millisecond, cfg.Memory.CompleteDelay.Duration())
}

func TestLoadWithFile_EnvOverridesFile(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "catch:\n  victory_score: 20\n", 0600)

	t.Setenv("VAULT_CATCH_VICTORY_SCORE", "5")
	t.Setenv("VAULT_AUDIO_MAX_VOLUME", "0.25")
	t.Setenv("VAULT_GATE_ACCEPTED", "one,two")
	t.Setenv("VAULT_INTERMISSION_HOLD", "1s")
	t.Setenv("VAULT_SESSION", "not-a-config-key")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Catch.VictoryScore)
	assert.Equal(t, 0.25, cfg.Audio.MaxVolume)
	assert.Equal(t, []string{"one", "two"}, Secrets(cfg.Gate.Accepted))
	assert.Equal(t, time.Second, cfg.Intermission.Hold.Duration())
	assert.Equal(t, BackendFile, cfg.Session.Backend)
}

func TestLoadWithFile_EnvListsAreSplit(t *testing.T) {
	setupTestHome(t)

	t.Setenv("VAULT_GATE_ACCEPTED", "10/08/24, 2024-10-08,")
	t.Setenv("VAULT_MEMORY_SYMBOLS", "A,B,C")
	t.Setenv("VAULT_CATCH_VICTORY_MESSAGES", "nice,again")

	cfg, err := LoadWithFile("")
	require.NoError(t, err)

	assert.Equal(t, []string{"10/08/24", "2024-10-08"}, Secrets(cfg.Gate.Accepted))
	assert.Equal(t, []string{"A", "B", "C"}, cfg.Memory.Symbols)
	assert.Equal(t, []string{"nice", "again"}, cfg.Catch.VictoryMessages)
}

func TestLoadWithFile_RejectsExplicitZero(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  [2]string
		want string
	}{
		{name: "countdown in file", yaml: "catch:\n  countdown_from: 0\n", want: "catch.countdown_from"},
		{name: "hold in file", yaml: "intermission:\n  hold: 0s\n", want: "intermission.hold"},
		{name: "countdown from env", env: [2]string{"VAULT_CATCH_COUNTDOWN_FROM", "0"}, want: "catch.countdown_from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupTestHome(t)
			path := ""
			if tt.yaml != "" {
				path = writeConfig(t, dir, tt.yaml, 0600)
			}
			if tt.env[0] != "" {
				t.Setenv(tt.env[0], tt.env[1])
			}

			_, err := LoadWithFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadWithFile_ExplicitCountdownKept(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "catch:\n  countdown_from: 1\n", 0600)

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Catch.CountdownFrom)
	assert.Equal(t, 2500*time.Millisecond, cfg.Intermission.Hold.Duration())
}

func TestLoadWithFile_RejectsInsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "catch:\n  victory_score: 20\n", 0644)

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure config file permissions")
}

func TestLoadWithFile_RejectsLargeFile(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "# "+strings.Repeat("x", maxConfigFileSize)+"\n", 0600)

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestLoadWithFile_RejectsPathOutsideAllowedDirs(t *testing.T) {
	setupTestHome(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path validation failed")
}

func TestLoadWithFile_InvalidValuesFailValidation(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "session:\n  backend: sqlite\n", 0600)

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.backend")
}

func TestLoadWithFile_NegativeDurationRejected(t *testing.T) {
	setupTestHome(t)
	t.Setenv("VAULT_CATCH_FRAME_INTERVAL", "-16ms")

	_, err := LoadWithFile("")
	require.Error(t, err)
}

func TestValidateConfigPath(t *testing.T) {
	dir := setupTestHome(t)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"user dir", filepath.Join(dir, "config.yaml"), false},
		{"user subdir", filepath.Join(dir, "profiles", "config.yaml"), false},
		{"system dir", "/etc/vault/config.yaml", false},
		{"sibling prefix", "/etc/vault-evil/config.yaml", true},
		{"traversal", filepath.Join(dir, "..", "..", "etc", "passwd"), true},
		{"elsewhere", "/tmp/config.yaml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"VAULT_CATCH_VICTORY_SCORE": "catch.victory_score",
		"VAULT_SESSION_REDIS_URL":   "session.redis_url",
		"VAULT_LOGGING_LEVEL":       "logging.level",
		"VAULT_SESSION":             "",
		"VAULT_":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, EnsureConfigDir())

	info, err := os.Stat(filepath.Join(home, ".config", "vault"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	}
}
