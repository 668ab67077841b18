package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix is the prefix shared by every environment override.
	EnvPrefix = "VAULT_"
)

// LoadWithFile loads configuration from a YAML file, then overrides with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (VAULT_CATCH_VICTORY_SCORE, VAULT_SESSION_BACKEND, etc.)
//  2. YAML config file (~/.config/vault/config.yaml)
//  3. Hardcoded defaults
//
// The configPath parameter specifies the YAML file to load. If empty, the
// default path is used. A missing file is not an error.
//
// # Security Considerations
//
// The file MUST have 0600 or 0400 permissions, because it carries the gate
// answers. It must live under ~/.config/vault/ or /etc/vault/ and be at most
// 1MB.
//
// # Environment Variable Mapping
//
// The VAULT_ prefix is stripped and the remainder split on its first
// underscore:
//
//	VAULT_CATCH_VICTORY_SCORE -> catch.victory_score
//	VAULT_SESSION_REDIS_URL   -> session.redis_url
//	VAULT_GATE_ACCEPTED       -> gate.accepted (comma separated)
//
// Variables without a field part (VAULT_SESSION) are ignored here.
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(dir, "config.yaml")
	}

	if err := validateConfigPath(configPath); err != nil {
		return nil, fmt.Errorf("config path validation failed: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		// Open once and validate through the descriptor to avoid a TOCTOU race.
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if err := validateConfigFileProperties(info); err != nil {
			return nil, fmt.Errorf("config file validation failed: %w", err)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := rejectExplicitZeros(k, &cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envKey maps VAULT_SECTION_FIELD_NAME to section.field_name. An empty result
// tells koanf to skip the variable.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	return parts[0] + "." + parts[1]
}

// listKeys are the settings whose environment value is a comma separated list.
var listKeys = map[string]bool{
	"gate.accepted":          true,
	"memory.symbols":         true,
	"catch.victory_messages": true,
}

// envValue maps an environment variable to its koanf key and value. List
// settings are split on commas; blank elements are dropped.
func envValue(name, value string) (string, interface{}) {
	key := envKey(name)
	if key == "" || !listKeys[key] {
		return key, value
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// zeroDefaulted lists settings where the zero value means "use the default".
// Setting one of them to zero explicitly is an error instead of a silent
// fallback.
var zeroDefaulted = []struct {
	key    string
	isZero func(*Config) bool
}{
	{"gate.escalate_after", func(c *Config) bool { return c.Gate.EscalateAfter == 0 }},
	{"memory.mismatch_delay", func(c *Config) bool { return c.Memory.MismatchDelay == 0 }},
	{"memory.complete_delay", func(c *Config) bool { return c.Memory.CompleteDelay == 0 }},
	{"catch.victory_score", func(c *Config) bool { return c.Catch.VictoryScore == 0 }},
	{"catch.countdown_from", func(c *Config) bool { return c.Catch.CountdownFrom == 0 }},
	{"catch.countdown_step", func(c *Config) bool { return c.Catch.CountdownStep == 0 }},
	{"catch.frame_interval", func(c *Config) bool { return c.Catch.FrameInterval == 0 }},
	{"intermission.char_interval", func(c *Config) bool { return c.Intermission.CharInterval == 0 }},
	{"intermission.hold", func(c *Config) bool { return c.Intermission.Hold == 0 }},
	{"dashboard.scroll_interval", func(c *Config) bool { return c.Dashboard.ScrollInterval == 0 }},
}

func rejectExplicitZeros(k *koanf.Koanf, cfg *Config) error {
	for _, z := range zeroDefaulted {
		if k.Exists(z.key) && z.isZero(cfg) {
			return fmt.Errorf("%s must be greater than zero", z.key)
		}
	}
	return nil
}

// Dir returns the per-user vault config directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vault"), nil
}

// EnsureConfigDir creates the vault config directory with 0700 permissions.
func EnsureConfigDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return nil
}

// validateConfigPath checks if path is in allowed directories.
// This validation runs even if the file doesn't exist yet.
func validateConfigPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// Follow symlinks so they cannot escape the allowed directories.
	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		resolvedPath = absPath
	}

	userDir, err := Dir()
	if err != nil {
		return err
	}

	for _, dir := range []string{userDir, "/etc/vault"} {
		if resolvedPath == dir || strings.HasPrefix(resolvedPath, dir+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("config file must be in ~/.config/vault/ or /etc/vault/")
}

// validateConfigFileProperties checks file permissions and size.
// Takes FileInfo from an already-opened file descriptor.
func validateConfigFileProperties(info os.FileInfo) error {
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	// Gate defaults
	if len(cfg.Gate.Accepted) == 0 {
		cfg.Gate.Accepted = []Secret{"10/08/24", "10/08/2024", "2024-10-08", "10-08-24", "10-08-2024"}
	}
	if cfg.Gate.EscalateAfter == 0 {
		cfg.Gate.EscalateAfter = 2
	}
	if cfg.Gate.Instruction == "" {
		cfg.Gate.Instruction = "Enter the date to unlock the vault."
	}
	if cfg.Gate.DateInstruction == "" {
		cfg.Gate.DateInstruction = "When did our story start?"
	}
	if cfg.Gate.QuickWinMessage == "" {
		cfg.Gate.QuickWinMessage = "Wow, Lakas ng Chamba! HAHAHAHA"
	}
	if cfg.Gate.PersistedMessage == "" {
		cfg.Gate.PersistedMessage = "Wow tumama na! jke I love you!"
	}
	if cfg.Gate.MisdirectionMessage == "" {
		cfg.Gate.MisdirectionMessage = "Do you think it's the date na naging officially in a relationship tayo? Hmm, MALI HAHAHA\n\n" +
			"Hint: The day we started our conversation… backread ka muna 😏"
	}

	// Memory defaults
	if len(cfg.Memory.Symbols) == 0 {
		cfg.Memory.Symbols = []string{"♥", "♦", "♣", "♠", "Q", "K"}
	}
	if cfg.Memory.MismatchDelay == 0 {
		cfg.Memory.MismatchDelay = Duration(800 * time.Millisecond)
	}
	if cfg.Memory.CompleteDelay == 0 {
		cfg.Memory.CompleteDelay = Duration(600 * time.Millisecond)
	}
	if cfg.Memory.CompletionMessage == "" {
		cfg.Memory.CompletionMessage = "Life is a deck of cards, and I'm so lucky I found my perfect partner in you. ❤️"
	}

	// Catch defaults (pixel units, scaled to cells by the terminal view)
	if cfg.Catch.Height == 0 {
		cfg.Catch.Height = 300
	}
	if cfg.Catch.PaddleWidth == 0 {
		cfg.Catch.PaddleWidth = 80
	}
	if cfg.Catch.PaddleHeight == 0 {
		cfg.Catch.PaddleHeight = 15
	}
	if cfg.Catch.PaddleOffset == 0 {
		cfg.Catch.PaddleOffset = 30
	}
	if cfg.Catch.VictoryScore == 0 {
		cfg.Catch.VictoryScore = 15
	}
	if cfg.Catch.CountdownFrom == 0 {
		cfg.Catch.CountdownFrom = 3
	}
	if cfg.Catch.CountdownStep == 0 {
		cfg.Catch.CountdownStep = Duration(time.Second)
	}
	if cfg.Catch.FrameInterval == 0 {
		cfg.Catch.FrameInterval = Duration(16 * time.Millisecond)
	}
	if len(cfg.Catch.VictoryMessages) == 0 {
		cfg.Catch.VictoryMessages = []string{
			"You caught every heart... but you only needed mine. ❤️",
			"Score: Perfect. My heart? Also yours. 👑",
		}
	}

	// Intermission defaults
	if cfg.Intermission.Text == "" {
		cfg.Intermission.Text = "I hope those made you smile... but I have something more to show you."
	}
	if cfg.Intermission.CharInterval == 0 {
		cfg.Intermission.CharInterval = Duration(60 * time.Millisecond)
	}
	if cfg.Intermission.Hold == 0 {
		cfg.Intermission.Hold = Duration(2500 * time.Millisecond)
	}

	// Dashboard defaults
	if cfg.Dashboard.StartDate == "" {
		cfg.Dashboard.StartDate = "2024-10-08"
	}
	if cfg.Dashboard.ScrollInterval == 0 {
		cfg.Dashboard.ScrollInterval = Duration(30 * time.Millisecond)
	}
	if cfg.Dashboard.ScrollStartDelay == 0 {
		cfg.Dashboard.ScrollStartDelay = Duration(100 * time.Millisecond)
	}
	if len(cfg.Dashboard.Galleries) == 0 {
		cfg.Dashboard.Galleries = []GalleryConfig{
			{ID: "gallery-firsts", Items: []string{"first chat", "first call", "first date", "first movie", "first road trip", "first sunrise"}},
			{ID: "gallery-favorites", Items: []string{"late-night talks", "street food runs", "rainy walks", "karaoke nights", "lazy sundays", "inside jokes"}},
		}
	}
	if cfg.Dashboard.Lyrics == "" {
		cfg.Dashboard.Lyrics = "you are my sunshine, my only sunshine"
	}
	if cfg.Dashboard.LyricsRepeat == 0 {
		cfg.Dashboard.LyricsRepeat = 150
	}
	if cfg.Dashboard.Letter == "" {
		cfg.Dashboard.Letter = "Bebe,\n\nEvery day since we started talking has been my favorite day. " +
			"Thank you for the laughs, the patience and the love.\n\nWill you be my Valentine?"
	}
	if cfg.Dashboard.ReplyMessage == "" {
		cfg.Dashboard.ReplyMessage = "I knew you'd say yes! I've locked it in. I love you, Bebe! 🌹"
	}

	// Session defaults
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = BackendFile
	}
	if cfg.Session.Dir == "" {
		cfg.Session.Dir = filepath.Join(os.TempDir(), "vault-sessions")
	}
	if cfg.Session.KeyPrefix == "" {
		cfg.Session.KeyPrefix = "vault:stage:"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = Duration(12 * time.Hour)
	}

	// Audio defaults
	if cfg.Audio.MaxVolume == 0 {
		cfg.Audio.MaxVolume = 0.5
	}
	if cfg.Audio.FadeStep == 0 {
		cfg.Audio.FadeStep = 0.05
	}
	if cfg.Audio.FadeInterval == 0 {
		cfg.Audio.FadeInterval = Duration(200 * time.Millisecond)
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Path == "" {
		cfg.Logging.Path = filepath.Join(os.TempDir(), "vault", "vault.log")
	}

	// Telemetry defaults
	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "vault"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = Duration(15 * time.Second)
	}
}
