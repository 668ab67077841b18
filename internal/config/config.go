// Package config provides configuration loading for vault.
//
// Configuration is assembled from hardcoded defaults, an optional YAML file and
// VAULT_* environment variables. See LoadWithFile for precedence rules.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete vault configuration.
type Config struct {
	Gate         GateConfig         `koanf:"gate"`
	Memory       MemoryConfig       `koanf:"memory"`
	Catch        CatchConfig        `koanf:"catch"`
	Intermission IntermissionConfig `koanf:"intermission"`
	Dashboard    DashboardConfig    `koanf:"dashboard"`
	Session      SessionConfig      `koanf:"session"`
	Audio        AudioConfig        `koanf:"audio"`
	Logging      LoggingConfig      `koanf:"logging"`
	Telemetry    TelemetryConfig    `koanf:"telemetry"`
}

// GateConfig holds the stage 1 gatekeeper settings.
type GateConfig struct {
	Accepted            []Secret `koanf:"accepted"`
	EscalateAfter       int      `koanf:"escalate_after"`
	Instruction         string   `koanf:"instruction"`
	DateInstruction     string   `koanf:"date_instruction"`
	QuickWinMessage     string   `koanf:"quick_win_message"`
	PersistedMessage    string   `koanf:"persisted_message"`
	MisdirectionMessage string   `koanf:"misdirection_message"`
}

// MemoryConfig holds the memory-match settings.
type MemoryConfig struct {
	Symbols           []string `koanf:"symbols"`
	MismatchDelay     Duration `koanf:"mismatch_delay"`
	CompleteDelay     Duration `koanf:"complete_delay"`
	CompletionMessage string   `koanf:"completion_message"`
}

// CatchConfig holds the catch-game settings. Spawn rates and score deltas are
// fixed by the engine and deliberately absent here.
type CatchConfig struct {
	Height          float64  `koanf:"height"`
	PaddleWidth     float64  `koanf:"paddle_width"`
	PaddleHeight    float64  `koanf:"paddle_height"`
	PaddleOffset    float64  `koanf:"paddle_offset"`
	VictoryScore    int      `koanf:"victory_score"`
	CountdownFrom   int      `koanf:"countdown_from"`
	CountdownStep   Duration `koanf:"countdown_step"`
	FrameInterval   Duration `koanf:"frame_interval"`
	Seed            int64    `koanf:"seed"` // 0 seeds from the clock
	VictoryMessages []string `koanf:"victory_messages"`
}

// IntermissionConfig holds the stage 4 typewriter settings.
type IntermissionConfig struct {
	Text         string   `koanf:"text"`
	CharInterval Duration `koanf:"char_interval"`
	Hold         Duration `koanf:"hold"`
}

// GalleryConfig describes one horizontally scrolling gallery strip.
type GalleryConfig struct {
	ID    string   `koanf:"id"`
	Items []string `koanf:"items"`
}

// DashboardConfig holds the stage 5 dashboard settings.
type DashboardConfig struct {
	StartDate        string          `koanf:"start_date"`
	ScrollInterval   Duration        `koanf:"scroll_interval"`
	ScrollStartDelay Duration        `koanf:"scroll_start_delay"`
	Galleries        []GalleryConfig `koanf:"galleries"`
	Lyrics           string          `koanf:"lyrics"`
	LyricsRepeat     int             `koanf:"lyrics_repeat"`
	Letter           string          `koanf:"letter"`
	ReplyMessage     string          `koanf:"reply_message"`
}

// SessionConfig selects where the current stage is persisted.
type SessionConfig struct {
	Backend   string   `koanf:"backend"` // file, redis or memory
	Dir       string   `koanf:"dir"`
	RedisURL  Secret   `koanf:"redis_url"`
	KeyPrefix string   `koanf:"key_prefix"`
	TTL       Duration `koanf:"ttl"`
}

// AudioConfig controls the celebration track.
type AudioConfig struct {
	Track        string   `koanf:"track"` // empty disables music
	MaxVolume    float64  `koanf:"max_volume"`
	FadeStep     float64  `koanf:"fade_step"`
	FadeInterval Duration `koanf:"fade_interval"`
}

// LoggingConfig holds the subset of logging settings exposed to users.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Path   string `koanf:"path"`
}

// TelemetryConfig holds OpenTelemetry exporter settings.
type TelemetryConfig struct {
	Enabled        bool     `koanf:"enabled"`
	Endpoint       string   `koanf:"endpoint"`
	Protocol       string   `koanf:"protocol"` // grpc or http/protobuf
	Insecure       bool     `koanf:"insecure"`
	ServiceName    string   `koanf:"service_name"`
	ExportInterval Duration `koanf:"export_interval"`
}

// Session backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Default returns a Config populated with defaults.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Gate.Accepted) == 0 {
		return errors.New("gate.accepted must list at least one answer")
	}
	for i, a := range c.Gate.Accepted {
		if !a.IsSet() {
			return fmt.Errorf("gate.accepted[%d] is empty", i)
		}
	}
	if c.Gate.EscalateAfter < 1 {
		return fmt.Errorf("gate.escalate_after must be >= 1, got %d", c.Gate.EscalateAfter)
	}

	if len(c.Memory.Symbols) < 2 {
		return fmt.Errorf("memory.symbols needs at least 2 symbols, got %d", len(c.Memory.Symbols))
	}
	seen := make(map[string]bool, len(c.Memory.Symbols))
	for _, s := range c.Memory.Symbols {
		if s == "" || seen[s] {
			return fmt.Errorf("memory.symbols must be unique and non-empty: %q", s)
		}
		seen[s] = true
	}
	if c.Memory.MismatchDelay <= 0 || c.Memory.CompleteDelay <= 0 {
		return errors.New("memory delays must be positive")
	}

	if c.Catch.PaddleWidth <= 0 || c.Catch.PaddleHeight <= 0 {
		return errors.New("catch paddle dimensions must be positive")
	}
	if c.Catch.Height <= c.Catch.PaddleOffset {
		return fmt.Errorf("catch.height (%v) must exceed catch.paddle_offset (%v)", c.Catch.Height, c.Catch.PaddleOffset)
	}
	if c.Catch.VictoryScore < 1 {
		return fmt.Errorf("catch.victory_score must be >= 1, got %d", c.Catch.VictoryScore)
	}
	if c.Catch.CountdownFrom < 1 {
		return fmt.Errorf("catch.countdown_from must be >= 1, got %d", c.Catch.CountdownFrom)
	}
	if c.Catch.CountdownStep <= 0 || c.Catch.FrameInterval <= 0 {
		return errors.New("catch countdown_step and frame_interval must be positive")
	}
	if len(c.Catch.VictoryMessages) == 0 {
		return errors.New("catch.victory_messages must not be empty")
	}

	if c.Intermission.CharInterval <= 0 {
		return errors.New("intermission.char_interval must be positive")
	}
	if c.Intermission.Hold <= 0 {
		return errors.New("intermission.hold must be positive")
	}

	if _, err := time.Parse(time.DateOnly, c.Dashboard.StartDate); err != nil {
		return fmt.Errorf("dashboard.start_date: %w", err)
	}
	if c.Dashboard.ScrollInterval <= 0 {
		return errors.New("dashboard.scroll_interval must be positive")
	}
	for i, g := range c.Dashboard.Galleries {
		if g.ID == "" {
			return fmt.Errorf("dashboard.galleries[%d].id is required", i)
		}
	}

	switch c.Session.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if !c.Session.RedisURL.IsSet() {
			return errors.New("session.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("session.backend must be file, redis or memory, got %q", c.Session.Backend)
	}

	if c.Audio.MaxVolume < 0 || c.Audio.MaxVolume > 1 {
		return fmt.Errorf("audio.max_volume must be between 0 and 1, got %v", c.Audio.MaxVolume)
	}
	if c.Audio.FadeStep <= 0 {
		return errors.New("audio.fade_step must be positive")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return errors.New("telemetry.endpoint is required when telemetry is enabled")
	}

	return nil
}
