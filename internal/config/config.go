// Package config loads and validates the renovoice YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Session    SessionConfig    `yaml:"session"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Relay      RelayConfig      `yaml:"relay"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Escalation EscalationConfig `yaml:"escalation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SessionConfig controls the live session's model and audio parameters.
type SessionConfig struct {
	Model        string   `yaml:"model"`
	Voice        string   `yaml:"voice"`
	Modalities   []string `yaml:"modalities"`
	SampleRateHz int      `yaml:"sample_rate_hz"`
	Channels     int      `yaml:"channels"`
	ChunkMs      int      `yaml:"chunk_ms"`
}

// GeminiConfig configures the direct model backend. The API key falls
// back to the GEMINI_API_KEY environment variable when left empty.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
}

// RelayConfig configures the optional websocket relay backend. When URL
// is set the relay is used instead of the direct backend.
type RelayConfig struct {
	URL         string `yaml:"url"`
	BearerToken string `yaml:"bearer_token"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// EscalationConfig configures Kafka forwarding of ended conversations.
type EscalationConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration suitable for running against the
// direct Gemini backend with only GEMINI_API_KEY set.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			Model:        "gemini-2.0-flash-live-001",
			Voice:        "Puck",
			Modalities:   []string{"audio"},
			SampleRateHz: 24000,
			Channels:     1,
			ChunkMs:      20,
		},
		Metrics: MetricsConfig{Address: ":9090"},
		Escalation: EscalationConfig{
			Topic: "conversations.forwarded",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads the configuration file at path, layered over defaults. A
// missing file is not an error; the defaults are returned instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session config: %w", err)
	}
	if err := c.Relay.Validate(); err != nil {
		return fmt.Errorf("relay config: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}
	if err := c.Escalation.Validate(); err != nil {
		return fmt.Errorf("escalation config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates the session section.
func (s *SessionConfig) Validate() error {
	if s.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if s.SampleRateHz < 8000 || s.SampleRateHz > 48000 {
		return fmt.Errorf("sample_rate_hz must be between 8000 and 48000, got %d", s.SampleRateHz)
	}
	if s.Channels != 1 {
		return fmt.Errorf("channels must be 1 (mono), got %d", s.Channels)
	}
	if s.ChunkMs < 10 || s.ChunkMs > 200 {
		return fmt.Errorf("chunk_ms must be between 10 and 200, got %d", s.ChunkMs)
	}
	for _, m := range s.Modalities {
		if m != "text" && m != "audio" {
			return fmt.Errorf("modalities must be 'text' or 'audio', got '%s'", m)
		}
	}
	return nil
}

// Validate validates the relay section.
func (r *RelayConfig) Validate() error {
	if r.URL == "" {
		return nil
	}
	if len(r.URL) < 6 || (r.URL[:5] != "ws://" && r.URL[:6] != "wss://") {
		return fmt.Errorf("url must start with ws:// or wss://, got '%s'", r.URL)
	}
	return nil
}

// Validate validates the metrics section.
func (m *MetricsConfig) Validate() error {
	if m.Enabled && m.Address == "" {
		return fmt.Errorf("address cannot be empty when metrics are enabled")
	}
	return nil
}

// Validate validates the escalation section.
func (e *EscalationConfig) Validate() error {
	if !e.Enabled {
		return nil
	}
	if len(e.Brokers) == 0 {
		return fmt.Errorf("brokers cannot be empty when escalation is enabled")
	}
	if e.Topic == "" {
		return fmt.Errorf("topic cannot be empty when escalation is enabled")
	}
	return nil
}

// Validate validates the logging section.
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}
	return nil
}

// ChunkDuration returns the capture chunk size as a time.Duration.
func (s *SessionConfig) ChunkDuration() time.Duration {
	return time.Duration(s.ChunkMs) * time.Millisecond
}
