// Package types holds configuration types for gemini-bridge.yaml.
package types

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport names accepted by the server.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config represents the top-level gemini-bridge.yaml configuration.
type Config struct {
	Gemini GeminiConfig `yaml:"gemini"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// GeminiConfig configures the gemini CLI executor.
type GeminiConfig struct {
	Binary         string   `yaml:"binary"`
	DefaultModel   string   `yaml:"default_model,omitempty"`
	FallbackModel  string   `yaml:"fallback_model,omitempty"`
	Timeout        int      `yaml:"timeout"` // seconds
	MaxOutputBytes int      `yaml:"max_output_bytes"`
	EnvPassthrough []string `yaml:"env_passthrough,omitempty"`
	WorkDir        string   `yaml:"work_dir,omitempty"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport string   `yaml:"transport"` // stdio, http
	Addr      string   `yaml:"addr,omitempty"`
	Tools     []string `yaml:"tools,omitempty"` // empty exposes every tool
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Binary:         "gemini",
			FallbackModel:  "gemini-2.5-flash",
			Timeout:        600,
			MaxOutputBytes: 10 << 20,
			EnvPassthrough: []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "GOOGLE_CLOUD_PROJECT"},
		},
		Server: ServerConfig{
			Transport: TransportStdio,
			Addr:      ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// ParseConfig parses raw YAML bytes over the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing gemini-bridge config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Gemini.Binary == "" {
		return fmt.Errorf("gemini-bridge config: gemini.binary is required")
	}
	if c.Gemini.Timeout < 0 {
		return fmt.Errorf("gemini-bridge config: gemini.timeout must not be negative")
	}
	if c.Gemini.MaxOutputBytes < 0 {
		return fmt.Errorf("gemini-bridge config: gemini.max_output_bytes must not be negative")
	}

	switch c.Server.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.Server.Addr == "" {
			return fmt.Errorf("gemini-bridge config: server.addr is required for http transport")
		}
	default:
		return fmt.Errorf("gemini-bridge config: unknown server.transport %q (want stdio or http)", c.Server.Transport)
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("gemini-bridge config: unknown log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("gemini-bridge config: unknown log.format %q", c.Log.Format)
	}
	return nil
}

// TimeoutDuration returns the executor timeout as a time.Duration.
func (g GeminiConfig) TimeoutDuration() time.Duration {
	return time.Duration(g.Timeout) * time.Second
}
