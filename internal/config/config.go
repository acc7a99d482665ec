// Package config defines process configuration and how it is loaded.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Output formats for the parse command.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Serve runs the HTTP API instead of parsing EventsPath once.
	Serve bool `koanf:"serve"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// EventsPath and MetadataPath name the documents the parse command reads.
	// Comma-separated lists of equal length parse several matches.
	EventsPath   string `koanf:"events_path"`
	MetadataPath string `koanf:"metadata_path"`

	// OutputDir receives the exported tables. Empty disables file output.
	OutputDir string `koanf:"output_dir"`

	// OutputFormat is csv or json.
	OutputFormat string `koanf:"output_format"`

	// Store selects the match store: memory or redis.
	Store string `koanf:"store"`

	RedisURL        string `koanf:"redis_url"`
	RedisTTLSeconds int    `koanf:"redis_ttl_seconds"`
	RedisKeyPrefix  string `koanf:"redis_key_prefix"`

	// MaxMatches bounds the memory store. Zero means unbounded.
	MaxMatches int `koanf:"max_matches"`

	// PostgresDSN enables the PostgreSQL sink when set.
	PostgresDSN string `koanf:"postgres_dsn"`

	// BatchWorkers bounds concurrent parses of a batch.
	BatchWorkers int `koanf:"batch_workers"`

	// MaxUploadBytes caps the body of POST /v1/matches.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		OutputFormat:   FormatCSV,
		Store:          StoreMemory,
		RedisKeyPrefix: "touchline:",
		MaxMatches:     1_000,
		BatchWorkers:   runtime.NumCPU(),
		MaxUploadBytes: 64 << 20,
	}
}

// RedisTTL returns RedisTTLSeconds as a duration.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.RedisTTLSeconds) * time.Second
}

// Inputs pairs the comma-separated event and metadata paths.
func (c *Config) Inputs() ([][2]string, error) {
	events := splitList(c.EventsPath)
	metadata := splitList(c.MetadataPath)
	if len(events) != len(metadata) {
		return nil, fmt.Errorf("%w: %d events paths but %d metadata paths",
			ErrInvalidConfig, len(events), len(metadata))
	}
	out := make([][2]string, len(events))
	for i := range events {
		out[i] = [2]string{events[i], metadata[i]}
	}
	return out, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return invalid("log_format must be text or json, got %q", c.LogFormat)
	}
	switch c.OutputFormat {
	case FormatCSV, FormatJSON:
	default:
		return invalid("output_format must be csv or json, got %q", c.OutputFormat)
	}
	switch c.Store {
	case StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return invalid("redis_url is required when store is redis")
		}
	default:
		return invalid("store must be memory or redis, got %q", c.Store)
	}
	if c.RedisTTLSeconds < 0 {
		return invalid("redis_ttl_seconds must not be negative")
	}
	if c.MaxMatches < 0 {
		return invalid("max_matches must not be negative")
	}
	if c.BatchWorkers <= 0 {
		return invalid("batch_workers must be positive")
	}
	if c.Serve {
		if c.Addr == "" {
			return invalid("addr must not be empty")
		}
		if c.MaxUploadBytes <= 0 {
			return invalid("max_upload_bytes must be positive")
		}
		return nil
	}
	if c.EventsPath == "" || c.MetadataPath == "" {
		return invalid("events_path and metadata_path are required unless serve is set")
	}
	if _, err := c.Inputs(); err != nil {
		return err
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
