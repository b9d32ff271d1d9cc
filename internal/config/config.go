// Package config defines service configuration and how it is loaded.
//
// Conventions:
// - New returns a Config holding every default.
// - Load layers an optional YAML file and PLAYLAB_* env vars over New.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of job workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize caps the remembered idempotency keys.
	DedupeSize int `koanf:"dedupe_size"`

	// JobRetention is how many finished jobs stay queryable.
	JobRetention int `koanf:"job_retention"`

	// MaxLeaderboardLimit caps GET /v1/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// MaxLeaderboardEntries caps the number of ranked playlists. Zero is unbounded.
	MaxLeaderboardEntries int `koanf:"max_leaderboard_entries"`

	// MaxTracksPerPlaylist bounds request payloads.
	MaxTracksPerPlaylist int `koanf:"max_tracks_per_playlist"`

	// RateLimitRequests per RateLimitWindowMS per client IP on compute
	// endpoints. Zero disables rate limiting.
	RateLimitRequests int `koanf:"rate_limit_requests"`
	RateLimitWindowMS int `koanf:"rate_limit_window_ms"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		QueueSize:             1024,
		WorkerCount:           runtime.NumCPU(),
		DedupeSize:            100_000,
		JobRetention:          10_000,
		MaxLeaderboardLimit:   100,
		MaxLeaderboardEntries: 0,
		MaxTracksPerPlaylist:  10_000,
		RateLimitRequests:     100,
		RateLimitWindowMS:     1000,
	}
}

// RateLimitWindow returns the rate limit window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("addr must not be empty: %w", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("log_format %q must be text or json: %w", c.LogFormat, ErrInvalidConfig)
	}

	positive := []struct {
		key string
		val int
	}{
		{"queue_size", c.QueueSize},
		{"worker_count", c.WorkerCount},
		{"dedupe_size", c.DedupeSize},
		{"job_retention", c.JobRetention},
		{"max_leaderboard_limit", c.MaxLeaderboardLimit},
		{"max_tracks_per_playlist", c.MaxTracksPerPlaylist},
	}
	for _, p := range positive {
		if p.val <= 0 {
			return fmt.Errorf("%s must be positive, got %d: %w", p.key, p.val, ErrInvalidConfig)
		}
	}

	if c.MaxLeaderboardEntries < 0 {
		return fmt.Errorf("max_leaderboard_entries must not be negative: %w", ErrInvalidConfig)
	}
	if c.RateLimitRequests < 0 {
		return fmt.Errorf("rate_limit_requests must not be negative: %w", ErrInvalidConfig)
	}
	if c.RateLimitRequests > 0 && c.RateLimitWindowMS <= 0 {
		return fmt.Errorf("rate_limit_window_ms must be positive when rate limiting: %w", ErrInvalidConfig)
	}
	return nil
}
