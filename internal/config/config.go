// Package config defines service configuration and its loading.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the grading job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of grading workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many answer submission keys are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// RemoteScorerURL is the enhanced relevance endpoint. Empty disables it.
	RemoteScorerURL string `koanf:"remote_scorer_url"`

	// RemoteScorerTimeoutMS bounds one remote scoring call.
	RemoteScorerTimeoutMS int `koanf:"remote_scorer_timeout_ms"`

	// DefaultQuestionCount is used when a session request names no count.
	DefaultQuestionCount int `koanf:"default_question_count"`

	// SessionTTLMinutes is how long finished sessions stay readable.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`

	// JanitorIntervalSeconds is the eviction job period.
	JanitorIntervalSeconds int `koanf:"janitor_interval_seconds"`

	// FinishTimeoutMS bounds how long finishing waits for grading.
	FinishTimeoutMS int `koanf:"finish_timeout_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		QueueSize:              1024,
		WorkerCount:            runtime.NumCPU() * 2,
		DedupeSize:             50_000,
		RemoteScorerTimeoutMS:  3000,
		DefaultQuestionCount:   5,
		SessionTTLMinutes:      60,
		JanitorIntervalSeconds: 60,
		FinishTimeoutMS:        10_000,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.DefaultQuestionCount < 1:
		return fmt.Errorf("%w: default_question_count must be positive", ErrInvalidConfig)
	case c.SessionTTLMinutes < 0:
		return fmt.Errorf("%w: session_ttl_minutes must not be negative", ErrInvalidConfig)
	case c.JanitorIntervalSeconds < 1:
		return fmt.Errorf("%w: janitor_interval_seconds must be positive", ErrInvalidConfig)
	case c.RemoteScorerTimeoutMS < 1:
		return fmt.Errorf("%w: remote_scorer_timeout_ms must be positive", ErrInvalidConfig)
	case c.FinishTimeoutMS < 1:
		return fmt.Errorf("%w: finish_timeout_ms must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}

// RemoteScorerTimeout returns the remote call bound.
func (c *Config) RemoteScorerTimeout() time.Duration {
	return time.Duration(c.RemoteScorerTimeoutMS) * time.Millisecond
}

// SessionTTL returns how long finished sessions are kept.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// JanitorInterval returns the eviction job period.
func (c *Config) JanitorInterval() time.Duration {
	return time.Duration(c.JanitorIntervalSeconds) * time.Second
}

// FinishTimeout returns how long finishing waits for grading.
func (c *Config) FinishTimeout() time.Duration {
	return time.Duration(c.FinishTimeoutMS) * time.Millisecond
}
