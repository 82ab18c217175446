// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory observation queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the history store.
	ShardCount int `koanf:"shard_count"`

	// DefaultWindowDays is the display window used when a recovery request
	// omits one. Must be 7, 14 or 28.
	DefaultWindowDays int `koanf:"default_window_days"`

	// Base risk thresholds before genotype adjustment.
	BaseACWRThreshold     float64 `koanf:"base_acwr_threshold"`
	BaseMonotonyThreshold float64 `koanf:"base_monotony_threshold"`
	BaseStrainThreshold   float64 `koanf:"base_strain_threshold"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		QueueSize:             100_000,
		WorkerCount:           runtime.NumCPU() * 4,
		DedupeSize:            500_000,
		ShardCount:            32,
		DefaultWindowDays:     7,
		BaseACWRThreshold:     1.5,
		BaseMonotonyThreshold: 2.0,
		BaseStrainThreshold:   6000,
	}
}
