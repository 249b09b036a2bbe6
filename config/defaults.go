package config

import "time"

// Default runtime limits and guardrails for the dashboard server. These
// values are conservative and can be overridden via flags, environment
// (TABDASH_*), or a config file. They are referenced by internal/runtime.

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxSessions           = 8

	// Upload and preview bounds
	DefaultMaxUploadBytes   = 20 * 1024 * 1024 // 20MB
	DefaultPreviewPageSize  = 25
	MaxPreviewPageSize      = 200
	DefaultMaxFilterOptions = 100

	// Analysis defaults
	DefaultTopN              = 5
	MaxTopN                  = 50
	DefaultScatterSampleSize = 1000
)

const (
	// Timeouts and lifecycle
	DefaultOperationTimeout      = 30 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second
	DefaultSessionIdleTTL        = 30 * time.Minute
	DefaultSessionCleanupPeriod  = 5 * time.Minute
	DefaultShutdownTimeout       = 5 * time.Second
)

// DefaultListenAddr is the HTTP bind address when none is configured.
const DefaultListenAddr = ":8080"
