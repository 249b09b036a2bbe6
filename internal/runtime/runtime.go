package runtime

import (
	"context"
	"time"

	"github.com/skalyan/tabdash/config"
	"golang.org/x/sync/semaphore"
)

// Limits captures the concurrency and dataset guardrails configured for the server.
type Limits struct {
	// Concurrency caps
	MaxConcurrentRequests int
	MaxSessions           int

	// Upload and result bounds
	MaxUploadBytes    int64
	PreviewPageSize   int
	MaxFilterOptions  int
	TopN              int
	ScatterSampleSize int

	// Timeouts
	OperationTimeout      time.Duration
	AcquireRequestTimeout time.Duration
}

// NewLimits initializes Limits with sensible fallbacks when values are unset.
func NewLimits(maxConcurrentRequests, maxSessions int) Limits {
	if maxConcurrentRequests <= 0 {
		maxConcurrentRequests = config.DefaultMaxConcurrentRequests
	}
	if maxSessions <= 0 {
		maxSessions = config.DefaultMaxSessions
	}

	return Limits{
		MaxConcurrentRequests: maxConcurrentRequests,
		MaxSessions:           maxSessions,
		MaxUploadBytes:        config.DefaultMaxUploadBytes,
		PreviewPageSize:       config.DefaultPreviewPageSize,
		MaxFilterOptions:      config.DefaultMaxFilterOptions,
		TopN:                  config.DefaultTopN,
		ScatterSampleSize:     config.DefaultScatterSampleSize,
		OperationTimeout:      config.DefaultOperationTimeout,
		AcquireRequestTimeout: config.DefaultAcquireRequestTimeout,
	}
}

// LimitsFromSettings maps resolved configuration onto runtime Limits.
func LimitsFromSettings(s *config.Settings) Limits {
	l := NewLimits(s.MaxConcurrentRequests, s.MaxSessions)
	if s.MaxUploadBytes > 0 {
		l.MaxUploadBytes = s.MaxUploadBytes
	}
	if s.PreviewPageSize > 0 {
		l.PreviewPageSize = s.PreviewPageSize
	}
	if s.MaxFilterOptions > 0 {
		l.MaxFilterOptions = s.MaxFilterOptions
	}
	if s.TopN > 0 {
		l.TopN = s.TopN
	}
	if s.ScatterSampleSize > 0 {
		l.ScatterSampleSize = s.ScatterSampleSize
	}
	if s.OperationTimeout > 0 {
		l.OperationTimeout = s.OperationTimeout
	}
	if s.AcquireRequestTimeout > 0 {
		l.AcquireRequestTimeout = s.AcquireRequestTimeout
	}
	return l
}

// Controller coordinates runtime semaphores for request and session guardrails.
type Controller struct {
	limits           Limits
	requestSemaphore *semaphore.Weighted
	sessionSemaphore *semaphore.Weighted
}

// NewController constructs a Controller backed by weighted semaphores.
func NewController(limits Limits) *Controller {
	return &Controller{
		limits:           limits,
		requestSemaphore: semaphore.NewWeighted(int64(limits.MaxConcurrentRequests)),
		sessionSemaphore: semaphore.NewWeighted(int64(limits.MaxSessions)),
	}
}

// AcquireRequest reserves capacity for an incoming request.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	return c.requestSemaphore.Acquire(ctx, 1)
}

// ReleaseRequest frees previously-acquired request capacity.
func (c *Controller) ReleaseRequest() {
	c.requestSemaphore.Release(1)
}

// AcquireSession reserves an active session slot.
func (c *Controller) AcquireSession(ctx context.Context) error {
	return c.sessionSemaphore.Acquire(ctx, 1)
}

// ReleaseSession frees an active session slot.
func (c *Controller) ReleaseSession() {
	c.sessionSemaphore.Release(1)
}

// LimitsSnapshot exposes the configured guardrails for telemetry and handlers.
func (c *Controller) LimitsSnapshot() Limits {
	return c.limits
}
