package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/skalyan/tabdash/config"
	"github.com/stretchr/testify/require"
)

func TestControllerAcquireRelease(t *testing.T) {
	limits := NewLimits(1, 1)
	controller := NewController(limits)

	require.Equal(t, limits, controller.LimitsSnapshot())

	require.NoError(t, controller.AcquireRequest(context.Background()))
	controller.ReleaseRequest()

	require.NoError(t, controller.AcquireSession(context.Background()))
	controller.ReleaseSession()
}

func TestNewLimitsDefaults(t *testing.T) {
	limits := NewLimits(0, 0)
	require.Equal(t, config.DefaultMaxConcurrentRequests, limits.MaxConcurrentRequests)
	require.Equal(t, config.DefaultMaxSessions, limits.MaxSessions)
	require.Equal(t, int64(config.DefaultMaxUploadBytes), limits.MaxUploadBytes)
	require.Equal(t, config.DefaultOperationTimeout, limits.OperationTimeout)
}

func TestLimitsFromSettings(t *testing.T) {
	s := &config.Settings{
		MaxConcurrentRequests: 3,
		MaxSessions:           2,
		MaxUploadBytes:        1024,
		PreviewPageSize:       10,
		TopN:                  7,
		OperationTimeout:      time.Second,
	}
	limits := LimitsFromSettings(s)
	require.Equal(t, 3, limits.MaxConcurrentRequests)
	require.Equal(t, 2, limits.MaxSessions)
	require.Equal(t, int64(1024), limits.MaxUploadBytes)
	require.Equal(t, 10, limits.PreviewPageSize)
	require.Equal(t, 7, limits.TopN)
	require.Equal(t, time.Second, limits.OperationTimeout)
	// Unset values fall back to defaults.
	require.Equal(t, config.DefaultScatterSampleSize, limits.ScatterSampleSize)
}
