package runtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWrapAppliesOperationTimeout(t *testing.T) {
	limits := NewLimits(2, 2)
	limits.OperationTimeout = 20 * time.Millisecond
	mw := NewMiddleware(NewController(limits))

	h := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok := r.Context().Deadline()
		require.True(t, ok)
		require.WithinDuration(t, time.Now().Add(limits.OperationTimeout), deadline, 15*time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWrapRejectsWhenBusy(t *testing.T) {
	limits := NewLimits(1, 1)
	limits.AcquireRequestTimeout = 10 * time.Millisecond
	ctrl := NewController(limits)
	mw := NewMiddleware(ctrl)

	// Occupy the single request slot.
	require.NoError(t, ctrl.AcquireRequest(context.Background()))
	defer ctrl.ReleaseRequest()

	rec := httptest.NewRecorder()
	h := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run while capacity is exhausted")
	}))
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "BUSY_RESOURCE")
}

func TestWrapReleasesCapacity(t *testing.T) {
	limits := NewLimits(1, 1)
	mw := NewMiddleware(NewController(limits))

	h := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// Sequential requests should all succeed if the slot is released.
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
}
