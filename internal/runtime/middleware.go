package runtime

import (
	"context"
	"fmt"
	"net/http"
)

// Middleware enforces runtime limits for HTTP requests using the Controller.
// It bounds global concurrency and applies an operation timeout per request.
type Middleware struct {
	ctrl *Controller
}

// NewMiddleware constructs a Middleware bound to the provided Controller.
func NewMiddleware(ctrl *Controller) *Middleware {
	return &Middleware{ctrl: ctrl}
}

// Wrap returns a handler that acquires a request slot with a bounded wait,
// applies the operation timeout, and guarantees release.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acquireCtx := r.Context()
		if m.ctrl.limits.AcquireRequestTimeout > 0 {
			var cancel context.CancelFunc
			acquireCtx, cancel = context.WithTimeout(acquireCtx, m.ctrl.limits.AcquireRequestTimeout)
			defer cancel()
		}

		if err := m.ctrl.AcquireRequest(acquireCtx); err != nil {
			w.Header().Set("Retry-After", "1")
			msg := fmt.Sprintf("BUSY_RESOURCE: concurrent request limit reached (max=%d); retry shortly", m.ctrl.limits.MaxConcurrentRequests)
			http.Error(w, msg, http.StatusServiceUnavailable)
			return
		}
		defer m.ctrl.ReleaseRequest()

		callCtx := r.Context()
		cancel := func() {}
		if m.ctrl.limits.OperationTimeout > 0 {
			callCtx, cancel = context.WithTimeout(callCtx, m.ctrl.limits.OperationTimeout)
		}
		defer cancel()

		next.ServeHTTP(w, r.WithContext(callCtx))
	})
}
