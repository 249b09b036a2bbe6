package telemetry

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Hooks implements server lifecycle callbacks for basic telemetry and logging.
// It is intentionally minimal; metrics backends can be added later under this package.
type Hooks struct {
	logger zerolog.Logger
}

// NewHooks constructs a Hooks instance with the provided logger.
func NewHooks(logger zerolog.Logger) *Hooks {
	return &Hooks{logger: logger}
}

// OnServerStart is called when the server begins accepting connections.
func (h *Hooks) OnServerStart(addr string) {
	h.logger.Info().Str("addr", addr).Msg("dashboard server starting")
}

// OnServerStop is called during server shutdown.
func (h *Hooks) OnServerStop() {
	h.logger.Info().Msg("dashboard server stopping")
}

// OnSessionCreate records the creation of a dashboard session from an upload.
func (h *Hooks) OnSessionCreate(sessionID, filename string, rows, cols int) {
	h.logger.Info().
		Str("session_id", sessionID).
		Str("filename", filename).
		Int("rows", rows).
		Int("cols", cols).
		Msg("session created")
}

// OnSessionEvict records the removal of an idle session.
func (h *Hooks) OnSessionEvict(sessionID string) {
	h.logger.Info().Str("session_id", sessionID).Msg("session evicted")
}

// statusRecorder captures the response status code for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// AccessLog wraps next with per-request structured logging: method, path,
// status, and duration. Errors surface via 5xx status codes.
func (h *Hooks) AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		evt := h.logger.Info()
		if rec.status >= http.StatusInternalServerError {
			evt = h.logger.Error()
		}
		evt.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}
