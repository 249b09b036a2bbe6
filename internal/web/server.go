package web

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/skalyan/tabdash/internal/runtime"
	"github.com/skalyan/tabdash/internal/security"
	"github.com/skalyan/tabdash/internal/sessions"
	"github.com/skalyan/tabdash/internal/telemetry"
)

// sessionCookie carries the dashboard session ID between requests.
const sessionCookie = "tabdash_session"

// Server wires the dashboard handlers to their dependencies and exposes the
// composed http.Handler.
type Server struct {
	log      zerolog.Logger
	sessions *sessions.Manager
	guard    *security.Manager
	limits   runtime.Limits
	hooks    *telemetry.Hooks

	handler http.Handler
}

// NewServer builds the route table with the standard middleware chain:
// access logging outermost, then the concurrency/timeout guard.
func NewServer(
	log zerolog.Logger,
	mgr *sessions.Manager,
	guard *security.Manager,
	ctrl *runtime.Controller,
	hooks *telemetry.Hooks,
) *Server {
	s := &Server{
		log:      log,
		sessions: mgr,
		guard:    guard,
		limits:   ctrl.LimitsSnapshot(),
		hooks:    hooks,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("POST /filters", s.handleFilters)
	mux.HandleFunc("GET /charts/view", s.handleChartHTML)
	mux.HandleFunc("GET /charts/view.png", s.handleChartPNG)
	mux.HandleFunc("GET /export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /export/xlsx", s.handleExportExcel)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	guardMW := runtime.NewMiddleware(ctrl)
	s.handler = hooks.AccessLog(guardMW.Wrap(mux))
	return s
}

// Handler returns the composed handler for use by http.Server.
func (s *Server) Handler() http.Handler { return s.handler }
