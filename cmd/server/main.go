package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/skalyan/tabdash/config"
	"github.com/skalyan/tabdash/internal/runtime"
	"github.com/skalyan/tabdash/internal/security"
	"github.com/skalyan/tabdash/internal/sessions"
	"github.com/skalyan/tabdash/internal/telemetry"
	"github.com/skalyan/tabdash/internal/web"
	"github.com/skalyan/tabdash/pkg/version"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		cfgFile string
		addr    string
	)

	root := &cobra.Command{
		Use:     "tabdash",
		Short:   "Single-user dashboard for exploring tabular data files",
		Version: version.Version(),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if addr != "" {
				settings.ListenAddr = addr
			}
			return run(settings)
		},
	}
	root.Flags().StringVar(&cfgFile, "config", "", "Path to config file (optional)")
	root.Flags().StringVar(&addr, "addr", "", "Listen address, overrides config")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func run(settings *config.Settings) error {
	logger := zlog.With().Str("service", "tabdash-server").Logger()

	limits := runtime.LimitsFromSettings(settings)
	controller := runtime.NewController(limits)

	guard := security.NewManager(limits.MaxUploadBytes)
	hooks := telemetry.NewHooks(logger)

	mgr := sessions.NewManager(settings.SessionIdleTTL, settings.SessionCleanupPeriod, controller, nil)
	mgr.SetEvictHook(hooks.OnSessionEvict)
	mgr.Start()

	srv := web.NewServer(logger, mgr, guard, controller, hooks)
	httpSrv := &http.Server{
		Addr:    settings.ListenAddr,
		Handler: srv.Handler(),
	}

	logger.Info().
		Str("version", version.Version()).
		Str("addr", settings.ListenAddr).
		Int("max_concurrent_requests", limits.MaxConcurrentRequests).
		Int("max_sessions", limits.MaxSessions).
		Int64("max_upload_bytes", limits.MaxUploadBytes).
		Msg("server bootstrap configured")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		hooks.OnServerStart(settings.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	hooks.OnServerStop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown incomplete")
	}
	if err := mgr.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("session manager shutdown incomplete")
	}
	logger.Info().Msg("server stopped")
	return nil
}
