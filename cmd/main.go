package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JayantA-10/AI-Stress-System/internal/adapters/http/api"
	"github.com/JayantA-10/AI-Stress-System/internal/adapters/http/swagger"
	app "github.com/JayantA-10/AI-Stress-System/internal/app"
	"github.com/JayantA-10/AI-Stress-System/internal/config"
	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
	"github.com/JayantA-10/AI-Stress-System/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	rosterMetricsInterval = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.RegisterRuntimeCollectors()

	svc, err := newService(ctx, cfg, loggerInstance.Named("service"))
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			loggerInstance.Error(stopCtx, "service stop failed", logger.Error(err))
		}
	}()

	go startRosterMetricsUpdater(ctx, svc, loggerInstance, rosterMetricsInterval)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, cfg, loggerInstance.Named("api")),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store_driver", cfg.StoreDriver),
			logger.String("dedupe_backend", cfg.DedupeBackend),
			logger.String("notifier", cfg.Notifier),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(shutdownCtx, "server stopped")
	return nil
}

// newService builds and starts the service from cfg.
func newService(ctx context.Context, cfg *config.Config, l logger.Logger) (*app.Service, error) {
	opts, err := app.FromConfig(ctx, cfg, l)
	if err != nil {
		return nil, err
	}
	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// newMux registers the business API and the API docs.
func newMux(ctx context.Context, svc *app.Service, cfg *config.Config, l logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc,
		api.WithLogger(l),
		api.WithMaxHistoryLimit(cfg.MaxHistoryLimit),
	).Register(ctx, mux)
	return mux
}

// startRosterMetricsUpdater refreshes roster gauges so they stay current
// when nobody is polling /triage.
func startRosterMetricsUpdater(ctx context.Context, svc *app.Service, l logger.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateRosterMetrics(ctx, svc, l)
		}
	}
}

func updateRosterMetrics(ctx context.Context, svc *app.Service, l logger.Logger) {
	if _, err := svc.Roster(ctx); err != nil {
		l.Warn(ctx, "roster metrics refresh failed", logger.Error(err))
	}
	_ = svc.GetStats(ctx)
}
