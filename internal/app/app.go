// Package app wires configuration, logging, metrics, services and the
// HTTP server into one application container with graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"tabcleaner/internal/config"
	"tabcleaner/internal/metrics"
	"tabcleaner/internal/services"
	transport "tabcleaner/internal/transport/http"
)

// Version is set at build time.
var Version = "dev"

// Application is the assembled service container.
type Application struct {
	Config         *config.Config
	Logger         *slog.Logger
	DatasetService *services.DatasetService
	Server         *http.Server
}

// New builds the application from configuration.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info("application starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	datasetService := services.NewDatasetService(logger, m, cfg.Limits.DatasetTTL)
	router := transport.NewRouter(cfg, datasetService, logger, registry)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Application{
		Config:         cfg,
		Logger:         logger,
		DatasetService: datasetService,
		Server:         server,
	}, nil
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully within the
// configured timeout.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.DatasetService.StartJanitor(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down",
		slog.Duration("timeout", a.Config.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
