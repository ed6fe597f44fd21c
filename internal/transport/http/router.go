// Package http assembles the chi router and HTTP handlers for the
// dataset cleaning service.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tabcleaner/internal/config"
	apperrors "tabcleaner/internal/errors"
	"tabcleaner/internal/middleware"
)

// NewRouter builds the full middleware chain and route tree.
func NewRouter(cfg *config.Config, service DatasetServiceInterface, logger *slog.Logger, registry *prometheus.Registry) http.Handler {
	errorHandler := apperrors.NewErrorHandler(logger)
	datasets := NewDatasetHandler(service, logger, errorHandler, cfg.Limits.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.RateLimiter(logger, cfg.Limits.RateRPS, cfg.Limits.RateBurst))

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", healthz)
		r.Mount("/datasets", datasets.Routes())
	})
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	return r
}

func healthz(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
