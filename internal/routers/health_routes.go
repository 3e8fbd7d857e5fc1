package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prepwise/interview/internal/handlers"
)

// HealthRoutes mounts the unauthenticated operational endpoints.
func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
	router.Handle("/metrics", promhttp.Handler())
}
