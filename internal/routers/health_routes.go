package routers

import (
	"github.com/go-chi/chi/v5"

	"intervai/server/internal/handlers"
	"intervai/server/internal/metrics"
)

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
	router.Get("/api/interview/healthz", healthHandler.HealthzHandler)
	router.Handle("/metrics", metrics.Handler())
}
