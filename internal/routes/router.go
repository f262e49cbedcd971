package routes

import (
	"net/http"
	"time"

	"gatherhub/guestsync/internal/api"
	"gatherhub/guestsync/internal/db"
	"gatherhub/guestsync/internal/metrics"
	"gatherhub/guestsync/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RegisterRoutes builds the ops router: health check, provider
// enumeration and manual sync triggering. The pipeline itself never goes
// through HTTP; this surface exists for operators.
func RegisterRoutes(handlers *api.SyncHandlers, metricsReg *metrics.MetricsRegistry, opsAPIKey string, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, upSince))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKeyMiddleware(opsAPIKey))

		r.Get("/providers", handlers.ListProviders)
		r.Post("/events/{eventID}/sync", handlers.TriggerEventSync)
	})

	return r
}
