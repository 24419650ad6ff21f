// Package api provides HTTP routing for the orbital service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/salcedoinaki/stellar/internal/api/handlers"
	"github.com/salcedoinaki/stellar/internal/platform/observability"
	"github.com/salcedoinaki/stellar/internal/services"
	"github.com/salcedoinaki/stellar/internal/utils"
)

// RouterConfig carries the collaborators the routes need.
type RouterConfig struct {
	Service *services.OrbitalService
	Source  handlers.TLEProvider
	Metrics *observability.Metrics
	Logger  *utils.Logger
	Version string

	// ServeOps adds /metrics; enabled on the ops listener.
	ServeOps bool
}

// NewRouter sets up the API routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cfg.Metrics.HTTPMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	orbitalHandler := handlers.NewOrbitalHandler(cfg.Service, cfg.Logger)
	healthHandler := handlers.NewHealthHandler(cfg.Version)

	r.Route("/api", func(r chi.Router) {
		r.Post("/propagate", orbitalHandler.Propagate)
		r.Post("/propagate/batch", orbitalHandler.PropagateBatch)
		r.Post("/trajectory", orbitalHandler.Trajectory)
		r.Post("/visibility", orbitalHandler.Visibility)

		if cfg.Source != nil {
			satelliteHandler := handlers.NewSatelliteHandler(cfg.Service, cfg.Source, cfg.Logger)
			r.Get("/satellites/{id}/position", satelliteHandler.Position)
		}
	})

	if cfg.Source != nil {
		trackHandler := handlers.NewTrackHandler(cfg.Service, cfg.Source, cfg.Logger)
		r.Get("/ws/track/{id}", trackHandler.Track)
	}

	// Both listeners answer /health, for load balancer probes; only the
	// ops listener exposes the Prometheus scrape endpoint.
	r.Get("/health", healthHandler.Health)
	if cfg.ServeOps {
		r.Handle("/metrics", observability.Handler())
	}

	return r
}
