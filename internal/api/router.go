package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/wiremail/internal/api/middleware"
	"github.com/eldtechnologies/wiremail/internal/handlers"
	"github.com/eldtechnologies/wiremail/internal/relay"
)

// NewRouter creates and configures the HTTP router. The relay WebSocket
// endpoint and the CRUD surface share one server.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, ws *relay.Handler, limiter *middleware.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting (only when Redis is configured)
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	// CORS - the web client may be served from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	// Relay entry point: the upgrade request itself is plain HTTP
	r.Get("/ws", ws.ServeHTTP)

	// JSON API
	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body
		r.Use(middleware.RequireJSON)

		r.Post("/api/register", h.Register)
		r.Get("/api/stats", h.Stats)
		r.Get("/api/emails/{address}", h.ListEmails)
		r.Get("/api/emails/{address}/recent", h.RecentEmails)
		r.Delete("/api/emails/{id}", h.DeleteEmail)
	})

	// Attachment upload and download (multipart, larger bodies)
	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodySize(26 << 20))

		r.Post("/api/upload", h.Upload)
		r.Get("/api/files/{ref}", h.ServeFile)
	})

	return r
}
