// Package web assembles the HTTP surface of the front.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/shindakun/csmarket/internal/auth"
	"github.com/shindakun/csmarket/internal/config"
	"github.com/shindakun/csmarket/internal/metrics"
	"github.com/shindakun/csmarket/internal/web/handlers"
	webmiddleware "github.com/shindakun/csmarket/internal/web/middleware"
)

const (
	requestTimeout    = 60 * time.Second
	maxTrackedClients = 10000
)

// NewRouter wires middleware and routes around the handlers
func NewRouter(cfg *config.Config, h *handlers.Handlers, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(webmiddleware.LoggingMiddleware(logger))
	r.Use(webmiddleware.Recoverer(logger, h.RenderError))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.RequestSize(cfg.Server.Security.MaxRequestBytes))
	r.Use(webmiddleware.SecurityHeaders(cfg))
	r.Use(webmiddleware.Instrument(m))

	// Public routes
	r.Get("/", h.Landing)
	r.Get("/auth", h.AuthPage)

	// Steam hands off to the backend; VK has no route on purpose
	r.Get(auth.SteamLoginRoute, h.SteamLogin)

	// Price catalog, the only place with a form
	r.Group(func(r chi.Router) {
		r.Use(webmiddleware.CSRFProtection([]byte(cfg.Server.Security.CSRFSecret), cfg.IsHTTPS()))
		r.Get("/prices", h.Prices)
		r.Post("/prices/refresh", h.PricesRefresh)
		r.Get("/prices/export/{format}", h.PricesExport)
	})

	r.Route("/api", func(r chi.Router) {
		if rps := cfg.Inventory.ClientRPS; rps > 0 {
			r.Use(webmiddleware.ClientRateLimit(rps, cfg.Inventory.ClientBurst, maxTrackedClients, h.TooManyRequests))
		}
		r.Get("/inventory/{steamID}", h.Inventory)
	})

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Static files
	r.Get("/static/*", h.ServeStatic)

	// 404 handler (must be last)
	r.NotFound(h.NotFound)

	return r
}
