// Package api exposes the edge engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/tipster-edge/internal/health"
	"github.com/yourusername/tipster-edge/internal/metrics"
)

// RouterConfig controls middleware and the optional endpoints.
type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	MetricsEnabled bool
	MetricsPath    string
}

// NewRouter builds the chi router with middleware, health, metrics and the v1 API.
func NewRouter(h *Handler, hs *health.Server, cfg RouterConfig, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if hs != nil {
		hs.Mount(r)
	}
	if cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(recordMetrics)

		r.Post("/clv", h.CalculateCLV)
		r.Post("/clv/batch", h.CalculateCLVBatch)

		r.Post("/edge/normalize", h.NormalizeEdge)
		r.Get("/edge/calculate", h.CalculateEdge)

		r.Get("/edges/best", h.BestEdges)
		r.Get("/dashboard/stats", h.DashboardStats)

		r.Get("/parlays/suggested", h.SuggestedParlays)
		r.Post("/parlays/select", h.SelectParlays)
	})

	return r
}

// NewHTTPServer wraps the router in an http.Server with conservative timeouts.
func NewHTTPServer(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
