// Package api provides the HTTP surface of flightcast: the HTML form, the
// JSON prediction API and operational endpoints.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/flightcast/flightcast/internal/api/handler"
	"github.com/flightcast/flightcast/internal/api/middleware"
	"github.com/flightcast/flightcast/internal/api/models"
	"github.com/flightcast/flightcast/internal/api/response"
	"github.com/flightcast/flightcast/internal/resilience"
)

// DefaultServiceName is used for spans when RouterConfig.ServiceName is empty.
const DefaultServiceName = "flightcast-api"

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string

	// Metrics may be nil.
	Metrics *middleware.Metrics

	// Predictor runs predictions (required). PipelineName is reported by the
	// readiness endpoint.
	Predictor    handler.Predictor
	PipelineName string

	// Registry exposes outbound dependency health on /readyz. May be nil.
	Registry *resilience.Registry

	RequireTLS         bool
	CORSAllowedOrigins []string

	// PredictRateLimit is requests per minute per client IP on the two
	// prediction routes. Zero disables the limit.
	PredictRateLimit int
}

// NewRouter creates a new chi router with all routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusNotFound, models.MessageNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusMethodNotAllowed, models.MessageMethodNotAllowed)
	})

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.PipelineName, cfg.Registry)
	formHandler := handler.NewFormHandler(cfg.Predictor, cfg.Logger)
	predictHandler := handler.NewPredictHandler(cfg.Predictor, cfg.Logger)

	predictRateLimit := middleware.RateLimitByIP(middleware.PerMinute(cfg.PredictRateLimit))

	// Ops endpoints
	r.Get("/healthz", opsHandler.HealthCheck)
	r.Get("/readyz", opsHandler.ReadinessCheck)

	// HTML form
	r.Get("/", formHandler.Show)
	r.With(predictRateLimit).Post("/", formHandler.Submit)

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(middleware.CORSOptions{AllowedOrigins: cfg.CORSAllowedOrigins}))

		r.Get("/airports", opsHandler.ListAirports)
		r.With(predictRateLimit, middleware.RequireJSON).Post("/predict", predictHandler.Predict)
	})

	return r
}
