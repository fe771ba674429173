// Package handler provides HTTP handlers for the flightcast API.
package handler

import (
	"net/http"
	"time"

	"github.com/flightcast/flightcast/internal/airport"
	"github.com/flightcast/flightcast/internal/api/models"
	"github.com/flightcast/flightcast/internal/api/response"
	"github.com/flightcast/flightcast/internal/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	pipeline  string
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. registry may be nil when the
// pipeline has no outbound dependencies.
func NewOpsHandler(version, buildTime, pipeline string, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		pipeline:  pipeline,
		registry:  registry,
	}
}

// HealthCheck handles GET /healthz - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /readyz. An open breaker on any dependency
// makes the service unready; a half-open one only degrades it.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	readiness := models.Readiness{
		Status:   models.HealthStatusOK,
		Time:     models.Timestamp(time.Now()),
		Pipeline: h.pipeline,
	}

	if h.registry != nil {
		for _, dep := range h.registry.All() {
			status := dependencyStatus(dep)
			readiness.Dependencies = append(readiness.Dependencies, status)

			switch {
			case status.Status == models.HealthStatusFail:
				readiness.Status = models.HealthStatusFail
			case status.Status == models.HealthStatusDegraded && readiness.Status == models.HealthStatusOK:
				readiness.Status = models.HealthStatusDegraded
			}
		}
	}

	code := http.StatusOK
	if readiness.Status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, readiness)
}

// ListAirports handles GET /api/airports.
func (h *OpsHandler) ListAirports(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.AirportsResponse{
		Origins:      airport.Origins(),
		Destinations: airport.Destinations(),
	})
}

func dependencyStatus(h *resilience.Health) models.DependencyStatus {
	status := models.DependencyStatus{
		Name:         h.Name,
		Status:       models.HealthStatusOK,
		CircuitState: h.CircuitState.String(),
	}

	switch {
	case h.IsDegraded():
		status.Status = models.HealthStatusDegraded
	case !h.IsHealthy():
		status.Status = models.HealthStatusFail
	}

	if h.LastSuccessAt != nil {
		ts := models.Timestamp(*h.LastSuccessAt)
		status.LastSuccessAt = &ts
	}
	if h.LastFailureAt != nil {
		ts := models.Timestamp(*h.LastFailureAt)
		status.LastFailureAt = &ts
	}
	if h.LastError != "" {
		msg := h.LastError
		status.Message = &msg
	}

	return status
}
