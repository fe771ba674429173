package models

// Health is the body of the liveness endpoint.
type Health struct {
	Status  HealthStatus   `json:"status"`
	Time    Timestamp      `json:"time"`
	Details map[string]any `json:"details,omitempty"`
}

// Readiness is the body of the readiness endpoint.
type Readiness struct {
	Status       HealthStatus       `json:"status"`
	Time         Timestamp          `json:"time"`
	Pipeline     string             `json:"pipeline"`
	Dependencies []DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus represents the status of an outbound dependency.
type DependencyStatus struct {
	Name          string       `json:"name"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	Message       *string      `json:"message,omitempty"`
}
