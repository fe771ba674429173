// Package response provides utilities for HTTP response handling.
package response

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/flightcast/flightcast/internal/api/middleware"
	"github.com/flightcast/flightcast/internal/api/models"
)

// JSON writes a JSON response with the given status code.
// Includes X-Request-Id header for correlation.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes {"error": message} with the given status code.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	models.NewError(message).Write(w, status, middleware.GetRequestID(r.Context()))
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusBadRequest, message)
}

// InternalError writes a 500 error response with the generic message.
// Callers log the cause; it never reaches the client.
func InternalError(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusInternalServerError, models.MessageInternal)
}

// HTML renders tmpl into a buffer first so a template error can still be
// reported as a 500 instead of a truncated page.
func HTML(w http.ResponseWriter, r *http.Request, status int, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		InternalError(w, r)
		return err
	}

	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
