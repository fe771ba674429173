package models

import (
	"encoding/json"
	"net/http"
)

// Client-facing error messages that are not produced by input validation.
const (
	MessageInternal         = "An unexpected error occurred."
	MessageMalformedJSON    = "Request body must be a JSON object."
	MessageUnsupportedMedia = "Content-Type must be application/json."
	MessageRateLimited      = "Rate limit exceeded. Please try again later."
	MessageTLSRequired      = "This endpoint requires HTTPS."
	MessageNotFound         = "Not found."
	MessageMethodNotAllowed = "Method not allowed."
)

// ErrorResponse is the body of every JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewError creates an ErrorResponse with the given message.
func NewError(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

// Write writes the error as JSON with the given status code.
func (e *ErrorResponse) Write(w http.ResponseWriter, status int, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(e)
}
