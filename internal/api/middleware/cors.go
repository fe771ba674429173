package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSOptions is a narrow surface over go-chi/cors.
type CORSOptions struct {
	AllowedOrigins []string
	MaxAge         int
}

// CORS allows cross-origin calls to the JSON API from the configured origins.
// With no origins configured it is a no-op.
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	if len(o.AllowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	maxAge := o.MaxAge
	if maxAge == 0 {
		maxAge = 300
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           maxAge,
	})
}
