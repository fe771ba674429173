package middleware

import (
	"mime"
	"net/http"

	"github.com/flightcast/flightcast/internal/api/models"
)

// RequireJSON rejects request bodies that declare a Content-Type other than
// application/json. A missing Content-Type is accepted.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if ct := r.Header.Get("Content-Type"); ct != "" {
				mediaType, _, err := mime.ParseMediaType(ct)
				if err != nil || mediaType != "application/json" {
					models.NewError(models.MessageUnsupportedMedia).
						Write(w, http.StatusUnsupportedMediaType, GetRequestID(r.Context()))
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
