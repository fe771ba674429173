package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flightcast/flightcast/internal/api/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/predict", http.NoBody)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPerMinute(t *testing.T) {
	cfg := middleware.PerMinute(30)
	assert.Equal(t, 30, cfg.RequestLimit)
	assert.Equal(t, time.Minute, cfg.WindowLength)
}

func TestRateLimitByIP_AllowsWithinLimit(t *testing.T) {
	handler := middleware.RateLimitByIP(middleware.PerMinute(5))(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "192.168.1.1:12345").Code, "request %d should be allowed", i+1)
	}
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	handler := middleware.RequestID(middleware.RateLimitByIP(middleware.PerMinute(3))(okHandler()))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:12345").Code)
	}

	rec := hit(handler, "10.0.0.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.JSONEq(t, `{"error":"Rate limit exceeded. Please try again later."}`, rec.Body.String())
}

func TestRateLimitByIP_DifferentIPsHaveSeparateLimits(t *testing.T) {
	handler := middleware.RateLimitByIP(middleware.PerMinute(2))(okHandler())

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "172.16.0.1:12345").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "172.16.0.1:12345").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "172.16.0.2:12345").Code)
}

func TestRateLimitByIP_ZeroDisables(t *testing.T) {
	handler := middleware.RateLimitByIP(middleware.PerMinute(0))(okHandler())

	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "198.51.100.7:1").Code)
	}
}
