package config_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightcast/flightcast/internal/config"
)

var envKeys = []string{
	"APP_PORT", "APP_ENV", "LOG_LEVEL", "MODEL_DIR", "PIPELINE_URL",
	"PIPELINE_TIMEOUT", "PIPELINE_RETRIES", "PIPELINE_CACHE_TTL", "OTEL_ENABLED",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_TRACES_SAMPLER_ARG", "REQUIRE_TLS", "CORS_ALLOWED_ORIGINS",
	"PREDICT_RATE_LIMIT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "model", cfg.ModelDir)
	assert.Empty(t, cfg.PipelineURL)
	assert.Equal(t, 5*time.Second, cfg.PipelineTimeout)
	assert.Zero(t, cfg.PipelineRetries)
	assert.Equal(t, 10*time.Minute, cfg.PipelineCacheTTL)
	assert.False(t, cfg.OTELEnabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, 1.0, cfg.OTELSampleRatio)
	assert.False(t, cfg.RequireTLS)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.Equal(t, 60, cfg.PredictRateLimit)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MODEL_DIR", "/srv/model")
	t.Setenv("PIPELINE_URL", "http://inference:8500/predict")
	t.Setenv("PIPELINE_TIMEOUT", "750ms")
	t.Setenv("PIPELINE_RETRIES", "2")
	t.Setenv("PIPELINE_CACHE_TTL", "0s")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")
	t.Setenv("REQUIRE_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,,")
	t.Setenv("PREDICT_RATE_LIMIT", "0")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "/srv/model", cfg.ModelDir)
	assert.Equal(t, "http://inference:8500/predict", cfg.PipelineURL)
	assert.Equal(t, 750*time.Millisecond, cfg.PipelineTimeout)
	assert.Equal(t, uint64(2), cfg.PipelineRetries)
	assert.Zero(t, cfg.PipelineCacheTTL)
	assert.True(t, cfg.OTELEnabled)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	assert.Equal(t, 0.25, cfg.OTELSampleRatio)
	assert.True(t, cfg.RequireTLS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Zero(t, cfg.PredictRateLimit)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"timeout", "PIPELINE_TIMEOUT", "soon", "PIPELINE_TIMEOUT"},
		{"negative timeout", "PIPELINE_TIMEOUT", "-1s", "PIPELINE_TIMEOUT must be positive"},
		{"cache ttl", "PIPELINE_CACHE_TTL", "-1m", "PIPELINE_CACHE_TTL must not be negative"},
		{"retries", "PIPELINE_RETRIES", "-1", "PIPELINE_RETRIES"},
		{"rate limit", "PREDICT_RATE_LIMIT", "lots", "PREDICT_RATE_LIMIT"},
		{"negative rate limit", "PREDICT_RATE_LIMIT", "-5", "must not be negative"},
		{"log level", "LOG_LEVEL", "chatty", "LOG_LEVEL"},
		{"sample ratio", "OTEL_TRACES_SAMPLER_ARG", "half", "OTEL_TRACES_SAMPLER_ARG"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := config.FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
