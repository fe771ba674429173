// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the runtime configuration for the API server.
type Config struct {
	Port        string
	Environment string
	LogLevel    zerolog.Level

	// ModelDir holds scaler.json, pca.json and model.json. Ignored when
	// PipelineURL is set.
	ModelDir string

	// PipelineURL points at a remote inference service. Empty means the
	// fitted artifacts are evaluated in process.
	PipelineURL     string
	PipelineTimeout time.Duration
	PipelineRetries uint64

	// PipelineCacheTTL memoizes labels per validated request. Zero disables it.
	PipelineCacheTTL time.Duration

	OTELEnabled     bool
	OTLPEndpoint    string
	OTELSampleRatio float64

	RequireTLS         bool
	CORSAllowedOrigins []string

	// PredictRateLimit is requests per minute per client IP on the
	// prediction routes. Zero disables the limit.
	PredictRateLimit int
}

// FromEnv creates a Config from environment variables.
func FromEnv() (Config, error) {
	var errs []error

	timeout, err := time.ParseDuration(getEnvOrDefault("PIPELINE_TIMEOUT", "5s"))
	if err != nil {
		errs = append(errs, fmt.Errorf("PIPELINE_TIMEOUT: %w", err))
	}

	cacheTTL, err := time.ParseDuration(getEnvOrDefault("PIPELINE_CACHE_TTL", "10m"))
	if err != nil {
		errs = append(errs, fmt.Errorf("PIPELINE_CACHE_TTL: %w", err))
	}

	retries, err := strconv.ParseUint(getEnvOrDefault("PIPELINE_RETRIES", "0"), 10, 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("PIPELINE_RETRIES: %w", err))
	}

	rateLimit, err := strconv.Atoi(getEnvOrDefault("PREDICT_RATE_LIMIT", "60"))
	if err != nil {
		errs = append(errs, fmt.Errorf("PREDICT_RATE_LIMIT: %w", err))
	}

	sampleRatio, err := strconv.ParseFloat(getEnvOrDefault("OTEL_TRACES_SAMPLER_ARG", "1"), 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("OTEL_TRACES_SAMPLER_ARG: %w", err))
	}

	level, err := zerolog.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	cfg := Config{
		Port:               getEnvOrDefault("APP_PORT", "8080"),
		Environment:        getEnvOrDefault("APP_ENV", "development"),
		LogLevel:           level,
		ModelDir:           getEnvOrDefault("MODEL_DIR", "model"),
		PipelineURL:        os.Getenv("PIPELINE_URL"),
		PipelineTimeout:    timeout,
		PipelineRetries:    retries,
		PipelineCacheTTL:   cacheTTL,
		OTELEnabled:        os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:       getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELSampleRatio:    sampleRatio,
		RequireTLS:         os.Getenv("REQUIRE_TLS") == "true",
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		PredictRateLimit:   rateLimit,
	}

	if len(errs) == 0 {
		errs = append(errs, cfg.Validate())
	}

	return cfg, errors.Join(errs...)
}

// Validate checks value ranges that parsing alone does not catch.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("APP_PORT must not be empty")
	}
	if c.PipelineURL == "" && c.ModelDir == "" {
		return errors.New("one of MODEL_DIR or PIPELINE_URL is required")
	}
	if c.PipelineTimeout <= 0 {
		return errors.New("PIPELINE_TIMEOUT must be positive")
	}
	if c.PipelineCacheTTL < 0 {
		return errors.New("PIPELINE_CACHE_TTL must not be negative")
	}
	if c.PredictRateLimit < 0 {
		return errors.New("PREDICT_RATE_LIMIT must not be negative")
	}
	return nil
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
