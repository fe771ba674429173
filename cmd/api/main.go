// Package main provides the entrypoint for the flightcast API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/flightcast/flightcast/internal/api"
	"github.com/flightcast/flightcast/internal/api/middleware"
	"github.com/flightcast/flightcast/internal/config"
	"github.com/flightcast/flightcast/internal/pipeline"
	"github.com/flightcast/flightcast/internal/prediction"
	"github.com/flightcast/flightcast/internal/resilience"
	"github.com/flightcast/flightcast/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "flightcast-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.LogLevel)

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Msg("starting flightcast API")

	if cfg.IsProduction() && !cfg.RequireTLS {
		log.Warn().Msg("REQUIRE_TLS is off in production - plain HTTP requests will be served")
	}

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTELEnabled,
		SampleRatio:    cfg.OTELSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if tp.Enabled() {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Float64("sample_ratio", cfg.OTELSampleRatio).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize http metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	predictionMetrics, err := prediction.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize prediction metrics")
		os.Exit(1)
	}

	registry := resilience.NewRegistry()

	p, err := buildPipeline(cfg, registry, log)
	if err != nil {
		log.Error().Err(err).Str("model_dir", cfg.ModelDir).Msg("failed to load pipeline")
		os.Exit(1)
	}
	log.Info().
		Str("pipeline", p.Name()).
		Dur("cache_ttl", cfg.PipelineCacheTTL).
		Msg("pipeline ready")

	svc := prediction.NewService(prediction.ServiceConfig{
		Pipeline: p,
		Metrics:  predictionMetrics,
		CacheTTL: cfg.PipelineCacheTTL,
		Logger:   log,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            httpMetrics,
		Predictor:          svc,
		PipelineName:       p.Name(),
		Registry:           registry,
		RequireTLS:         cfg.RequireTLS,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PredictRateLimit:   cfg.PredictRateLimit,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// buildPipeline loads the fitted artifacts from disk, or wires a remote
// inference client when PIPELINE_URL is set.
func buildPipeline(cfg config.Config, registry *resilience.Registry, log zerolog.Logger) (pipeline.Pipeline, error) {
	if cfg.PipelineURL == "" {
		return pipeline.Load(cfg.ModelDir)
	}

	clientCfg := resilience.DefaultClientConfig(pipeline.RemoteName)
	clientCfg.Timeout = cfg.PipelineTimeout
	clientCfg.Retries = cfg.PipelineRetries

	return pipeline.NewRemote(pipeline.RemoteConfig{
		URL:        cfg.PipelineURL,
		HTTPClient: resilience.NewClient(clientCfg),
		Registry:   registry,
		Logger:     log,
	}), nil
}
