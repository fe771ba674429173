// Package prediction validates, encodes and classifies flight requests.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flightcast/flightcast/internal/flight"
	"github.com/flightcast/flightcast/internal/pipeline"
)

// ErrInternal wraps every failure after validation. Its message is safe to
// return to callers; the cause is only logged.
var ErrInternal = errors.New("an unexpected error occurred")

// Result is a successful prediction.
type Result struct {
	Request flight.Request
	Label   pipeline.Label
}

// Status returns "on-time" or "delayed".
func (r *Result) Status() string {
	return r.Label.Status()
}

// ServiceConfig holds configuration for the prediction service.
type ServiceConfig struct {
	// Pipeline runs the fitted model (required).
	Pipeline pipeline.Pipeline

	// Now is the clock used for the past-date check. Defaults to time.Now.
	Now func() time.Time

	// Metrics may be nil.
	Metrics *Metrics

	// CacheTTL memoizes labels per validated request. Zero disables caching.
	CacheTTL time.Duration

	Logger zerolog.Logger
}

// Service is stateless apart from its immutable collaborators.
type Service struct {
	pipeline   pipeline.Pipeline
	validators map[string]*flight.Validator
	now        func() time.Time
	metrics    *Metrics
	cache      *labelCache
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewService creates a prediction service with one validator per profile.
func NewService(cfg ServiceConfig) *Service {
	validators := make(map[string]*flight.Validator, 2)
	for _, p := range []flight.Profile{flight.FormProfile, flight.APIProfile} {
		validators[p.Name] = flight.NewValidator(p, cfg.Now)
	}

	return &Service{
		pipeline:   cfg.Pipeline,
		validators: validators,
		now:        cfg.Now,
		metrics:    cfg.Metrics,
		cache:      newLabelCache(cfg.CacheTTL),
		logger:     cfg.Logger,
		tracer:     otel.Tracer(instrumentationName),
	}
}

// CachedLabels returns the number of memoized labels.
func (s *Service) CachedLabels() int {
	return s.cache.len()
}

// PipelineName returns the name of the configured pipeline.
func (s *Service) PipelineName() string {
	return s.pipeline.Name()
}

// Predict runs raw through the profile's validator, the encoder and the
// pipeline. Rejections are returned as *flight.ValidationError; anything that
// goes wrong afterwards is wrapped in ErrInternal.
func (s *Service) Predict(ctx context.Context, profile flight.Profile, raw flight.Raw) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "prediction.Predict",
		trace.WithAttributes(attribute.String("prediction.profile", profile.Name)),
	)
	defer span.End()

	validator, ok := s.validators[profile.Name]
	if !ok {
		validator = flight.NewValidator(profile, s.now)
	}

	req, err := validator.Validate(raw)
	if err != nil {
		return nil, s.reject(ctx, span, profile, err)
	}

	if label, ok := s.cache.get(req); ok {
		result := &Result{Request: req, Label: label}
		span.SetAttributes(
			attribute.String("prediction.status", result.Status()),
			attribute.Bool("prediction.cached", true),
		)
		s.metrics.recordPrediction(ctx, profile.Name, result.Status(), true, 0)
		return result, nil
	}

	vec, err := flight.Encode(req)
	if err != nil {
		return nil, s.reject(ctx, span, profile, err)
	}

	span.SetAttributes(
		attribute.String("flight.origin", req.Origin),
		attribute.String("flight.destination", req.Destination),
		attribute.Int("flight.day", vec.Day),
	)

	start := time.Now()
	label, err := s.pipeline.Predict(ctx, vec)
	elapsed := time.Since(start)
	if err == nil && !label.Valid() {
		err = fmt.Errorf("%w: %d", pipeline.ErrUnexpectedLabel, label)
	}
	if err != nil {
		s.logger.Error().Err(err).
			Str("profile", profile.Name).
			Str("pipeline", s.pipeline.Name()).
			Str("origin", req.Origin).
			Str("destination", req.Destination).
			Dur("duration", elapsed).
			Msg("prediction failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "pipeline failure")
		s.metrics.recordFailure(ctx, profile.Name, s.pipeline.Name())
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	s.cache.set(req, label)
	result := &Result{Request: req, Label: label}

	span.SetAttributes(attribute.String("prediction.status", result.Status()))
	s.metrics.recordPrediction(ctx, profile.Name, result.Status(), false, elapsed.Seconds())

	s.logger.Debug().
		Str("profile", profile.Name).
		Str("origin", req.Origin).
		Str("destination", req.Destination).
		Str("date", req.DateString()).
		Str("status", result.Status()).
		Dur("duration", elapsed).
		Msg("prediction served")

	return result, nil
}

func (s *Service) reject(ctx context.Context, span trace.Span, profile flight.Profile, err error) error {
	verr, ok := flight.AsValidationError(err)
	if !ok {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unclassified rejection")
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}

	span.SetAttributes(attribute.String("prediction.rejected", string(verr.Kind)))
	s.metrics.recordRejection(ctx, profile.Name, string(verr.Kind))

	s.logger.Debug().
		Str("profile", profile.Name).
		Str("kind", string(verr.Kind)).
		Str("field", verr.Field).
		Msg("request rejected")

	return verr
}
