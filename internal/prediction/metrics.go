package prediction

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/flightcast/flightcast/internal/prediction"

// Metrics holds the prediction instruments.
type Metrics struct {
	predictions metric.Int64Counter
	rejections  metric.Int64Counter
	failures    metric.Int64Counter
	latency     metric.Float64Histogram
}

// NewMetrics creates instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	predictions, err := meter.Int64Counter(
		"prediction.total",
		metric.WithDescription("Predictions served, by status"),
		metric.WithUnit("{prediction}"),
	)
	if err != nil {
		return nil, err
	}

	rejections, err := meter.Int64Counter(
		"prediction.rejected",
		metric.WithDescription("Requests rejected before reaching the model, by kind"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"prediction.failed",
		metric.WithDescription("Requests that failed inside the numeric pipeline"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram(
		"prediction.pipeline.duration",
		metric.WithDescription("Duration of numeric pipeline calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		predictions: predictions,
		rejections:  rejections,
		failures:    failures,
		latency:     latency,
	}, nil
}

// recordPrediction counts a served prediction. Latency is only recorded
// when the pipeline actually ran.
func (m *Metrics) recordPrediction(ctx context.Context, profile, status string, cached bool, seconds float64) {
	if m == nil {
		return
	}
	m.predictions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("profile", profile),
		attribute.String("status", status),
		attribute.Bool("cached", cached),
	))
	if cached {
		return
	}
	m.latency.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("profile", profile),
		attribute.String("status", status),
	))
}

func (m *Metrics) recordRejection(ctx context.Context, profile, kind string) {
	if m == nil {
		return
	}
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("profile", profile),
		attribute.String("kind", kind),
	))
}

func (m *Metrics) recordFailure(ctx context.Context, profile, pipelineName string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("profile", profile),
		attribute.String("pipeline", pipelineName),
	))
}
