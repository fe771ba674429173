// Package pipeline runs an encoded flight through the fitted numeric pipeline:
// standard scaling, then PCA, then a random forest classifier.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/flightcast/flightcast/internal/flight"
)

// Pipeline errors.
var (
	ErrInvalidArtifact  = errors.New("invalid model artifact")
	ErrColumnMismatch   = errors.New("feature columns do not match fitted artifacts")
	ErrDimension        = errors.New("input dimension mismatch")
	ErrUnexpectedLabel  = errors.New("unexpected label")
	ErrInferenceFailure = errors.New("inference endpoint failure")
)

// Label is the classifier output.
type Label int

const (
	LabelOnTime  Label = 0
	LabelDelayed Label = 1
)

// Valid reports whether l is one of the two known labels.
func (l Label) Valid() bool {
	return l == LabelOnTime || l == LabelDelayed
}

// Status returns the API status string for the label.
func (l Label) Status() string {
	switch l {
	case LabelOnTime:
		return "on-time"
	case LabelDelayed:
		return "delayed"
	default:
		return "unknown"
	}
}

// Pipeline predicts a label for one encoded flight. Implementations must be
// safe for concurrent use.
type Pipeline interface {
	Predict(ctx context.Context, vec flight.FeatureVector) (Label, error)

	// Name identifies the implementation in logs and readiness output.
	Name() string
}

// Func adapts a function to the Pipeline interface.
type Func func(ctx context.Context, vec flight.FeatureVector) (Label, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, vec flight.FeatureVector) (Label, error) {
	return f(ctx, vec)
}

// Name returns "func".
func (f Func) Name() string {
	return "func"
}

func checkLabel(raw int) (Label, error) {
	l := Label(raw)
	if !l.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedLabel, raw)
	}
	return l, nil
}
