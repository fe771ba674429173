package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flightcast/flightcast/internal/flight"
)

// Artifact file names inside a model directory.
const (
	ScalerFile = "scaler.json"
	PCAFile    = "pca.json"
	ModelFile  = "model.json"
)

// Model holds the three fitted artifacts. It is immutable after construction
// and safe for concurrent use.
type Model struct {
	scaler     *StandardScaler
	reducer    *PCA
	classifier *RandomForest
}

// NewModel validates the artifacts against each other and against the
// encoder's column schema.
func NewModel(scaler *StandardScaler, reducer *PCA, classifier *RandomForest) (*Model, error) {
	if scaler == nil || reducer == nil || classifier == nil {
		return nil, fmt.Errorf("%w: missing artifact", ErrInvalidArtifact)
	}
	if err := scaler.validate(); err != nil {
		return nil, err
	}
	if err := reducer.validate(); err != nil {
		return nil, err
	}
	if err := classifier.validate(); err != nil {
		return nil, err
	}

	if err := scaler.checkColumns(flight.Columns()); err != nil {
		return nil, err
	}
	if reducer.InputDim() != len(scaler.Mean) {
		return nil, fmt.Errorf("%w: pca expects %d inputs, scaler produces %d",
			ErrInvalidArtifact, reducer.InputDim(), len(scaler.Mean))
	}
	if classifier.NFeatures != reducer.OutputDim() {
		return nil, fmt.Errorf("%w: forest expects %d inputs, pca produces %d",
			ErrInvalidArtifact, classifier.NFeatures, reducer.OutputDim())
	}

	return &Model{scaler: scaler, reducer: reducer, classifier: classifier}, nil
}

// Load reads scaler.json, pca.json and model.json from dir.
func Load(dir string) (*Model, error) {
	var (
		scaler     StandardScaler
		reducer    PCA
		classifier RandomForest
	)

	if err := readJSON(filepath.Join(dir, ScalerFile), &scaler); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, PCAFile), &reducer); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, ModelFile), &classifier); err != nil {
		return nil, err
	}

	return NewModel(&scaler, &reducer, &classifier)
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Name returns "local".
func (m *Model) Name() string {
	return "local"
}

// Predict scales, reduces and classifies vec.
func (m *Model) Predict(ctx context.Context, vec flight.FeatureVector) (Label, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	scaled, err := m.scaler.Transform(vec.Row())
	if err != nil {
		return 0, fmt.Errorf("scaling: %w", err)
	}
	reduced, err := m.reducer.Transform(scaled)
	if err != nil {
		return 0, fmt.Errorf("reducing: %w", err)
	}
	class, err := m.classifier.Predict(reduced)
	if err != nil {
		return 0, fmt.Errorf("classifying: %w", err)
	}

	return checkLabel(class)
}
