package pipeline_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightcast/flightcast/internal/flight"
	"github.com/flightcast/flightcast/internal/pipeline"
)

// testArtifacts builds a pipeline that projects onto STD and predicts
// "delayed" for departures after noon.
func testArtifacts() (*pipeline.StandardScaler, *pipeline.PCA, *pipeline.RandomForest) {
	cols := flight.Columns()

	mean := make([]float64, len(cols))
	scale := make([]float64, len(cols))
	for i := range scale {
		scale[i] = 1
	}

	component := make([]float64, len(cols))
	component[1] = 1 // STD

	scaler := &pipeline.StandardScaler{FeatureNames: cols, Mean: mean, Scale: scale}
	reducer := &pipeline.PCA{Mean: make([]float64, len(cols)), Components: [][]float64{component}}
	forest := &pipeline.RandomForest{
		Classes:   []int{0, 1},
		NFeatures: 1,
		Trees: []pipeline.Tree{{
			ChildrenLeft:  []int{1, -1, -1},
			ChildrenRight: []int{2, -1, -1},
			Feature:       []int{0, -2, -2},
			Threshold:     []float64{12, -2, -2},
			Value:         [][]float64{{5, 5}, {10, 0}, {0, 10}},
		}},
	}
	return scaler, reducer, forest
}

func encode(t *testing.T, std string) flight.FeatureVector {
	t.Helper()
	v := flight.NewValidator(flight.APIProfile, nil)
	req, err := v.Validate(flight.Raw{Date: "2099-01-01", STD: std, STA: "23:59", Origin: "BLR", Destination: "DEL"})
	require.NoError(t, err)
	vec, err := flight.Encode(req)
	require.NoError(t, err)
	return vec
}

func TestModel_Predict(t *testing.T) {
	model, err := pipeline.NewModel(testArtifacts())
	require.NoError(t, err)
	assert.Equal(t, "local", model.Name())

	label, err := model.Predict(context.Background(), encode(t, "08:00"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.LabelOnTime, label)

	label, err = model.Predict(context.Background(), encode(t, "12:00"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.LabelOnTime, label, "threshold is inclusive on the left")

	label, err = model.Predict(context.Background(), encode(t, "18:30"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.LabelDelayed, label)
}

func TestModel_Predict_CanceledContext(t *testing.T) {
	model, err := pipeline.NewModel(testArtifacts())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = model.Predict(ctx, encode(t, "08:00"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestModel_Predict_ConcurrentUse(t *testing.T) {
	model, err := pipeline.NewModel(testArtifacts())
	require.NoError(t, err)

	early, late := encode(t, "06:00"), encode(t, "20:00")

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				l, err := model.Predict(context.Background(), early)
				assert.NoError(t, err)
				assert.Equal(t, pipeline.LabelOnTime, l)
				l, err = model.Predict(context.Background(), late)
				assert.NoError(t, err)
				assert.Equal(t, pipeline.LabelDelayed, l)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out")
		}
	}
}

func TestNewModel_ColumnMismatch(t *testing.T) {
	scaler, reducer, forest := testArtifacts()

	// Swap two origin columns.
	scaler.FeatureNames = append([]string(nil), scaler.FeatureNames...)
	scaler.FeatureNames[3], scaler.FeatureNames[4] = scaler.FeatureNames[4], scaler.FeatureNames[3]

	_, err := pipeline.NewModel(scaler, reducer, forest)
	assert.ErrorIs(t, err, pipeline.ErrColumnMismatch)
	assert.Contains(t, err.Error(), "From__AMD")
}

func TestNewModel_ColumnCountMismatch(t *testing.T) {
	scaler, reducer, forest := testArtifacts()
	scaler.FeatureNames = scaler.FeatureNames[:10]
	scaler.Mean = scaler.Mean[:10]
	scaler.Scale = scaler.Scale[:10]

	_, err := pipeline.NewModel(scaler, reducer, forest)
	assert.ErrorIs(t, err, pipeline.ErrColumnMismatch)
}

func TestNewModel_StageDimensionMismatch(t *testing.T) {
	scaler, reducer, forest := testArtifacts()
	forest.NFeatures = 2

	_, err := pipeline.NewModel(scaler, reducer, forest)
	assert.ErrorIs(t, err, pipeline.ErrInvalidArtifact)
}

func TestNewModel_MissingArtifact(t *testing.T) {
	scaler, reducer, _ := testArtifacts()

	_, err := pipeline.NewModel(scaler, reducer, nil)
	assert.ErrorIs(t, err, pipeline.ErrInvalidArtifact)
}

func TestNewModel_UnexpectedClass(t *testing.T) {
	scaler, reducer, forest := testArtifacts()
	forest.Classes = []int{0, 2}

	model, err := pipeline.NewModel(scaler, reducer, forest)
	require.NoError(t, err)

	_, err = model.Predict(context.Background(), encode(t, "20:00"))
	assert.ErrorIs(t, err, pipeline.ErrUnexpectedLabel)
}

func writeArtifact(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	scaler, reducer, forest := testArtifacts()
	writeArtifact(t, dir, pipeline.ScalerFile, scaler)
	writeArtifact(t, dir, pipeline.PCAFile, reducer)
	writeArtifact(t, dir, pipeline.ModelFile, forest)

	model, err := pipeline.Load(dir)
	require.NoError(t, err)

	label, err := model.Predict(context.Background(), encode(t, "21:15"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.LabelDelayed, label)
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	scaler, reducer, _ := testArtifacts()
	writeArtifact(t, dir, pipeline.ScalerFile, scaler)
	writeArtifact(t, dir, pipeline.PCAFile, reducer)

	_, err := pipeline.Load(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), pipeline.ModelFile)
}

func TestLoad_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, pipeline.ScalerFile), []byte("{"), 0o600))

	_, err := pipeline.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding scaler.json")
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "on-time", pipeline.LabelOnTime.Status())
	assert.Equal(t, "delayed", pipeline.LabelDelayed.Status())
	assert.Equal(t, "unknown", pipeline.Label(7).Status())
	assert.True(t, pipeline.LabelDelayed.Valid())
	assert.False(t, pipeline.Label(-1).Valid())
}

func TestFunc(t *testing.T) {
	p := pipeline.Func(func(context.Context, flight.FeatureVector) (pipeline.Label, error) {
		return pipeline.LabelDelayed, nil
	})

	label, err := p.Predict(context.Background(), flight.FeatureVector{})
	require.NoError(t, err)
	assert.Equal(t, pipeline.LabelDelayed, label)
	assert.Equal(t, "func", p.Name())
}
