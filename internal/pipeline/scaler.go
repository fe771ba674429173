package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StandardScaler is a fitted per-column standardisation.
type StandardScaler struct {
	// FeatureNames records the columns, in order, the scaler was fitted on.
	FeatureNames []string  `json:"feature_names"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`

	// mean and scale are built by validate.
	mean  *mat.VecDense
	scale *mat.VecDense
}

func (s *StandardScaler) validate() error {
	n := len(s.FeatureNames)
	if n == 0 {
		return fmt.Errorf("%w: scaler has no feature names", ErrInvalidArtifact)
	}
	if len(s.Mean) != n || len(s.Scale) != n {
		return fmt.Errorf("%w: scaler has %d names, %d means, %d scales",
			ErrInvalidArtifact, n, len(s.Mean), len(s.Scale))
	}
	s.mean, s.scale = s.vectors()
	return nil
}

func (s *StandardScaler) checkShape() error {
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("%w: scaler has %d means, %d scales",
			ErrInvalidArtifact, len(s.Mean), len(s.Scale))
	}
	return nil
}

// vectors returns the dense mean and scale, with zero scales replaced by 1.
func (s *StandardScaler) vectors() (*mat.VecDense, *mat.VecDense) {
	if s.mean != nil && s.scale != nil {
		return s.mean, s.scale
	}
	scale := make([]float64, len(s.Scale))
	for i, v := range s.Scale {
		if v == 0 {
			v = 1
		}
		scale[i] = v
	}
	mean := append([]float64(nil), s.Mean...)
	return mat.NewVecDense(len(mean), mean), mat.NewVecDense(len(scale), scale)
}

// checkColumns verifies that the scaler was fitted on exactly cols, in order.
func (s *StandardScaler) checkColumns(cols []string) error {
	if len(cols) != len(s.FeatureNames) {
		return fmt.Errorf("%w: encoder has %d columns, scaler was fitted on %d",
			ErrColumnMismatch, len(cols), len(s.FeatureNames))
	}
	for i, name := range cols {
		if s.FeatureNames[i] != name {
			return fmt.Errorf("%w: column %d is %q, scaler expects %q",
				ErrColumnMismatch, i, name, s.FeatureNames[i])
		}
	}
	return nil
}

// Transform returns (x - mean) / scale. A zero scale is treated as 1.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("%w: scaler got %d values, want %d", ErrDimension, len(x), len(s.Mean))
	}

	if s.mean == nil {
		if err := s.checkShape(); err != nil {
			return nil, err
		}
	}
	mean, scale := s.vectors()
	out := mat.NewVecDense(len(x), nil)
	out.SubVec(mat.NewVecDense(len(x), x), mean)
	out.DivElemVec(out, scale)
	return out.RawVector().Data, nil
}
