package pipeline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PCA is a fitted linear projection onto principal components.
type PCA struct {
	Mean       []float64   `json:"mean"`
	Components [][]float64 `json:"components"`

	// Whiten divides each component by the square root of its explained variance.
	Whiten            bool      `json:"whiten,omitempty"`
	ExplainedVariance []float64 `json:"explained_variance,omitempty"`

	// projection is built by validate.
	projection *projection
}

// projection is the dense form of a PCA.
type projection struct {
	mean       *mat.VecDense
	components *mat.Dense
	// whiten is nil when whitening is off.
	whiten *mat.VecDense
}

// InputDim is the number of features the projection expects.
func (p *PCA) InputDim() int {
	return len(p.Mean)
}

// OutputDim is the number of components produced.
func (p *PCA) OutputDim() int {
	return len(p.Components)
}

func (p *PCA) validate() error {
	if err := p.checkShape(); err != nil {
		return err
	}
	p.projection = p.dense()
	return nil
}

func (p *PCA) checkShape() error {
	if len(p.Mean) == 0 || len(p.Components) == 0 {
		return fmt.Errorf("%w: pca is empty", ErrInvalidArtifact)
	}
	for i, c := range p.Components {
		if len(c) != len(p.Mean) {
			return fmt.Errorf("%w: pca component %d has %d weights, want %d",
				ErrInvalidArtifact, i, len(c), len(p.Mean))
		}
	}
	if p.Whiten {
		if len(p.ExplainedVariance) != len(p.Components) {
			return fmt.Errorf("%w: pca whitening needs %d variances, got %d",
				ErrInvalidArtifact, len(p.Components), len(p.ExplainedVariance))
		}
		for i, v := range p.ExplainedVariance {
			if v <= 0 {
				return fmt.Errorf("%w: pca variance %d is not positive", ErrInvalidArtifact, i)
			}
		}
	}
	return nil
}

// dense returns the cached projection or builds one. Callers must have
// checked the shapes.
func (p *PCA) dense() *projection {
	if p.projection != nil {
		return p.projection
	}

	k, n := len(p.Components), len(p.Mean)
	weights := make([]float64, 0, k*n)
	for _, c := range p.Components {
		weights = append(weights, c...)
	}

	proj := &projection{
		mean:       mat.NewVecDense(n, append([]float64(nil), p.Mean...)),
		components: mat.NewDense(k, n, weights),
	}
	if p.Whiten {
		inv := make([]float64, k)
		for i, v := range p.ExplainedVariance {
			inv[i] = 1 / math.Sqrt(v)
		}
		proj.whiten = mat.NewVecDense(k, inv)
	}
	return proj
}

// Transform projects x onto the components.
func (p *PCA) Transform(x []float64) ([]float64, error) {
	if len(x) != len(p.Mean) {
		return nil, fmt.Errorf("%w: pca got %d values, want %d", ErrDimension, len(x), len(p.Mean))
	}

	if p.projection == nil {
		if err := p.checkShape(); err != nil {
			return nil, err
		}
	}
	proj := p.dense()

	centered := mat.NewVecDense(len(x), nil)
	centered.SubVec(mat.NewVecDense(len(x), x), proj.mean)

	out := mat.NewVecDense(len(p.Components), nil)
	out.MulVec(proj.components, centered)
	if proj.whiten != nil {
		out.MulElemVec(out, proj.whiten)
	}
	return out.RawVector().Data, nil
}
