package pipeline

import (
	"fmt"
)

// leaf marks a node without children in the exported tree arrays.
const leaf = -1

// Tree is one fitted CART tree in flattened array form. Node 0 is the root.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

func (t *Tree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("%w: tree has no nodes", ErrInvalidArtifact)
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("%w: tree arrays have different lengths", ErrInvalidArtifact)
	}

	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if (left == leaf) != (right == leaf) {
			return fmt.Errorf("%w: node %d has a single child", ErrInvalidArtifact, i)
		}
		if left == leaf {
			if len(t.Value[i]) != nClasses {
				return fmt.Errorf("%w: leaf %d has %d class values, want %d",
					ErrInvalidArtifact, i, len(t.Value[i]), nClasses)
			}
			continue
		}
		// Children always come after their parent in the exported order.
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("%w: node %d has out-of-range children", ErrInvalidArtifact, i)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("%w: node %d splits on feature %d of %d", ErrInvalidArtifact, i, f, nFeatures)
		}
	}
	return nil
}

// proba returns the class distribution at the leaf reached by x.
func (t *Tree) proba(x []float64) []float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}

	counts := t.Value[node]
	var total float64
	for _, c := range counts {
		total += c
	}

	out := make([]float64, len(counts))
	if total == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = c / total
	}
	return out
}

// RandomForest averages per-tree class probabilities.
type RandomForest struct {
	Classes   []int  `json:"classes"`
	NFeatures int    `json:"n_features"`
	Trees     []Tree `json:"trees"`
}

func (f *RandomForest) validate() error {
	if len(f.Classes) == 0 {
		return fmt.Errorf("%w: forest has no classes", ErrInvalidArtifact)
	}
	if f.NFeatures <= 0 {
		return fmt.Errorf("%w: forest has no features", ErrInvalidArtifact)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("%w: forest has no trees", ErrInvalidArtifact)
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.NFeatures, len(f.Classes)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

// PredictProba returns the mean class distribution over all trees.
func (f *RandomForest) PredictProba(x []float64) ([]float64, error) {
	if len(x) != f.NFeatures {
		return nil, fmt.Errorf("%w: forest got %d values, want %d", ErrDimension, len(x), f.NFeatures)
	}

	sum := make([]float64, len(f.Classes))
	for i := range f.Trees {
		for c, p := range f.Trees[i].proba(x) {
			sum[c] += p
		}
	}
	for c := range sum {
		sum[c] /= float64(len(f.Trees))
	}
	return sum, nil
}

// Predict returns the class with the highest mean probability. Ties go to the
// class listed first.
func (f *RandomForest) Predict(x []float64) (int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}

	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return f.Classes[best], nil
}
