// Package reward implements the reward shaper (fixed per-action additive
// boosts) and the multi-metric reward concatenation used by CPE training.
package reward

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// #region shaper
// Shaper adds a fixed per-action boost to the reward of each sample that
// took the boosted action. The boost vector is frozen at construction.
type Shaper struct {
	boosts []float64 // length A, zero where unconfigured
}

// NewShaper resolves a name→boost map against the ordered action set.
// Naming an action absent from the set is a configuration error.
func NewShaper(actions []string, boosts map[string]float64) (*Shaper, error) {
	vec := make([]float64, len(actions))
	for name, boost := range boosts {
		idx := -1
		for i, a := range actions {
			if a == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("reward boost names unknown action %q", name)
		}
		vec[idx] = boost
	}
	return &Shaper{boosts: vec}, nil
}

// Shape returns rewards + boosts·action per sample. rewards is n×1 and
// actions is the n×A one-hot of the taken action; the input is not mutated.
func (s *Shaper) Shape(rewards, actions *mat.Dense) *mat.Dense {
	n, _ := rewards.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		var boost float64
		for j, b := range s.boosts {
			boost += b * actions.At(i, j)
		}
		out.Set(i, 0, rewards.At(i, 0)+boost)
	}
	return out
}

// #endregion shaper

// #region concat-metrics
// ConcatMetrics builds the CPE regression target: the primary reward column
// followed by the auxiliary metric columns. With metrics nil the result is a
// copy of the reward column alone.
func ConcatMetrics(rewards, metrics *mat.Dense) *mat.Dense {
	if metrics == nil {
		return mat.DenseCopyOf(rewards)
	}
	n, _ := rewards.Dims()
	_, m := metrics.Dims()
	out := mat.NewDense(n, 1+m, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, rewards.At(i, 0))
		for j := 0; j < m; j++ {
			out.Set(i, j+1, metrics.At(i, j))
		}
	}
	return out
}

// #endregion concat-metrics
