// Package cpe lays out the multi-metric action-value space used by
// counterfactual policy evaluation: M metric blocks of A actions each,
// concatenated into one output row, addressed through an offset table.
package cpe

import (
	"gonum.org/v1/gonum/mat"
)

// #region metric-set
// MetricSet is the fixed metric layout: ordered metric names with the
// primary reward always first, and an offset table of multiples of the
// action-set size locating each metric's block.
type MetricSet struct {
	names      []string
	offsets    []int
	numActions int
}

// NewMetricSet builds the layout for the primary reward plus auxNames.
func NewMetricSet(numActions int, auxNames []string) MetricSet {
	names := append([]string{"reward"}, auxNames...)
	offsets := make([]int, len(names))
	for i := range offsets {
		offsets[i] = i * numActions
	}
	return MetricSet{names: names, offsets: offsets, numActions: numActions}
}

// Names returns the ordered metric names, primary reward first.
func (s MetricSet) Names() []string { return s.names }

// NumMetrics returns M.
func (s MetricSet) NumMetrics() int { return len(s.names) }

// Width returns the concatenated output width A×M.
func (s MetricSet) Width() int { return len(s.names) * s.numActions }

// #endregion metric-set

// #region gather-scatter
// GatherAt extracts estimates[i, offset_k + actionIdx[i]] for every sample i
// and metric k, as an n×M matrix. The same per-sample action index is reused
// across all metric blocks.
func (s MetricSet) GatherAt(estimates *mat.Dense, actionIdx []int) *mat.Dense {
	n, _ := estimates.Dims()
	out := mat.NewDense(n, len(s.names), nil)
	for i := 0; i < n; i++ {
		for k, off := range s.offsets {
			out.Set(i, k, estimates.At(i, off+actionIdx[i]))
		}
	}
	return out
}

// ScatterAt routes an n×M gathered-gradient matrix back to the positions
// GatherAt read from, zero everywhere else, as an n×Width matrix.
func (s MetricSet) ScatterAt(grads *mat.Dense, actionIdx []int) *mat.Dense {
	n, _ := grads.Dims()
	out := mat.NewDense(n, s.Width(), nil)
	for i := 0; i < n; i++ {
		for k, off := range s.offsets {
			out.Set(i, off+actionIdx[i], grads.At(i, k))
		}
	}
	return out
}

// RewardBlock slices the primary metric's block, columns
// [offset_0, offset_0+A), from an n×Width estimate matrix.
func (s MetricSet) RewardBlock(estimates *mat.Dense) *mat.Dense {
	n, _ := estimates.Dims()
	out := mat.NewDense(n, s.numActions, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < s.numActions; j++ {
			out.Set(i, j, estimates.At(i, s.offsets[0]+j))
		}
	}
	return out
}

// #endregion gather-scatter
