// Package matutil provides the masked-matrix operations shared by the
// training engine: masked softmax, masked max/argmax, one-hot reductions,
// and per-row gather/scale over gonum matrices. Batches are row-major:
// one sample per row, one action (or action×metric slot) per column.
package matutil

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ActionNotPossible is added to the score of masked-out entries so they can
// never win a max or argmax. Worse than any legitimate action value.
const ActionNotPossible = -1e9

// #region shape-helpers

// FullLike returns a matrix shaped like m with every entry set to v.
func FullLike(m *mat.Dense, v float64) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, v)
		}
	}
	return out
}

// Column wraps a float64 slice as an n×1 matrix. The slice is copied.
func Column(vals []float64) *mat.Dense {
	out := mat.NewDense(len(vals), 1, nil)
	for i, v := range vals {
		out.Set(i, 0, v)
	}
	return out
}

// ColumnData flattens an n×1 matrix back into a slice.
func ColumnData(col *mat.Dense) []float64 {
	r, _ := col.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = col.At(i, 0)
	}
	return out
}

// Rows copies a matrix into a row-major slice of slices.
func Rows(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = m.At(i, j)
		}
		out[i] = row
	}
	return out
}

// #endregion shape-helpers

// #region one-hot-reductions

// RowDot reduces each row to the inner product of m and onehot, as an n×1
// column. Reads the value of the taken action out of a per-action row.
func RowDot(m, onehot *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		var sum float64
		for j := 0; j < c; j++ {
			sum += m.At(i, j) * onehot.At(i, j)
		}
		out.Set(i, 0, sum)
	}
	return out
}

// ArgmaxRows returns the column index of the largest entry in each row.
// Ties resolve to the lowest index.
func ArgmaxRows(m *mat.Dense) []int {
	r, c := m.Dims()
	idx := make([]int, r)
	for i := 0; i < r; i++ {
		best := math.Inf(-1)
		for j := 0; j < c; j++ {
			if v := m.At(i, j); v > best {
				best = v
				idx[i] = j
			}
		}
	}
	return idx
}

// #endregion one-hot-reductions

// #region masked-ops

// MaskedMax returns, per row, the maximum of vals over entries where mask is
// nonzero, and the column index it was found at. Masked-out entries are
// pushed down by ActionNotPossible before the scan, so rows need at least
// one valid entry for the result to be meaningful (see RowWithoutValid).
func MaskedMax(vals, mask *mat.Dense) (*mat.Dense, []int) {
	r, c := vals.Dims()
	out := mat.NewDense(r, 1, nil)
	idx := make([]int, r)
	for i := 0; i < r; i++ {
		best := math.Inf(-1)
		for j := 0; j < c; j++ {
			v := vals.At(i, j) + ActionNotPossible*(1-mask.At(i, j))
			if v > best {
				best = v
				idx[i] = j
			}
		}
		out.Set(i, 0, best)
	}
	return out, idx
}

// RowWithoutValid returns the index of the first mask row whose entries are
// all zero, or -1 when every row has at least one valid entry.
func RowWithoutValid(mask *mat.Dense) int {
	r, c := mask.Dims()
	for i := 0; i < r; i++ {
		valid := false
		for j := 0; j < c; j++ {
			if mask.At(i, j) != 0 {
				valid = true
				break
			}
		}
		if !valid {
			return i
		}
	}
	return -1
}

// MaskedSoftmax returns a per-row probability distribution over the entries
// of vals where mask is nonzero, at the given temperature. Invalid entries
// carry exactly zero mass; rows with no valid entries come back all zero
// rather than NaN. Temperature must be positive.
func MaskedSoftmax(vals, mask *mat.Dense, temperature float64) *mat.Dense {
	r, c := vals.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		// Row max over valid entries keeps the exponentials bounded.
		rowMax := math.Inf(-1)
		anyValid := false
		for j := 0; j < c; j++ {
			if mask.At(i, j) == 0 {
				continue
			}
			anyValid = true
			if v := vals.At(i, j) / temperature; v > rowMax {
				rowMax = v
			}
		}
		if !anyValid {
			continue
		}
		var sum float64
		for j := 0; j < c; j++ {
			if mask.At(i, j) == 0 {
				continue
			}
			e := math.Exp(vals.At(i, j)/temperature - rowMax)
			out.Set(i, j, e)
			sum += e
		}
		for j := 0; j < c; j++ {
			if mask.At(i, j) != 0 {
				out.Set(i, j, out.At(i, j)/sum)
			}
		}
	}
	return out
}

// #endregion masked-ops

// #region gather-scale

// GatherCols returns m[i, idx[i]] for every row i as an n×1 column.
func GatherCols(m *mat.Dense, idx []int) *mat.Dense {
	r, _ := m.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, m.At(i, idx[i]))
	}
	return out
}

// ScaleRows returns m with row i multiplied by col[i, 0]. col must be n×1.
func ScaleRows(m, col *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		s := col.At(i, 0)
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(i, j)*s)
		}
	}
	return out
}

// #endregion gather-scale
