package matutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRowDot(t *testing.T) {
	vals := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	onehot := mat.NewDense(2, 3, []float64{0, 1, 0, 0, 0, 1})

	got := RowDot(vals, onehot)

	if got.At(0, 0) != 2 {
		t.Fatalf("row 0: expected 2, got %f", got.At(0, 0))
	}
	if got.At(1, 0) != 6 {
		t.Fatalf("row 1: expected 6, got %f", got.At(1, 0))
	}
}

func TestMaskedMaxRespectsMask(t *testing.T) {
	// Row 0: best unmasked entry is column 2, but the mask only allows 0 and 1.
	vals := mat.NewDense(2, 3, []float64{1, 5, 9, 3, 2, 1})
	mask := mat.NewDense(2, 3, []float64{1, 1, 0, 1, 1, 1})

	best, idx := MaskedMax(vals, mask)

	if idx[0] != 1 || best.At(0, 0) != 5 {
		t.Fatalf("row 0: expected idx 1 value 5, got idx %d value %f", idx[0], best.At(0, 0))
	}
	if idx[1] != 0 || best.At(1, 0) != 3 {
		t.Fatalf("row 1: expected idx 0 value 3, got idx %d value %f", idx[1], best.At(1, 0))
	}
}

func TestRowWithoutValid(t *testing.T) {
	mask := mat.NewDense(3, 2, []float64{1, 0, 0, 0, 0, 1})
	if got := RowWithoutValid(mask); got != 1 {
		t.Fatalf("expected row 1, got %d", got)
	}

	full := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	if got := RowWithoutValid(full); got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}
}

func TestMaskedSoftmaxDistribution(t *testing.T) {
	vals := mat.NewDense(2, 3, []float64{1, 2, 3, 0.5, 0.5, 0.5})
	mask := mat.NewDense(2, 3, []float64{1, 0, 1, 1, 1, 1})

	probs := MaskedSoftmax(vals, mask, 1.0)

	// Invalid entries carry exactly zero mass.
	if probs.At(0, 1) != 0 {
		t.Fatalf("masked entry has mass %f", probs.At(0, 1))
	}

	for i := 0; i < 2; i++ {
		var sum float64
		for j := 0; j < 3; j++ {
			sum += probs.At(i, j)
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Fatalf("row %d sums to %f", i, sum)
		}
	}

	// Row 0 valid entries: exp(1), exp(3); larger value gets larger mass.
	if probs.At(0, 2) <= probs.At(0, 0) {
		t.Fatalf("expected column 2 to dominate row 0: %f vs %f", probs.At(0, 2), probs.At(0, 0))
	}
	// Row 1 is uniform over three equal values.
	if math.Abs(probs.At(1, 0)-1.0/3) > 1e-12 {
		t.Fatalf("expected 1/3, got %f", probs.At(1, 0))
	}
}

func TestMaskedSoftmaxAllInvalidRow(t *testing.T) {
	vals := mat.NewDense(1, 2, []float64{1, 2})
	mask := mat.NewDense(1, 2, []float64{0, 0})

	probs := MaskedSoftmax(vals, mask, 1.0)

	for j := 0; j < 2; j++ {
		if probs.At(0, j) != 0 {
			t.Fatalf("expected all-zero row, got %f at %d", probs.At(0, j), j)
		}
	}
}

func TestMaskedSoftmaxTemperature(t *testing.T) {
	vals := mat.NewDense(1, 2, []float64{1, 2})
	mask := mat.NewDense(1, 2, []float64{1, 1})

	cold := MaskedSoftmax(vals, mask, 0.1)
	hot := MaskedSoftmax(vals, mask, 10.0)

	// Low temperature sharpens toward the max; high temperature flattens.
	if cold.At(0, 1) <= hot.At(0, 1) {
		t.Fatalf("expected sharper distribution at low temperature: %f vs %f", cold.At(0, 1), hot.At(0, 1))
	}
}

func TestGatherCols(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	got := GatherCols(m, []int{2, 0})
	if got.At(0, 0) != 3 || got.At(1, 0) != 4 {
		t.Fatalf("expected [3 4], got [%f %f]", got.At(0, 0), got.At(1, 0))
	}
}

func TestScaleRows(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	col := mat.NewDense(2, 1, []float64{2, 0})
	got := ScaleRows(m, col)
	if got.At(0, 1) != 4 {
		t.Fatalf("expected 4, got %f", got.At(0, 1))
	}
	if got.At(1, 0) != 0 || got.At(1, 1) != 0 {
		t.Fatal("expected zeroed row 1")
	}
}

func TestArgmaxRows(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{0, 1, 0, 0, 0, 1})
	idx := ArgmaxRows(m)
	if idx[0] != 1 || idx[1] != 2 {
		t.Fatalf("expected [1 2], got %v", idx)
	}
}
