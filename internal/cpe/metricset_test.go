package cpe

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewMetricSetLayout(t *testing.T) {
	s := NewMetricSet(3, []string{"clicks", "watch_time"})

	if s.NumMetrics() != 3 {
		t.Fatalf("expected 3 metrics, got %d", s.NumMetrics())
	}
	if s.Width() != 9 {
		t.Fatalf("expected width 9, got %d", s.Width())
	}
	if s.Names()[0] != "reward" {
		t.Fatalf("primary metric must be reward, got %s", s.Names()[0])
	}
	// Offsets are consecutive multiples of the action-set size.
	if s.offsets[0] != 0 || s.offsets[1] != 3 || s.offsets[2] != 6 {
		t.Fatalf("unexpected offsets %v", s.offsets)
	}
}

func TestGatherAt(t *testing.T) {
	// 2 actions, 2 metrics: columns are [r(a0) r(a1) m(a0) m(a1)].
	s := NewMetricSet(2, []string{"m"})
	est := mat.NewDense(2, 4, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
	})

	got := s.GatherAt(est, []int{1, 0})

	// Sample 0 took action 1: [2 4]. Sample 1 took action 0: [5 7].
	if got.At(0, 0) != 2 || got.At(0, 1) != 4 {
		t.Fatalf("row 0: got [%v %v]", got.At(0, 0), got.At(0, 1))
	}
	if got.At(1, 0) != 5 || got.At(1, 1) != 7 {
		t.Fatalf("row 1: got [%v %v]", got.At(1, 0), got.At(1, 1))
	}
}

func TestScatterAtRoundTrip(t *testing.T) {
	s := NewMetricSet(2, []string{"m"})
	grads := mat.NewDense(2, 2, []float64{0.1, 0.2, 0.3, 0.4})
	idx := []int{1, 0}

	out := s.ScatterAt(grads, idx)

	r, c := out.Dims()
	if r != 2 || c != 4 {
		t.Fatalf("expected 2x4, got %dx%d", r, c)
	}
	// Each gradient lands at exactly its gathered position, zeros elsewhere.
	back := s.GatherAt(out, idx)
	for i := 0; i < 2; i++ {
		for k := 0; k < 2; k++ {
			if back.At(i, k) != grads.At(i, k) {
				t.Fatalf("[%d,%d]: expected %v, got %v", i, k, grads.At(i, k), back.At(i, k))
			}
		}
	}
	var total, placed float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			total += out.At(i, j)
		}
	}
	for i := 0; i < 2; i++ {
		for k := 0; k < 2; k++ {
			placed += grads.At(i, k)
		}
	}
	if total != placed {
		t.Fatalf("scatter leaked mass: %v vs %v", total, placed)
	}
}

func TestRewardBlock(t *testing.T) {
	s := NewMetricSet(2, []string{"m"})
	est := mat.NewDense(1, 4, []float64{1, 2, 3, 4})

	block := s.RewardBlock(est)

	if _, c := block.Dims(); c != 2 {
		t.Fatalf("expected width 2, got %d", c)
	}
	if block.At(0, 0) != 1 || block.At(0, 1) != 2 {
		t.Fatalf("expected [1 2], got [%v %v]", block.At(0, 0), block.At(0, 1))
	}
}

func TestMetricSetNoAuxiliaryMetrics(t *testing.T) {
	s := NewMetricSet(4, nil)
	if s.NumMetrics() != 1 || s.Width() != 4 {
		t.Fatalf("expected 1 metric of width 4, got %d / %d", s.NumMetrics(), s.Width())
	}
}
