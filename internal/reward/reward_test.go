package reward

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestShapeBoostsTakenActionOnly(t *testing.T) {
	// Action set {A,B,C} with boost {B: 2.0}: raw reward 1.0 taking B
	// yields 3.0; taking A or C yields 1.0 unchanged.
	shaper, err := NewShaper([]string{"A", "B", "C"}, map[string]float64{"B": 2.0})
	if err != nil {
		t.Fatalf("NewShaper: %v", err)
	}

	rewards := mat.NewDense(3, 1, []float64{1, 1, 1})
	actions := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})

	shaped := shaper.Shape(rewards, actions)

	want := []float64{1, 3, 1}
	for i, w := range want {
		if got := shaped.At(i, 0); got != w {
			t.Fatalf("sample %d: expected %v, got %v", i, w, got)
		}
	}

	// Input rewards are not mutated.
	if rewards.At(1, 0) != 1 {
		t.Fatal("Shape mutated its input")
	}
}

func TestNewShaperUnknownAction(t *testing.T) {
	_, err := NewShaper([]string{"A", "B"}, map[string]float64{"D": 1.0})
	if err == nil {
		t.Fatal("expected error for boost naming unknown action")
	}
}

func TestNewShaperNoBoosts(t *testing.T) {
	shaper, err := NewShaper([]string{"A", "B"}, nil)
	if err != nil {
		t.Fatalf("NewShaper: %v", err)
	}

	rewards := mat.NewDense(1, 1, []float64{0.5})
	actions := mat.NewDense(1, 2, []float64{1, 0})
	if got := shaper.Shape(rewards, actions).At(0, 0); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}

func TestConcatMetrics(t *testing.T) {
	rewards := mat.NewDense(2, 1, []float64{1, 2})
	metrics := mat.NewDense(2, 2, []float64{10, 20, 30, 40})

	out := ConcatMetrics(rewards, metrics)

	r, c := out.Dims()
	if r != 2 || c != 3 {
		t.Fatalf("expected 2x3, got %dx%d", r, c)
	}
	// Reward column first, metric columns after.
	if out.At(0, 0) != 1 || out.At(0, 1) != 10 || out.At(0, 2) != 20 {
		t.Fatalf("row 0: got [%v %v %v]", out.At(0, 0), out.At(0, 1), out.At(0, 2))
	}
}

func TestConcatMetricsNil(t *testing.T) {
	rewards := mat.NewDense(2, 1, []float64{1, 2})

	out := ConcatMetrics(rewards, nil)

	if _, c := out.Dims(); c != 1 {
		t.Fatalf("expected single column, got %d", c)
	}
	// A copy, not an alias.
	out.Set(0, 0, 99)
	if rewards.At(0, 0) != 1 {
		t.Fatal("ConcatMetrics aliased its input")
	}
}
