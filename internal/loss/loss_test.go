package loss

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMSEValue(t *testing.T) {
	pred := mat.NewDense(2, 1, []float64{1, 3})
	target := mat.NewDense(2, 1, []float64{0, 1})

	// ((1-0)² + (3-1)²) / 2 = 2.5
	if got := (MSE{}).Value(pred, target); math.Abs(got-2.5) > 1e-15 {
		t.Fatalf("expected 2.5, got %v", got)
	}
}

func TestMSEGrad(t *testing.T) {
	pred := mat.NewDense(2, 1, []float64{1, 3})
	target := mat.NewDense(2, 1, []float64{0, 1})

	grad := (MSE{}).Grad(pred, target)

	// 2*(pred-target)/N with N=2: [1, 2]
	if math.Abs(grad.At(0, 0)-1) > 1e-15 || math.Abs(grad.At(1, 0)-2) > 1e-15 {
		t.Fatalf("expected [1 2], got [%v %v]", grad.At(0, 0), grad.At(1, 0))
	}
}

func TestHuberRegions(t *testing.T) {
	h := Huber{Delta: 1.0}

	// |d| = 0.5 within delta: 0.5*0.25 = 0.125
	pred := mat.NewDense(1, 1, []float64{0.5})
	target := mat.NewDense(1, 1, []float64{0})
	if got := h.Value(pred, target); math.Abs(got-0.125) > 1e-15 {
		t.Fatalf("quadratic region: expected 0.125, got %v", got)
	}

	// |d| = 3 beyond delta: 1*(3-0.5) = 2.5
	pred = mat.NewDense(1, 1, []float64{3})
	if got := h.Value(pred, target); math.Abs(got-2.5) > 1e-15 {
		t.Fatalf("linear region: expected 2.5, got %v", got)
	}
}

func TestHuberGradClamps(t *testing.T) {
	h := Huber{Delta: 1.0}
	pred := mat.NewDense(2, 1, []float64{0.5, 5})
	target := mat.NewDense(2, 1, []float64{0, 0})

	grad := h.Grad(pred, target)

	// N=2: inside delta 0.5/2 = 0.25; beyond delta clamps to 1/2 = 0.5
	if math.Abs(grad.At(0, 0)-0.25) > 1e-15 {
		t.Fatalf("expected 0.25, got %v", grad.At(0, 0))
	}
	if math.Abs(grad.At(1, 0)-0.5) > 1e-15 {
		t.Fatalf("expected 0.5, got %v", grad.At(1, 0))
	}
}

func TestForName(t *testing.T) {
	if _, err := ForName("mse"); err != nil {
		t.Fatalf("mse: %v", err)
	}
	if _, err := ForName("huber"); err != nil {
		t.Fatalf("huber: %v", err)
	}
	if _, err := ForName("hinge"); err == nil {
		t.Fatal("expected error for unknown loss")
	}
}
