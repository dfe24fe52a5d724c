package optim

import (
	"math"
	"testing"

	"github.com/Amir22010/Horizon/internal/nnet"
	"gonum.org/v1/gonum/mat"
)

func oneParam(value, grad float64) []*nnet.Parameter {
	return []*nnet.Parameter{{
		Name:  "w",
		Value: mat.NewDense(1, 1, []float64{value}),
		Grad:  mat.NewDense(1, 1, []float64{grad}),
	}}
}

func TestSGDStepOpposesGradient(t *testing.T) {
	params := oneParam(1.0, 2.0)
	opt := NewSGD(params, 0.1, 0, 0)

	opt.Step()

	// 1.0 - 0.1*2.0 = 0.8
	if got := params[0].Value.At(0, 0); math.Abs(got-0.8) > 1e-15 {
		t.Fatalf("expected 0.8, got %v", got)
	}
}

func TestSGDMomentumAccumulates(t *testing.T) {
	params := oneParam(0, 1.0)
	opt := NewSGD(params, 0.1, 0.9, 0)

	opt.Step()
	// v1 = 1, w = -0.1
	opt.Step()
	// v2 = 0.9*1 + 1 = 1.9, w = -0.1 - 0.19 = -0.29
	if got := params[0].Value.At(0, 0); math.Abs(got+0.29) > 1e-15 {
		t.Fatalf("expected -0.29, got %v", got)
	}
}

func TestSGDWeightDecayShrinksWithoutGradient(t *testing.T) {
	params := oneParam(1.0, 0)
	opt := NewSGD(params, 0.1, 0, 0.5)

	opt.Step()

	// effective gradient = 0 + 0.5*1.0; 1.0 - 0.1*0.5 = 0.95
	if got := params[0].Value.At(0, 0); math.Abs(got-0.95) > 1e-15 {
		t.Fatalf("expected 0.95, got %v", got)
	}
}

func TestAdamFirstStepMagnitude(t *testing.T) {
	params := oneParam(0, 0.5)
	opt := NewAdam(params, 0.01, 0)

	opt.Step()

	// Bias correction makes the first step ≈ lr regardless of gradient scale.
	got := params[0].Value.At(0, 0)
	if math.Abs(got+0.01) > 1e-6 {
		t.Fatalf("expected ≈ -0.01, got %v", got)
	}
}

func TestAdamDescendsQuadratic(t *testing.T) {
	// Minimize (w-3)² from w=0; gradient is 2(w-3).
	params := oneParam(0, 0)
	opt := NewAdam(params, 0.1, 0)

	for i := 0; i < 200; i++ {
		w := params[0].Value.At(0, 0)
		params[0].Grad.Set(0, 0, 2*(w-3))
		opt.Step()
	}

	if got := params[0].Value.At(0, 0); math.Abs(got-3) > 0.1 {
		t.Fatalf("expected ≈ 3, got %v", got)
	}
}

func TestZeroGrad(t *testing.T) {
	params := oneParam(1.0, 5.0)
	opt := NewSGD(params, 0.1, 0, 0)

	opt.ZeroGrad()

	if got := params[0].Grad.At(0, 0); got != 0 {
		t.Fatalf("expected cleared gradient, got %v", got)
	}
}

func TestClipGradients(t *testing.T) {
	params := []*nnet.Parameter{{
		Name:  "w",
		Value: mat.NewDense(1, 3, nil),
		Grad:  mat.NewDense(1, 3, []float64{5, -5, 0.2}),
	}}

	ClipGradients(1.0)(params)

	want := []float64{1, -1, 0.2}
	for j, w := range want {
		if got := params[0].Grad.At(0, j); got != w {
			t.Fatalf("col %d: expected %v, got %v", j, w, got)
		}
	}
}

func TestForName(t *testing.T) {
	params := oneParam(0, 0)
	if _, err := ForName("sgd", params, 0.1, 0); err != nil {
		t.Fatalf("sgd: %v", err)
	}
	if _, err := ForName("adam", params, 0.1, 0); err != nil {
		t.Fatalf("adam: %v", err)
	}
	if _, err := ForName("rmsprop", params, 0.1, 0); err == nil {
		t.Fatal("expected error for unknown optimizer")
	}
}
