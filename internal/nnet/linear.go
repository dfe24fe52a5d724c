// Package nnet provides the value-network contract used by the trainer plus
// two reference implementations (an affine map and a one-hidden-layer MLP)
// with hand-written backward passes over gonum matrices.
package nnet

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// #region linear
// Linear is an affine map y = x·Wᵀ + b. W is out×in, b is 1×out.
type Linear struct {
	weight *Parameter
	bias   *Parameter
	in     int
	out    int

	lastInput *mat.Dense
}

// NewLinear builds a Linear with scaled uniform init drawn from rng.
func NewLinear(in, out int, rng *rand.Rand) *Linear {
	w := mat.NewDense(out, in, nil)
	scale := 1.0 / math.Sqrt(float64(in))
	for i := 0; i < out; i++ {
		for j := 0; j < in; j++ {
			w.Set(i, j, (rng.Float64()*2-1)*scale)
		}
	}
	return &Linear{
		weight: &Parameter{Name: "weight", Value: w, Grad: mat.NewDense(out, in, nil)},
		bias:   &Parameter{Name: "bias", Value: mat.NewDense(1, out, nil), Grad: mat.NewDense(1, out, nil)},
		in:     in,
		out:    out,
	}
}

// NewLinearFrom builds a Linear from explicit weight rows and bias values.
// weights holds out rows of in entries each.
func NewLinearFrom(weights [][]float64, bias []float64) *Linear {
	out := len(weights)
	in := len(weights[0])
	w := mat.NewDense(out, in, nil)
	for i, row := range weights {
		w.SetRow(i, row)
	}
	b := mat.NewDense(1, out, nil)
	b.SetRow(0, bias)
	return &Linear{
		weight: &Parameter{Name: "weight", Value: w, Grad: mat.NewDense(out, in, nil)},
		bias:   &Parameter{Name: "bias", Value: b, Grad: mat.NewDense(1, out, nil)},
		in:     in,
		out:    out,
	}
}

// Forward computes the batch output and records the input for Backward.
func (l *Linear) Forward(states *mat.Dense) *mat.Dense {
	l.lastInput = mat.DenseCopyOf(states)
	return l.apply(states)
}

// Evaluate computes the batch output without recording anything.
func (l *Linear) Evaluate(states *mat.Dense) Detached {
	return Detach(l.apply(states))
}

func (l *Linear) apply(states *mat.Dense) *mat.Dense {
	n, _ := states.Dims()
	out := mat.NewDense(n, l.out, nil)
	out.Mul(states, l.weight.Value.T())
	for i := 0; i < n; i++ {
		for j := 0; j < l.out; j++ {
			out.Set(i, j, out.At(i, j)+l.bias.Value.At(0, j))
		}
	}
	return out
}

// Backward accumulates parameter gradients for the last Forward input.
// outputGrad is n×out: dLoss/dOutput per sample.
func (l *Linear) Backward(outputGrad *mat.Dense) {
	var wGrad mat.Dense
	wGrad.Mul(outputGrad.T(), l.lastInput)
	l.weight.Grad.Add(l.weight.Grad, &wGrad)

	n, _ := outputGrad.Dims()
	for j := 0; j < l.out; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += outputGrad.At(i, j)
		}
		l.bias.Grad.Set(0, j, l.bias.Grad.At(0, j)+sum)
	}
}

// Parameters returns the weight then the bias.
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// InputDim returns the state width the map accepts.
func (l *Linear) InputDim() int { return l.in }

// OutputDim returns the per-action output width.
func (l *Linear) OutputDim() int { return l.out }

// Clone returns a structurally identical Linear with copied parameters.
func (l *Linear) Clone() Network {
	r, c := l.weight.Value.Dims()
	return &Linear{
		weight: &Parameter{Name: "weight", Value: mat.DenseCopyOf(l.weight.Value), Grad: mat.NewDense(r, c, nil)},
		bias:   &Parameter{Name: "bias", Value: mat.DenseCopyOf(l.bias.Value), Grad: mat.NewDense(1, l.out, nil)},
		in:     l.in,
		out:    l.out,
	}
}

// #endregion linear
