// Package loss holds the pluggable regression-loss strategies used for the
// TD and CPE objectives. The choice is resolved once at construction via
// ForName rather than branched per call.
package loss

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// #region loss
// Loss scores predictions against targets and supplies the gradient of the
// score with respect to the predictions. Both matrices share a shape; the
// score is the mean over all elements.
type Loss interface {
	Value(pred, target *mat.Dense) float64
	Grad(pred, target *mat.Dense) *mat.Dense
}

// ForName resolves a configured loss name. Supported: "mse" and "huber".
func ForName(name string) (Loss, error) {
	switch name {
	case "mse":
		return MSE{}, nil
	case "huber":
		return Huber{Delta: 1.0}, nil
	default:
		return nil, fmt.Errorf("unknown loss %q", name)
	}
}

// #endregion loss

// #region mse
// MSE is mean squared error.
type MSE struct{}

// Value returns mean((pred-target)²).
func (MSE) Value(pred, target *mat.Dense) float64 {
	r, c := pred.Dims()
	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d := pred.At(i, j) - target.At(i, j)
			sum += d * d
		}
	}
	return sum / float64(r*c)
}

// Grad returns 2(pred-target)/N elementwise.
func (MSE) Grad(pred, target *mat.Dense) *mat.Dense {
	r, c := pred.Dims()
	n := float64(r * c)
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, 2*(pred.At(i, j)-target.At(i, j))/n)
		}
	}
	return out
}

// #endregion mse

// #region huber
// Huber is the robust loss: quadratic within Delta of the target, linear
// beyond it.
type Huber struct {
	Delta float64
}

// Value returns the mean Huber score.
func (h Huber) Value(pred, target *mat.Dense) float64 {
	r, c := pred.Dims()
	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d := math.Abs(pred.At(i, j) - target.At(i, j))
			if d <= h.Delta {
				sum += 0.5 * d * d
			} else {
				sum += h.Delta * (d - 0.5*h.Delta)
			}
		}
	}
	return sum / float64(r*c)
}

// Grad returns clamp(pred-target, ±Delta)/N elementwise.
func (h Huber) Grad(pred, target *mat.Dense) *mat.Dense {
	r, c := pred.Dims()
	n := float64(r * c)
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d := pred.At(i, j) - target.At(i, j)
			if d > h.Delta {
				d = h.Delta
			} else if d < -h.Delta {
				d = -h.Delta
			}
			out.Set(i, j, d/n)
		}
	}
	return out
}

// #endregion huber
