// Package optim provides the optimizers that consume nnet parameter
// gradients, plus the gradient-modification hook applied between backward
// and step.
package optim

import (
	"fmt"
	"math"

	"github.com/Amir22010/Horizon/internal/nnet"
	"gonum.org/v1/gonum/mat"
)

// #region optimizer
// Optimizer advances a fixed parameter set using accumulated gradients.
type Optimizer interface {
	// ZeroGrad clears every accumulated gradient.
	ZeroGrad()
	// Step applies one update using the current gradients.
	Step()
}

// ForName builds the optimizer named in configuration. Supported names:
// "sgd" and "adam".
func ForName(name string, params []*nnet.Parameter, lr, weightDecay float64) (Optimizer, error) {
	switch name {
	case "sgd":
		return NewSGD(params, lr, 0.9, weightDecay), nil
	case "adam":
		return NewAdam(params, lr, weightDecay), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q", name)
	}
}

// #endregion optimizer

// #region sgd
// SGD is stochastic gradient descent with momentum and L2 weight decay.
type SGD struct {
	params      []*nnet.Parameter
	lr          float64
	momentum    float64
	weightDecay float64
	velocity    []*mat.Dense
}

// NewSGD creates an SGD optimizer over params.
func NewSGD(params []*nnet.Parameter, lr, momentum, weightDecay float64) *SGD {
	vel := make([]*mat.Dense, len(params))
	for k, p := range params {
		r, c := p.Value.Dims()
		vel[k] = mat.NewDense(r, c, nil)
	}
	return &SGD{params: params, lr: lr, momentum: momentum, weightDecay: weightDecay, velocity: vel}
}

// ZeroGrad clears the accumulated gradients of every parameter.
func (s *SGD) ZeroGrad() { zeroGrads(s.params) }

// Step applies one momentum update per parameter element.
func (s *SGD) Step() {
	for k, p := range s.params {
		r, c := p.Value.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				g := p.Grad.At(i, j) + s.weightDecay*p.Value.At(i, j)
				v := s.momentum*s.velocity[k].At(i, j) + g
				s.velocity[k].Set(i, j, v)
				p.Value.Set(i, j, p.Value.At(i, j)-s.lr*v)
			}
		}
	}
}

// #endregion sgd

// #region adam
// Adam keeps bias-corrected first and second moment estimates per element.
type Adam struct {
	params      []*nnet.Parameter
	lr          float64
	weightDecay float64
	beta1       float64
	beta2       float64
	eps         float64
	t           int
	m           []*mat.Dense
	v           []*mat.Dense
}

// NewAdam creates an Adam optimizer over params with standard betas.
func NewAdam(params []*nnet.Parameter, lr, weightDecay float64) *Adam {
	m := make([]*mat.Dense, len(params))
	v := make([]*mat.Dense, len(params))
	for k, p := range params {
		r, c := p.Value.Dims()
		m[k] = mat.NewDense(r, c, nil)
		v[k] = mat.NewDense(r, c, nil)
	}
	return &Adam{
		params:      params,
		lr:          lr,
		weightDecay: weightDecay,
		beta1:       0.9,
		beta2:       0.999,
		eps:         1e-8,
		m:           m,
		v:           v,
	}
}

// ZeroGrad clears the accumulated gradients of every parameter.
func (a *Adam) ZeroGrad() { zeroGrads(a.params) }

// Step applies one bias-corrected Adam update per parameter element.
func (a *Adam) Step() {
	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))
	for k, p := range a.params {
		r, c := p.Value.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				g := p.Grad.At(i, j) + a.weightDecay*p.Value.At(i, j)
				m := a.beta1*a.m[k].At(i, j) + (1-a.beta1)*g
				v := a.beta2*a.v[k].At(i, j) + (1-a.beta2)*g*g
				a.m[k].Set(i, j, m)
				a.v[k].Set(i, j, v)
				p.Value.Set(i, j, p.Value.At(i, j)-a.lr*(m/c1)/(math.Sqrt(v/c2)+a.eps))
			}
		}
	}
}

// #endregion adam

// #region gradient-handler
// GradientHandler mutates gradients in place after backward and before the
// optimizer step.
type GradientHandler func(params []*nnet.Parameter)

// ClipGradients returns a handler clamping every gradient element to
// [-limit, limit].
func ClipGradients(limit float64) GradientHandler {
	return func(params []*nnet.Parameter) {
		for _, p := range params {
			r, c := p.Grad.Dims()
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					g := p.Grad.At(i, j)
					if g > limit {
						p.Grad.Set(i, j, limit)
					} else if g < -limit {
						p.Grad.Set(i, j, -limit)
					}
				}
			}
		}
	}
}

// #endregion gradient-handler

// #region helpers
func zeroGrads(params []*nnet.Parameter) {
	for _, p := range params {
		p.Grad.Zero()
	}
}

// #endregion helpers
