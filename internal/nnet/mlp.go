package nnet

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// #region mlp
// MLP is a one-hidden-layer network: y = relu(x·W1ᵀ + b1)·W2ᵀ + b2.
type MLP struct {
	w1, b1 *Parameter
	w2, b2 *Parameter
	in     int
	hidden int
	out    int

	lastInput  *mat.Dense
	lastPreAct *mat.Dense
	lastHidden *mat.Dense
}

// NewMLP builds an MLP with scaled uniform init drawn from rng.
func NewMLP(in, hidden, out int, rng *rand.Rand) *MLP {
	return &MLP{
		w1:     initParam("w1", hidden, in, rng),
		b1:     &Parameter{Name: "b1", Value: mat.NewDense(1, hidden, nil), Grad: mat.NewDense(1, hidden, nil)},
		w2:     initParam("w2", out, hidden, rng),
		b2:     &Parameter{Name: "b2", Value: mat.NewDense(1, out, nil), Grad: mat.NewDense(1, out, nil)},
		in:     in,
		hidden: hidden,
		out:    out,
	}
}

func initParam(name string, rows, cols int, rng *rand.Rand) *Parameter {
	v := mat.NewDense(rows, cols, nil)
	scale := 1.0 / math.Sqrt(float64(cols))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v.Set(i, j, (rng.Float64()*2-1)*scale)
		}
	}
	return &Parameter{Name: name, Value: v, Grad: mat.NewDense(rows, cols, nil)}
}

// Forward computes the batch output and records activations for Backward.
func (m *MLP) Forward(states *mat.Dense) *mat.Dense {
	m.lastInput = mat.DenseCopyOf(states)
	pre, hidden, out := m.apply(states)
	m.lastPreAct = pre
	m.lastHidden = hidden
	return out
}

// Evaluate computes the batch output without recording activations.
func (m *MLP) Evaluate(states *mat.Dense) Detached {
	_, _, out := m.apply(states)
	return Detach(out)
}

func (m *MLP) apply(states *mat.Dense) (pre, hidden, out *mat.Dense) {
	n, _ := states.Dims()
	pre = mat.NewDense(n, m.hidden, nil)
	pre.Mul(states, m.w1.Value.T())
	hidden = mat.NewDense(n, m.hidden, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m.hidden; j++ {
			v := pre.At(i, j) + m.b1.Value.At(0, j)
			pre.Set(i, j, v)
			if v > 0 {
				hidden.Set(i, j, v)
			}
		}
	}
	out = mat.NewDense(n, m.out, nil)
	out.Mul(hidden, m.w2.Value.T())
	for i := 0; i < n; i++ {
		for j := 0; j < m.out; j++ {
			out.Set(i, j, out.At(i, j)+m.b2.Value.At(0, j))
		}
	}
	return pre, hidden, out
}

// Backward accumulates gradients for all four parameters through the ReLU.
func (m *MLP) Backward(outputGrad *mat.Dense) {
	n, _ := outputGrad.Dims()

	var w2Grad mat.Dense
	w2Grad.Mul(outputGrad.T(), m.lastHidden)
	m.w2.Grad.Add(m.w2.Grad, &w2Grad)
	addColumnSums(m.b2.Grad, outputGrad)

	// Chain into the hidden layer, gating on the pre-activation sign.
	hiddenGrad := mat.NewDense(n, m.hidden, nil)
	hiddenGrad.Mul(outputGrad, m.w2.Value)
	for i := 0; i < n; i++ {
		for j := 0; j < m.hidden; j++ {
			if m.lastPreAct.At(i, j) <= 0 {
				hiddenGrad.Set(i, j, 0)
			}
		}
	}

	var w1Grad mat.Dense
	w1Grad.Mul(hiddenGrad.T(), m.lastInput)
	m.w1.Grad.Add(m.w1.Grad, &w1Grad)
	addColumnSums(m.b1.Grad, hiddenGrad)
}

func addColumnSums(dst, grad *mat.Dense) {
	n, c := grad.Dims()
	for j := 0; j < c; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += grad.At(i, j)
		}
		dst.Set(0, j, dst.At(0, j)+sum)
	}
}

// Parameters returns w1, b1, w2, b2 in order.
func (m *MLP) Parameters() []*Parameter {
	return []*Parameter{m.w1, m.b1, m.w2, m.b2}
}

// InputDim returns the state width the network accepts.
func (m *MLP) InputDim() int { return m.in }

// OutputDim returns the per-action output width.
func (m *MLP) OutputDim() int { return m.out }

// Clone returns a structurally identical MLP with copied parameters.
func (m *MLP) Clone() Network {
	return &MLP{
		w1:     cloneParam(m.w1),
		b1:     cloneParam(m.b1),
		w2:     cloneParam(m.w2),
		b2:     cloneParam(m.b2),
		in:     m.in,
		hidden: m.hidden,
		out:    m.out,
	}
}

func cloneParam(p *Parameter) *Parameter {
	r, c := p.Value.Dims()
	return &Parameter{Name: p.Name, Value: mat.DenseCopyOf(p.Value), Grad: mat.NewDense(r, c, nil)}
}

// #endregion mlp
