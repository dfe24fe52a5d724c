package nnet

import "gonum.org/v1/gonum/mat"

// #region parameter
// Parameter is one named weight tensor of a network together with its
// accumulated gradient. Optimizers mutate Value and read/clear Grad.
type Parameter struct {
	Name  string
	Value *mat.Dense
	Grad  *mat.Dense
}

// #endregion parameter

// #region detached
// Detached wraps network outputs severed from gradient tracking. Values read
// from one network and fed into another network's training pass must cross
// this boundary so no Backward call can attribute them to the source network.
type Detached struct {
	vals *mat.Dense
}

// Detach copies m into a Detached snapshot.
func Detach(m *mat.Dense) Detached {
	return Detached{vals: mat.DenseCopyOf(m)}
}

// Values returns the snapshot matrix. Callers treat it as read-only.
func (d Detached) Values() *mat.Dense {
	return d.vals
}

// #endregion detached

// #region network
// Network maps a batch of states (one row per sample) to a per-action value
// matrix. Forward records activations for a following Backward; Evaluate is
// the no-gradient path used for target networks and reporting snapshots.
type Network interface {
	Forward(states *mat.Dense) *mat.Dense
	Evaluate(states *mat.Dense) Detached
	Backward(outputGrad *mat.Dense)
	Parameters() []*Parameter
	InputDim() int
	OutputDim() int
	Clone() Network
}

// #endregion network
