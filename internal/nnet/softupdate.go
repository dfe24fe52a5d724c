package nnet

import "fmt"

// #region soft-update
// SoftUpdate blends every target parameter toward its online counterpart:
// target = target*(1-tau) + online*tau. With tau=1 the target becomes an
// exact copy. The two networks must be structurally identical. Runs outside
// gradient tracking; target gradients are untouched.
func SoftUpdate(online, target Network, tau float64) error {
	op := online.Parameters()
	tp := target.Parameters()
	if len(op) != len(tp) {
		return fmt.Errorf("soft update: parameter count %d vs %d", len(op), len(tp))
	}
	for k := range op {
		or, oc := op[k].Value.Dims()
		tr, tc := tp[k].Value.Dims()
		if or != tr || oc != tc {
			return fmt.Errorf("soft update: %s shape %dx%d vs %dx%d", op[k].Name, or, oc, tr, tc)
		}
		for i := 0; i < or; i++ {
			for j := 0; j < oc; j++ {
				if tau == 1.0 {
					tp[k].Value.Set(i, j, op[k].Value.At(i, j))
					continue
				}
				blended := tp[k].Value.At(i, j)*(1-tau) + op[k].Value.At(i, j)*tau
				tp[k].Value.Set(i, j, blended)
			}
		}
	}
	return nil
}

// #endregion soft-update
