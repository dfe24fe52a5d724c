// Package target implements next-state value selection (double-Q max or
// on-policy) and the burn-in-aware bootstrapped target construction.
package target

import (
	"fmt"

	"github.com/Amir22010/Horizon/internal/batch"
	"github.com/Amir22010/Horizon/internal/matutil"
	"github.com/Amir22010/Horizon/internal/nnet"
	"gonum.org/v1/gonum/mat"
)

// #region mode
// Policy names the two target-selection behaviors.
type Policy int

const (
	// MaxActionPolicy picks the maximizing valid action (double-Q).
	MaxActionPolicy Policy = iota
	// OnPolicyPolicy evaluates the logged next action (SARSA).
	OnPolicyPolicy
)

// Mode is the tagged selection variant: the policy plus the data it needs —
// a validity mask for max-action, a concrete one-hot next action for
// on-policy. Built only through MaxAction and OnPolicy.
type Mode struct {
	policy   Policy
	selector *mat.Dense
}

// MaxAction selects the maximizing action among those mask allows.
func MaxAction(mask *mat.Dense) Mode {
	return Mode{policy: MaxActionPolicy, selector: mask}
}

// OnPolicy evaluates the supplied one-hot next action.
func OnPolicy(nextAction *mat.Dense) Mode {
	return Mode{policy: OnPolicyPolicy, selector: nextAction}
}

// Policy returns the mode's policy tag.
func (m Mode) Policy() Policy { return m.policy }

// Selector returns the mask or one-hot the mode carries.
func (m Mode) Selector() *mat.Dense { return m.selector }

// #endregion mode

// #region select-next
// SelectNext reduces the two per-action next-state estimates to one scalar
// value and one action index per sample.
//
// Max-action mode is double-Q: the argmax is taken over the online estimates
// restricted to valid actions, and the value is read from the target
// estimates at that index. On-policy mode is the inner product of the target
// estimates with the supplied one-hot; the index is that one-hot's argmax.
func SelectNext(online, targetVals nnet.Detached, mode Mode) (*mat.Dense, []int, error) {
	switch mode.policy {
	case MaxActionPolicy:
		if i := matutil.RowWithoutValid(mode.selector); i >= 0 {
			return nil, nil, fmt.Errorf("%w: row %d", batch.ErrNoValidAction, i)
		}
		_, idxs := matutil.MaskedMax(online.Values(), mode.selector)
		return matutil.GatherCols(targetVals.Values(), idxs), idxs, nil
	case OnPolicyPolicy:
		values := matutil.RowDot(targetVals.Values(), mode.selector)
		return values, matutil.ArgmaxRows(mode.selector), nil
	default:
		return nil, nil, fmt.Errorf("unknown target policy %d", mode.policy)
	}
}

// #endregion select-next

// #region construct
// Construct blends the shaped reward with the discounted next-state value,
// masked by the not-terminal flag. While step < burnIn the bootstrap term is
// withheld entirely and the target is the reward alone. rewards may be n×1
// (primary) or n×M (per-metric CPE targets); nextValues matches its shape
// and notTerminal is n×1, broadcast across columns.
func Construct(rewards *mat.Dense, gamma float64, nextValues, notTerminal *mat.Dense, step, burnIn int) *mat.Dense {
	if step < burnIn {
		return mat.DenseCopyOf(rewards)
	}
	filtered := matutil.ScaleRows(nextValues, notTerminal)
	discount := matutil.FullLike(rewards, gamma)

	r, c := rewards.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, rewards.At(i, j)+discount.At(i, j)*filtered.At(i, j))
		}
	}
	return out
}

// #endregion construct
