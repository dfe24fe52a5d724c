// Package batch defines the transition batch consumed by one training step
// and the precondition contract it must satisfy before training touches it.
package batch

import (
	"errors"
	"fmt"

	"github.com/Amir22010/Horizon/internal/matutil"
	"gonum.org/v1/gonum/mat"
)

// #region errors
var (
	// ErrRowMismatch reports aligned tensors with differing sample counts.
	ErrRowMismatch = errors.New("batch tensors disagree on sample count")
	// ErrWidthMismatch reports a per-action tensor whose width is not the
	// action-set size.
	ErrWidthMismatch = errors.New("per-action tensor width does not match action set")
	// ErrNoValidAction reports a validity-mask row with no valid action.
	ErrNoValidAction = errors.New("mask row has no valid action")
)

// #endregion errors

// #region types
// Extras carries the logged behavior-policy propensity and optional
// auxiliary per-sample metric columns beyond the primary reward.
type Extras struct {
	ActionProbability *mat.Dense // n×1
	Metrics           *mat.Dense // n×m, nil when no auxiliary metrics
}

// Transitions is one batch of aligned per-sample tensors, one row per
// sample. A batch is ephemeral: consumed by exactly one training step.
type Transitions struct {
	State                   *mat.Dense // n×stateDim
	Action                  *mat.Dense // n×A one-hot
	Reward                  *mat.Dense // n×1 raw reward
	NextState               *mat.Dense // n×stateDim
	NextAction              *mat.Dense // n×A one-hot, on-policy mode only
	NotTerminal             *mat.Dense // n×1, 0 or 1
	PossibleActionsMask     *mat.Dense // n×A
	PossibleNextActionsMask *mat.Dense // n×A
	Extras                  Extras
}

// #endregion types

// #region validate
// Validate checks the caller contract: aligned row counts, per-action widths
// equal to numActions, and — when maxQ selection is in effect — at least one
// valid action per mask row. Violations are caller errors, not recoverable
// mid-training conditions.
func (b *Transitions) Validate(numActions int, maxQ bool) error {
	n, _ := b.State.Dims()

	rows := []struct {
		name string
		m    *mat.Dense
	}{
		{"action", b.Action},
		{"reward", b.Reward},
		{"next_state", b.NextState},
		{"not_terminal", b.NotTerminal},
		{"possible_actions_mask", b.PossibleActionsMask},
		{"possible_next_actions_mask", b.PossibleNextActionsMask},
	}
	if !maxQ {
		rows = append(rows, struct {
			name string
			m    *mat.Dense
		}{"next_action", b.NextAction})
	}
	for _, t := range rows {
		if t.m == nil {
			return fmt.Errorf("%w: %s missing", ErrRowMismatch, t.name)
		}
		if r, _ := t.m.Dims(); r != n {
			return fmt.Errorf("%w: %s has %d rows, state has %d", ErrRowMismatch, t.name, r, n)
		}
	}

	widths := []struct {
		name string
		m    *mat.Dense
	}{
		{"action", b.Action},
		{"possible_actions_mask", b.PossibleActionsMask},
		{"possible_next_actions_mask", b.PossibleNextActionsMask},
	}
	if !maxQ {
		widths = append(widths, struct {
			name string
			m    *mat.Dense
		}{"next_action", b.NextAction})
	}
	for _, t := range widths {
		if _, c := t.m.Dims(); c != numActions {
			return fmt.Errorf("%w: %s is %d wide, want %d", ErrWidthMismatch, t.name, c, numActions)
		}
	}

	if maxQ {
		if i := matutil.RowWithoutValid(b.PossibleNextActionsMask); i >= 0 {
			return fmt.Errorf("%w: possible_next_actions_mask row %d", ErrNoValidAction, i)
		}
		if i := matutil.RowWithoutValid(b.PossibleActionsMask); i >= 0 {
			return fmt.Errorf("%w: possible_actions_mask row %d", ErrNoValidAction, i)
		}
	}

	if b.Extras.Metrics != nil {
		if r, _ := b.Extras.Metrics.Dims(); r != n {
			return fmt.Errorf("%w: extras.metrics has %d rows, state has %d", ErrRowMismatch, r, n)
		}
	}
	return nil
}

// Size returns the number of samples in the batch.
func (b *Transitions) Size() int {
	n, _ := b.State.Dims()
	return n
}

// #endregion validate
