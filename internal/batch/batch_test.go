package batch

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func validBatch() *Transitions {
	return &Transitions{
		State:                   mat.NewDense(2, 3, nil),
		Action:                  mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		Reward:                  mat.NewDense(2, 1, []float64{1, 2}),
		NextState:               mat.NewDense(2, 3, nil),
		NextAction:              mat.NewDense(2, 2, []float64{0, 1, 1, 0}),
		NotTerminal:             mat.NewDense(2, 1, []float64{1, 1}),
		PossibleActionsMask:     mat.NewDense(2, 2, []float64{1, 1, 1, 1}),
		PossibleNextActionsMask: mat.NewDense(2, 2, []float64{1, 1, 1, 1}),
	}
}

func TestValidateOK(t *testing.T) {
	if err := validBatch().Validate(2, true); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := validBatch().Validate(2, false); err != nil {
		t.Fatalf("Validate on-policy: %v", err)
	}
}

func TestValidateRowMismatch(t *testing.T) {
	b := validBatch()
	b.Reward = mat.NewDense(3, 1, nil)

	err := b.Validate(2, true)
	if !errors.Is(err, ErrRowMismatch) {
		t.Fatalf("expected ErrRowMismatch, got %v", err)
	}
}

func TestValidateWidthMismatch(t *testing.T) {
	b := validBatch()
	b.Action = mat.NewDense(2, 3, nil)

	err := b.Validate(2, true)
	if !errors.Is(err, ErrWidthMismatch) {
		t.Fatalf("expected ErrWidthMismatch, got %v", err)
	}
}

func TestValidateNoValidAction(t *testing.T) {
	b := validBatch()
	b.PossibleNextActionsMask = mat.NewDense(2, 2, []float64{1, 1, 0, 0})

	err := b.Validate(2, true)
	if !errors.Is(err, ErrNoValidAction) {
		t.Fatalf("expected ErrNoValidAction, got %v", err)
	}

	// On-policy mode never consults the masks.
	if err := b.Validate(2, false); err != nil {
		t.Fatalf("on-policy: %v", err)
	}
}

func TestValidateMissingNextActionOnPolicy(t *testing.T) {
	b := validBatch()
	b.NextAction = nil

	if err := b.Validate(2, false); err == nil {
		t.Fatal("expected error for missing next_action")
	}
	// Max-action mode does not need next_action.
	if err := b.Validate(2, true); err != nil {
		t.Fatalf("max-action: %v", err)
	}
}

func TestValidateMetricsRows(t *testing.T) {
	b := validBatch()
	b.Extras.Metrics = mat.NewDense(3, 1, nil)

	err := b.Validate(2, true)
	if !errors.Is(err, ErrRowMismatch) {
		t.Fatalf("expected ErrRowMismatch, got %v", err)
	}
}
