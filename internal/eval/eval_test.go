package eval

import (
	"math"
	"testing"

	"github.com/Amir22010/Horizon/internal/report"
)

func TestRunPasses(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	rl := 0.1
	rep := report.StepReport{
		Step:              3,
		TDLoss:            0.5,
		RewardLoss:        &rl,
		ModelPropensities: [][]float64{{0.3, 0.7}, {1, 0}},
		ModelValues:       [][]float64{{1.5, -2.0}},
	}

	res := h.Run(rep)

	if !res.Passed {
		t.Fatalf("expected pass, got: %s", res.Reason)
	}
}

func TestRunRejectsNaNLoss(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())

	res := h.Run(report.StepReport{TDLoss: math.NaN()})

	if res.Passed {
		t.Fatal("expected failure for NaN td loss")
	}
}

func TestRunRejectsExplodedLoss(t *testing.T) {
	cfg := DefaultEvalConfig()
	cfg.MaxTDLoss = 10
	h := NewEvalHarness(cfg)

	res := h.Run(report.StepReport{TDLoss: 11})

	if res.Passed {
		t.Fatal("expected failure for td loss above cap")
	}
}

func TestRunRejectsBadPropensities(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())

	res := h.Run(report.StepReport{
		TDLoss:            0.1,
		ModelPropensities: [][]float64{{0.5, 0.4}},
	})

	if res.Passed {
		t.Fatal("expected failure for propensity row summing to 0.9")
	}
}

func TestRunAllowsAllZeroPropensityRow(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())

	res := h.Run(report.StepReport{
		TDLoss:            0.1,
		ModelPropensities: [][]float64{{0, 0}, {0.5, 0.5}},
	})

	if !res.Passed {
		t.Fatalf("expected pass, got: %s", res.Reason)
	}
}

func TestRunValueMagnitudeIsInformational(t *testing.T) {
	cfg := DefaultEvalConfig()
	cfg.MaxValueMagnitude = 1
	h := NewEvalHarness(cfg)

	res := h.Run(report.StepReport{
		TDLoss:      0.1,
		ModelValues: [][]float64{{100}},
	})

	// The magnitude check reports but does not fail the step.
	if !res.Passed {
		t.Fatalf("expected pass, got: %s", res.Reason)
	}
	found := false
	for _, m := range res.Metrics {
		if m.Name == "max_value_magnitude" {
			found = true
			if m.Pass {
				t.Fatal("expected magnitude check to flag")
			}
		}
	}
	if !found {
		t.Fatal("missing max_value_magnitude metric")
	}
}
