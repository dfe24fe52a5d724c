// Package eval runs lightweight validation over emitted step reports:
// loss sanity, propensity-distribution consistency, and value-magnitude
// bounds. Used after each step by the training driver and by inspect.
package eval

import (
	"fmt"
	"math"

	"github.com/Amir22010/Horizon/internal/report"
)

// #region eval-harness
// EvalHarness validates step reports against configured thresholds.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run validates one step report. Returns pass/fail with per-check metrics.
func (h *EvalHarness) Run(rep report.StepReport) EvalResult {
	var metrics []EvalMetric
	passed := true
	var failReasons []string

	// 1. TD loss: finite and bounded
	tdPass := !math.IsNaN(rep.TDLoss) && !math.IsInf(rep.TDLoss, 0) && rep.TDLoss <= h.config.MaxTDLoss
	metrics = append(metrics, EvalMetric{Name: "td_loss", Value: rep.TDLoss, Pass: tdPass})
	if !tdPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("td loss %.4f exceeds %.4f or is not finite", rep.TDLoss, h.config.MaxTDLoss))
	}

	// 2. Reward loss, when CPE produced one
	if rep.RewardLoss != nil {
		rl := *rep.RewardLoss
		rlPass := !math.IsNaN(rl) && !math.IsInf(rl, 0)
		metrics = append(metrics, EvalMetric{Name: "reward_loss", Value: rl, Pass: rlPass})
		if !rlPass {
			passed = false
			failReasons = append(failReasons, "reward loss is not finite")
		}
	}

	// 3. Propensity rows: non-negative entries summing to 1 (all-zero rows
	// mark samples with no valid action and are allowed)
	worstDev := 0.0
	propPass := true
	for _, row := range rep.ModelPropensities {
		var sum float64
		for _, p := range row {
			if p < 0 {
				propPass = false
			}
			sum += p
		}
		if sum == 0 {
			continue
		}
		if dev := math.Abs(sum - 1); dev > worstDev {
			worstDev = dev
		}
	}
	if worstDev > h.config.PropensityTolerance {
		propPass = false
	}
	if len(rep.ModelPropensities) > 0 {
		metrics = append(metrics, EvalMetric{Name: "propensity_sum_dev", Value: worstDev, Pass: propPass})
		if !propPass {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("propensity rows deviate by %.2e", worstDev))
		}
	}

	// 4. Value magnitude: informational only, does not fail the step
	maxMag := 0.0
	for _, row := range rep.ModelValues {
		for _, v := range row {
			if m := math.Abs(v); m > maxMag {
				maxMag = m
			}
		}
	}
	metrics = append(metrics, EvalMetric{
		Name:  "max_value_magnitude",
		Value: maxMag,
		Pass:  maxMag <= h.config.MaxValueMagnitude,
	})

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{Passed: passed, Metrics: metrics, Reason: reason}
}

// #endregion eval-harness
