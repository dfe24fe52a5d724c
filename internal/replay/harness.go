// Package replay re-runs recorded training fixtures through a freshly built
// trainer and compares each observed step against the recorded expectation.
package replay

import (
	"fmt"
	"math"

	"github.com/Amir22010/Horizon/internal/dqn"
)

// #region types
// StepComparison captures one replayed step against its expectation.
type StepComparison struct {
	Step    int
	WantTD  float64
	GotTD   float64
	Match   bool
	Details string
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps int
	Matches    int
	Diverges   int
}

// #endregion types

// #region replay
// Run builds a trainer from the fixture and replays each batch, comparing
// TD loss, per-sample targets, and reward loss within tolerance.
func Run(f *Fixture, tolerance float64) ([]StepComparison, error) {
	trainer, err := dqn.New(f.Params, f.Networks.ToNetworks(), nil)
	if err != nil {
		return nil, fmt.Errorf("build trainer: %w", err)
	}

	if len(f.Batches) != len(f.ExpectedResults) {
		return nil, fmt.Errorf("fixture has %d batches but %d expected results",
			len(f.Batches), len(f.ExpectedResults))
	}

	results := make([]StepComparison, 0, len(f.Batches))
	for i := range f.Batches {
		res, err := trainer.Train(f.Batches[i].ToTransitions())
		if err != nil {
			return nil, fmt.Errorf("train step %d: %w", i+1, err)
		}
		results = append(results, compare(res, f.ExpectedResults[i], tolerance))
	}
	return results, nil
}

func compare(got dqn.StepResult, want FixtureExpected, tol float64) StepComparison {
	c := StepComparison{Step: got.Step, WantTD: want.TDLoss, GotTD: got.TDLoss, Match: true}

	if got.Step != want.Step {
		c.Match = false
		c.Details = fmt.Sprintf("step %d, expected %d", got.Step, want.Step)
		return c
	}
	if math.Abs(got.TDLoss-want.TDLoss) > tol {
		c.Match = false
		c.Details = fmt.Sprintf("td loss off by %.3e", math.Abs(got.TDLoss-want.TDLoss))
		return c
	}
	if len(got.Targets) != len(want.Targets) {
		c.Match = false
		c.Details = fmt.Sprintf("%d targets, expected %d", len(got.Targets), len(want.Targets))
		return c
	}
	for i := range want.Targets {
		if math.Abs(got.Targets[i]-want.Targets[i]) > tol {
			c.Match = false
			c.Details = fmt.Sprintf("target[%d] off by %.3e", i, math.Abs(got.Targets[i]-want.Targets[i]))
			return c
		}
	}
	if want.RewardLoss != nil {
		if got.CPE == nil {
			c.Match = false
			c.Details = "expected reward loss but CPE is disabled"
			return c
		}
		if math.Abs(got.CPE.RewardLoss-*want.RewardLoss) > tol {
			c.Match = false
			c.Details = fmt.Sprintf("reward loss off by %.3e", math.Abs(got.CPE.RewardLoss-*want.RewardLoss))
		}
	}
	return c
}

// Summarize computes aggregate stats from step comparisons.
func Summarize(results []StepComparison) Summary {
	s := Summary{TotalSteps: len(results)}
	for _, r := range results {
		if r.Match {
			s.Matches++
		} else {
			s.Diverges++
		}
	}
	return s
}

// #endregion replay
