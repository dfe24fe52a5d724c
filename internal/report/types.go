package report

import "time"

// #region step-report
// StepReport is the fixed set of named metrics the trainer emits once per
// training step. Vector fields are per-sample; nil CPE fields mean CPE was
// disabled for the run.
type StepReport struct {
	Step   int     `json:"step"`
	TDLoss float64 `json:"td_loss"`

	LoggedActions      []int     `json:"logged_actions"`
	LoggedPropensities []float64 `json:"logged_propensities"`
	LoggedRewards      []float64 `json:"logged_rewards"`

	ModelActionIdxs []int       `json:"model_action_idxs"`
	ModelValues     [][]float64 `json:"model_values"`

	RewardLoss        *float64    `json:"reward_loss,omitempty"`
	ModelRewards      [][]float64 `json:"model_rewards,omitempty"`
	ModelPropensities [][]float64 `json:"model_propensities,omitempty"`
}

// #endregion step-report

// #region run-record
// RunRecord identifies one training run in the store.
type RunRecord struct {
	RunID       string
	Description string
	ParamsJSON  string
	CreatedAt   time.Time
}

// #endregion run-record

// #region reporter
// Reporter accepts one StepReport per training step. The trainer only
// produces correct field values; storage and display live behind this
// interface.
type Reporter interface {
	Report(rep StepReport) error
}

// Null is a Reporter that discards every report.
type Null struct{}

// Report discards rep.
func (Null) Report(rep StepReport) error { return nil }

// Memory is a Reporter that collects reports in order, for tests.
type Memory struct {
	Reports []StepReport
}

// Report appends rep.
func (m *Memory) Report(rep StepReport) error {
	m.Reports = append(m.Reports, rep)
	return nil
}

// #endregion reporter
