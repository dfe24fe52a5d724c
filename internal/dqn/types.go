package dqn

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Amir22010/Horizon/internal/nnet"
)

// #region params
// Params holds everything fixed at trainer construction.
type Params struct {
	Actions []string `json:"actions"`

	Gamma        float64 `json:"gamma"`
	Tau          float64 `json:"tau"`
	RewardBurnin int     `json:"reward_burnin"`
	Temperature  float64 `json:"temperature"`

	// MaxQLearning selects double-Q max-action targets; false selects
	// on-policy (SARSA) targets from the logged next action.
	MaxQLearning bool `json:"maxq_learning"`

	Loss         string  `json:"loss"`      // "mse" | "huber"
	Optimizer    string  `json:"optimizer"` // "sgd" | "adam"
	LearningRate float64 `json:"learning_rate"`
	L2Decay      float64 `json:"l2_decay"`

	// GradientClip bounds gradient elements before the primary optimizer
	// step; 0 disables the hook.
	GradientClip float64 `json:"gradient_clip"`

	RewardBoosts map[string]float64 `json:"reward_boosts,omitempty"`

	CalcCPE     bool     `json:"calc_cpe"`
	MetricNames []string `json:"metric_names,omitempty"`

	// UseSeqNumDiff substitutes elapsed-sequence difference for the fixed
	// discount horizon. Configured but not implemented: the trainer warns
	// and falls back to default discounting.
	UseSeqNumDiff bool `json:"use_seq_num_diff"`
}

// DefaultParams returns a steady baseline configuration for actions.
func DefaultParams(actions []string) Params {
	return Params{
		Actions:      actions,
		Gamma:        0.9,
		Tau:          0.1,
		RewardBurnin: 0,
		Temperature:  1.0,
		MaxQLearning: true,
		Loss:         "mse",
		Optimizer:    "adam",
		LearningRate: 0.01,
	}
}

// #endregion params

// #region networks
// Networks bundles the value networks the trainer owns. Reward, QCPE, and
// QCPETarget are required only when Params.CalcCPE is set.
type Networks struct {
	Q          nnet.Network
	QTarget    nnet.Network
	Reward     nnet.Network
	QCPE       nnet.Network
	QCPETarget nnet.Network
}

// #endregion networks

// #region results
// CPEResult is the counterfactual-evaluation output of one step.
type CPEResult struct {
	RewardLoss        float64
	ModelRewards      *mat.Dense // n×A, primary-metric block
	ModelPropensities *mat.Dense // n×A
}

// StepResult is what Train returns to its caller, beyond the side effects on
// the networks. CPE is nil when counterfactual evaluation is disabled.
type StepResult struct {
	Step    int
	TDLoss  float64
	Targets []float64
	CPE     *CPEResult
}

// #endregion results
