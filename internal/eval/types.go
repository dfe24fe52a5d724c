package eval

// #region eval-config
// EvalConfig holds thresholds for post-step report validation.
type EvalConfig struct {
	MaxTDLoss           float64 // reject if TD loss exceeds this
	PropensityTolerance float64 // allowed deviation of propensity row sums from 1
	MaxValueMagnitude   float64 // warn if any model value magnitude exceeds this
}

// DefaultEvalConfig returns sensible defaults for training smoke runs.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxTDLoss:           1e6,
		PropensityTolerance: 1e-6,
		MaxValueMagnitude:   1e4,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of post-step validation.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion eval-result
