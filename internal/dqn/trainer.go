// Package dqn implements the single training-step engine: bootstrapped TD
// updates for an online/target value-network pair, plus the optional CPE
// sub-training loop over a reward model and a second value-network pair.
package dqn

import (
	"fmt"
	"log"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/Amir22010/Horizon/internal/batch"
	"github.com/Amir22010/Horizon/internal/cpe"
	"github.com/Amir22010/Horizon/internal/loss"
	"github.com/Amir22010/Horizon/internal/matutil"
	"github.com/Amir22010/Horizon/internal/nnet"
	"github.com/Amir22010/Horizon/internal/optim"
	"github.com/Amir22010/Horizon/internal/report"
	"github.com/Amir22010/Horizon/internal/reward"
	"github.com/Amir22010/Horizon/internal/target"
)

// #region trainer-struct
// Trainer owns the networks, their optimizers, and the step counter. Calls
// to Train must be serialized by the caller; the internal lock only protects
// the read-side accessors against a concurrent Train.
type Trainer struct {
	mu sync.RWMutex

	params    Params
	shaper    *reward.Shaper
	metricSet cpe.MetricSet
	lossFn    loss.Loss
	gradHook  optim.GradientHandler

	q       nnet.Network
	qTarget nnet.Network
	qOpt    optim.Optimizer

	rewardNet  nnet.Network
	rewardOpt  optim.Optimizer
	qCPE       nnet.Network
	qCPETarget nnet.Network
	cpeOpt     optim.Optimizer

	reporter report.Reporter
	step     int
}

// #endregion trainer-struct

// #region constructor
// New validates configuration and assembles a trainer. Every configuration
// error surfaces here, never mid-training: unknown loss or optimizer names,
// reward boosts naming unknown actions, CPE enabled without all three
// auxiliary networks, and network widths that disagree with the action set.
func New(p Params, nets Networks, reporter report.Reporter) (*Trainer, error) {
	if len(p.Actions) == 0 {
		return nil, fmt.Errorf("dqn: action set is empty")
	}
	if p.Temperature <= 0 {
		return nil, fmt.Errorf("dqn: temperature %v must be positive", p.Temperature)
	}
	if nets.Q == nil || nets.QTarget == nil {
		return nil, fmt.Errorf("dqn: q network and q target network are required")
	}

	numActions := len(p.Actions)
	if nets.Q.OutputDim() != numActions {
		return nil, fmt.Errorf("%w: q network outputs %d, action set has %d",
			batch.ErrWidthMismatch, nets.Q.OutputDim(), numActions)
	}
	if nets.QTarget.OutputDim() != numActions {
		return nil, fmt.Errorf("%w: q target network outputs %d, action set has %d",
			batch.ErrWidthMismatch, nets.QTarget.OutputDim(), numActions)
	}

	shaper, err := reward.NewShaper(p.Actions, p.RewardBoosts)
	if err != nil {
		return nil, fmt.Errorf("dqn: %w", err)
	}
	lossFn, err := loss.ForName(p.Loss)
	if err != nil {
		return nil, fmt.Errorf("dqn: %w", err)
	}
	qOpt, err := optim.ForName(p.Optimizer, nets.Q.Parameters(), p.LearningRate, p.L2Decay)
	if err != nil {
		return nil, fmt.Errorf("dqn: %w", err)
	}

	t := &Trainer{
		params:   p,
		shaper:   shaper,
		lossFn:   lossFn,
		q:        nets.Q,
		qTarget:  nets.QTarget,
		qOpt:     qOpt,
		reporter: reporter,
	}
	if p.GradientClip > 0 {
		t.gradHook = optim.ClipGradients(p.GradientClip)
	}
	if t.reporter == nil {
		t.reporter = report.Null{}
	}

	if p.CalcCPE {
		if nets.Reward == nil || nets.QCPE == nil || nets.QCPETarget == nil {
			return nil, fmt.Errorf("dqn: CPE requires reward, cpe, and cpe target networks")
		}
		t.metricSet = cpe.NewMetricSet(numActions, p.MetricNames)
		width := t.metricSet.Width()
		for _, n := range []struct {
			name string
			net  nnet.Network
		}{
			{"reward network", nets.Reward},
			{"cpe network", nets.QCPE},
			{"cpe target network", nets.QCPETarget},
		} {
			if n.net.OutputDim() != width {
				return nil, fmt.Errorf("%w: %s outputs %d, metric space needs %d",
					batch.ErrWidthMismatch, n.name, n.net.OutputDim(), width)
			}
		}
		t.rewardNet = nets.Reward
		t.qCPE = nets.QCPE
		t.qCPETarget = nets.QCPETarget
		// CPE optimizers run without L2 decay, matching the primary
		// learning rate.
		if t.rewardOpt, err = optim.ForName(p.Optimizer, nets.Reward.Parameters(), p.LearningRate, 0); err != nil {
			return nil, fmt.Errorf("dqn: %w", err)
		}
		if t.cpeOpt, err = optim.ForName(p.Optimizer, nets.QCPE.Parameters(), p.LearningRate, 0); err != nil {
			return nil, fmt.Errorf("dqn: %w", err)
		}
	}

	return t, nil
}

// #endregion constructor

// #region accessors
// Step returns the number of completed training steps.
func (t *Trainer) Step() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.step
}

// NumActions returns the action-set size.
func (t *Trainer) NumActions() int { return len(t.params.Actions) }

// TargetValues evaluates the target network on states, outside training.
func (t *Trainer) TargetValues(states *mat.Dense) nnet.Detached {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.qTarget.Evaluate(states)
}

// #endregion accessors

// #region train
// Train runs one training step over b: reward shaping, target selection and
// construction, one gradient step on the online network, a soft target
// update, the CPE sub-training loop, and one report emission. Mutations are
// all-or-nothing relative to validation: a rejected batch changes nothing.
func (t *Trainer) Train(b *batch.Transitions) (StepResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := b.Validate(len(t.params.Actions), t.params.MaxQLearning); err != nil {
		return StepResult{}, err
	}

	shaped := t.shaper.Shape(b.Reward, b.Action)
	t.step++

	if t.params.UseSeqNumDiff {
		log.Printf("dqn: use_seq_num_diff is configured but not implemented; using fixed discount")
	}

	// Next-state estimates from both networks, gradients excluded.
	nextOnline := t.q.Evaluate(b.NextState)
	nextTarget := t.qTarget.Evaluate(b.NextState)

	mode := target.OnPolicy(b.NextAction)
	if t.params.MaxQLearning {
		mode = target.MaxAction(b.PossibleNextActionsMask)
	}
	nextValues, nextIdxs, err := target.SelectNext(nextOnline, nextTarget, mode)
	if err != nil {
		return StepResult{}, err
	}

	targets := target.Construct(shaped, t.params.Gamma, nextValues, b.NotTerminal, t.step, t.params.RewardBurnin)

	// One gradient step on the online network for the taken actions.
	allQ := t.q.Forward(b.State)
	qTaken := matutil.RowDot(allQ, b.Action)
	tdLoss := t.lossFn.Value(qTaken, targets)

	t.qOpt.ZeroGrad()
	gradCol := t.lossFn.Grad(qTaken, targets)
	t.q.Backward(matutil.ScaleRows(b.Action, gradCol))
	if t.gradHook != nil {
		t.gradHook(t.q.Parameters())
	}
	t.qOpt.Step()

	if err := nnet.SoftUpdate(t.q, t.qTarget, t.effectiveTau()); err != nil {
		return StepResult{}, fmt.Errorf("target update: %w", err)
	}

	// Snapshot of the updated online network: CPE propensities and all
	// reported model values read post-update state.
	scores := t.q.Evaluate(b.State)
	loggedIdxs := matutil.ArgmaxRows(b.Action)

	cpeRes, err := t.calculateCPEs(b, loggedIdxs, nextIdxs, scores)
	if err != nil {
		return StepResult{}, err
	}

	modelMask := b.Action
	if t.params.MaxQLearning {
		modelMask = b.PossibleActionsMask
	}
	_, modelIdxs := matutil.MaskedMax(scores.Values(), modelMask)

	rep := report.StepReport{
		Step:            t.step,
		TDLoss:          tdLoss,
		LoggedActions:   loggedIdxs,
		LoggedRewards:   matutil.ColumnData(shaped),
		ModelActionIdxs: modelIdxs,
		ModelValues:     matutil.Rows(scores.Values()),
	}
	if b.Extras.ActionProbability != nil {
		rep.LoggedPropensities = matutil.ColumnData(b.Extras.ActionProbability)
	}
	if cpeRes != nil {
		rl := cpeRes.RewardLoss
		rep.RewardLoss = &rl
		rep.ModelRewards = matutil.Rows(cpeRes.ModelRewards)
		rep.ModelPropensities = matutil.Rows(cpeRes.ModelPropensities)
	}
	if err := t.reporter.Report(rep); err != nil {
		return StepResult{}, fmt.Errorf("report step %d: %w", t.step, err)
	}

	return StepResult{
		Step:    t.step,
		TDLoss:  tdLoss,
		Targets: matutil.ColumnData(targets),
		CPE:     cpeRes,
	}, nil
}

// effectiveTau forces a hard copy while bootstrapping is withheld.
func (t *Trainer) effectiveTau() float64 {
	if t.step < t.params.RewardBurnin {
		return 1.0
	}
	return t.params.Tau
}

// #endregion train

// #region cpe
// calculateCPEs runs the counterfactual-evaluation sub-training loop: one
// regression step on the reward network, one TD step on the CPE value
// network with its own soft target update, then propensity and
// model-reward derivation. Returns nil when CPE is disabled.
//
// The selected next-action index from the primary target selection is
// reused, via the offset table, for every metric.
func (t *Trainer) calculateCPEs(b *batch.Transitions, loggedIdxs, nextIdxs []int, scores nnet.Detached) (*CPEResult, error) {
	if !t.params.CalcCPE {
		return nil, nil
	}

	// CPE regresses the raw reward, not the shaped one.
	concat := reward.ConcatMetrics(b.Reward, b.Extras.Metrics)

	// Reward model: regress gathered estimates on the metric tensor.
	rewardEst := t.rewardNet.Forward(b.State)
	gathered := t.metricSet.GatherAt(rewardEst, loggedIdxs)
	mse := loss.MSE{}
	rewardLoss := mse.Value(gathered, concat)
	t.rewardOpt.ZeroGrad()
	t.rewardNet.Backward(t.metricSet.ScatterAt(mse.Grad(gathered, concat), loggedIdxs))
	t.rewardOpt.Step()

	// CPE value model: same burn-in target rule, per metric.
	cpeEst := t.qCPE.Forward(b.State)
	cpeTaken := t.metricSet.GatherAt(cpeEst, loggedIdxs)
	cpeTargetEst := t.qCPETarget.Evaluate(b.State)
	nextMetricValues := t.metricSet.GatherAt(cpeTargetEst.Values(), nextIdxs)
	metricTargets := target.Construct(concat, t.params.Gamma, nextMetricValues, b.NotTerminal, t.step, t.params.RewardBurnin)

	t.cpeOpt.ZeroGrad()
	t.qCPE.Backward(t.metricSet.ScatterAt(t.lossFn.Grad(cpeTaken, metricTargets), loggedIdxs))
	t.cpeOpt.Step()

	if err := nnet.SoftUpdate(t.qCPE, t.qCPETarget, t.effectiveTau()); err != nil {
		return nil, fmt.Errorf("cpe target update: %w", err)
	}

	propensityMask := b.Action
	if t.params.MaxQLearning {
		propensityMask = b.PossibleActionsMask
	}
	propensities := matutil.MaskedSoftmax(scores.Values(), propensityMask, t.params.Temperature)

	return &CPEResult{
		RewardLoss:        rewardLoss,
		ModelRewards:      t.metricSet.RewardBlock(rewardEst),
		ModelPropensities: propensities,
	}, nil
}

// #endregion cpe
