package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/Amir22010/Horizon/internal/batch"
	"github.com/Amir22010/Horizon/internal/dqn"
	"github.com/Amir22010/Horizon/internal/nnet"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a trainer
// configuration, initial network weights, a batch sequence, and the step
// results a conforming trainer must reproduce.
type Fixture struct {
	Description     string            `json:"description"`
	Params          dqn.Params        `json:"params"`
	Networks        FixtureNetworks   `json:"networks"`
	Batches         []FixtureBatch    `json:"batches"`
	ExpectedResults []FixtureExpected `json:"expected_results"`
}

// FixtureNetwork holds explicit affine-map weights: out rows of in entries,
// plus one bias per output.
type FixtureNetwork struct {
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// FixtureNetworks holds initial weights for every network the run needs.
// The CPE trio is present only for CPE-enabled fixtures.
type FixtureNetworks struct {
	Q          FixtureNetwork  `json:"q"`
	QTarget    FixtureNetwork  `json:"q_target"`
	Reward     *FixtureNetwork `json:"reward,omitempty"`
	QCPE       *FixtureNetwork `json:"q_cpe,omitempty"`
	QCPETarget *FixtureNetwork `json:"q_cpe_target,omitempty"`
}

// FixtureBatch mirrors batch.Transitions with JSON-friendly slices.
type FixtureBatch struct {
	State                   [][]float64 `json:"state"`
	Action                  [][]float64 `json:"action"`
	Reward                  []float64   `json:"reward"`
	NextState               [][]float64 `json:"next_state"`
	NextAction              [][]float64 `json:"next_action"`
	NotTerminal             []float64   `json:"not_terminal"`
	PossibleActionsMask     [][]float64 `json:"possible_actions_mask"`
	PossibleNextActionsMask [][]float64 `json:"possible_next_actions_mask"`
	ActionProbability       []float64   `json:"action_probability"`
	Metrics                 [][]float64 `json:"metrics,omitempty"`
}

// FixtureExpected captures the expected outcome of one step.
type FixtureExpected struct {
	Step       int       `json:"step"`
	TDLoss     float64   `json:"td_loss"`
	Targets    []float64 `json:"targets"`
	RewardLoss *float64  `json:"reward_loss,omitempty"`
}

// #endregion fixture-types

// #region fixture-io

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// SaveFixture writes a fixture as indented JSON.
func SaveFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-io

// #region converters

// ToNetwork builds a Linear network from explicit weights.
func (n *FixtureNetwork) ToNetwork() nnet.Network {
	return nnet.NewLinearFrom(n.Weights, n.Bias)
}

// ToNetworks builds the trainer's network bundle from fixture weights.
func (ns *FixtureNetworks) ToNetworks() dqn.Networks {
	nets := dqn.Networks{
		Q:       ns.Q.ToNetwork(),
		QTarget: ns.QTarget.ToNetwork(),
	}
	if ns.Reward != nil {
		nets.Reward = ns.Reward.ToNetwork()
	}
	if ns.QCPE != nil {
		nets.QCPE = ns.QCPE.ToNetwork()
	}
	if ns.QCPETarget != nil {
		nets.QCPETarget = ns.QCPETarget.ToNetwork()
	}
	return nets
}

// ToTransitions converts a fixture batch to the domain batch.
func (fb *FixtureBatch) ToTransitions() *batch.Transitions {
	t := &batch.Transitions{
		State:                   denseOf(fb.State),
		Action:                  denseOf(fb.Action),
		Reward:                  columnOf(fb.Reward),
		NextState:               denseOf(fb.NextState),
		NotTerminal:             columnOf(fb.NotTerminal),
		PossibleActionsMask:     denseOf(fb.PossibleActionsMask),
		PossibleNextActionsMask: denseOf(fb.PossibleNextActionsMask),
	}
	if fb.NextAction != nil {
		t.NextAction = denseOf(fb.NextAction)
	}
	if fb.ActionProbability != nil {
		t.Extras.ActionProbability = columnOf(fb.ActionProbability)
	}
	if fb.Metrics != nil {
		t.Extras.Metrics = denseOf(fb.Metrics)
	}
	return t
}

func denseOf(rows [][]float64) *mat.Dense {
	out := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		out.SetRow(i, row)
	}
	return out
}

func columnOf(vals []float64) *mat.Dense {
	out := mat.NewDense(len(vals), 1, nil)
	for i, v := range vals {
		out.Set(i, 0, v)
	}
	return out
}

// #endregion converters
