package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/Amir22010/Horizon/internal/dqn"
	"github.com/Amir22010/Horizon/internal/replay"
)

// #region main

func main() {
	outPath := flag.String("out", "", "output fixture JSON path")
	seed := flag.Int64("seed", 1, "deterministic generator seed")
	numActions := flag.Int("actions", 2, "action-set size")
	stateDim := flag.Int("state-dim", 4, "state vector width")
	batchSize := flag.Int("batch-size", 8, "samples per batch")
	numBatches := flag.Int("batches", 10, "number of batches")
	metrics := flag.String("metrics", "", "comma-separated auxiliary metric names (enables CPE)")
	maxq := flag.Bool("maxq", true, "max-action targets; false for on-policy")
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-gen --out path/to/fixture.json [--seed N] [--actions A] [--metrics m1,m2]")
		os.Exit(2)
	}

	var metricNames []string
	if *metrics != "" {
		metricNames = strings.Split(*metrics, ",")
	}

	f, err := generate(*seed, *numActions, *stateDim, *batchSize, *numBatches, metricNames, *maxq)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		os.Exit(1)
	}
	if err := replay.SaveFixture(*outPath, f); err != nil {
		fmt.Fprintf(os.Stderr, "save: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s: %d batches of %d samples, %d actions\n",
		*outPath, *numBatches, *batchSize, *numActions)
}

// #endregion main

// #region generate

// generate builds a seeded synthetic transition set, then self-records the
// expected step results by running a trainer over it once.
func generate(seed int64, numActions, stateDim, batchSize, numBatches int, metricNames []string, maxq bool) (*replay.Fixture, error) {
	rng := rand.New(rand.NewSource(seed))

	actions := make([]string, numActions)
	for i := range actions {
		actions[i] = fmt.Sprintf("action_%d", i)
	}

	params := dqn.DefaultParams(actions)
	params.MaxQLearning = maxq
	if len(metricNames) > 0 {
		params.CalcCPE = true
		params.MetricNames = metricNames
	}

	cpeWidth := numActions * (1 + len(metricNames))
	networks := replay.FixtureNetworks{
		Q:       randomNetwork(rng, stateDim, numActions),
		QTarget: randomNetwork(rng, stateDim, numActions),
	}
	if params.CalcCPE {
		reward := randomNetwork(rng, stateDim, cpeWidth)
		qCPE := randomNetwork(rng, stateDim, cpeWidth)
		qCPETarget := randomNetwork(rng, stateDim, cpeWidth)
		networks.Reward = &reward
		networks.QCPE = &qCPE
		networks.QCPETarget = &qCPETarget
	}

	batches := make([]replay.FixtureBatch, numBatches)
	for b := range batches {
		batches[b] = randomBatch(rng, batchSize, stateDim, numActions, len(metricNames))
	}

	f := &replay.Fixture{
		Description: fmt.Sprintf("synthetic run (seed %d)", seed),
		Params:      params,
		Networks:    networks,
		Batches:     batches,
	}

	// Replay once against a trainer built from the same weights to record
	// what a conforming implementation must reproduce.
	trainer, err := dqn.New(f.Params, f.Networks.ToNetworks(), nil)
	if err != nil {
		return nil, err
	}
	for i := range f.Batches {
		res, err := trainer.Train(f.Batches[i].ToTransitions())
		if err != nil {
			return nil, fmt.Errorf("record step %d: %w", i+1, err)
		}
		exp := replay.FixtureExpected{Step: res.Step, TDLoss: res.TDLoss, Targets: res.Targets}
		if res.CPE != nil {
			rl := res.CPE.RewardLoss
			exp.RewardLoss = &rl
		}
		f.ExpectedResults = append(f.ExpectedResults, exp)
	}
	return f, nil
}

func randomNetwork(rng *rand.Rand, in, out int) replay.FixtureNetwork {
	weights := make([][]float64, out)
	for i := range weights {
		row := make([]float64, in)
		for j := range row {
			row[j] = rng.Float64()*2 - 1
		}
		weights[i] = row
	}
	bias := make([]float64, out)
	for i := range bias {
		bias[i] = rng.Float64()*0.2 - 0.1
	}
	return replay.FixtureNetwork{Weights: weights, Bias: bias}
}

func randomBatch(rng *rand.Rand, n, stateDim, numActions, numMetrics int) replay.FixtureBatch {
	fb := replay.FixtureBatch{
		State:                   randomRows(rng, n, stateDim),
		NextState:               randomRows(rng, n, stateDim),
		Reward:                  make([]float64, n),
		NotTerminal:             make([]float64, n),
		Action:                  make([][]float64, n),
		NextAction:              make([][]float64, n),
		PossibleActionsMask:     make([][]float64, n),
		PossibleNextActionsMask: make([][]float64, n),
		ActionProbability:       make([]float64, n),
	}
	if numMetrics > 0 {
		fb.Metrics = randomRows(rng, n, numMetrics)
	}
	for i := 0; i < n; i++ {
		fb.Reward[i] = rng.Float64()
		fb.NotTerminal[i] = 1
		if rng.Float64() < 0.1 {
			fb.NotTerminal[i] = 0
		}
		fb.Action[i] = oneHot(numActions, rng.Intn(numActions))
		fb.NextAction[i] = oneHot(numActions, rng.Intn(numActions))
		fb.PossibleActionsMask[i] = ones(numActions)
		fb.PossibleNextActionsMask[i] = ones(numActions)
		fb.ActionProbability[i] = 0.1 + 0.9*rng.Float64()
	}
	return fb
}

func randomRows(rng *rand.Rand, n, c int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		row := make([]float64, c)
		for j := range row {
			row[j] = rng.Float64()*2 - 1
		}
		out[i] = row
	}
	return out
}

func oneHot(n, idx int) []float64 {
	row := make([]float64, n)
	row[idx] = 1
	return row
}

func ones(n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = 1
	}
	return row
}

// #endregion generate
