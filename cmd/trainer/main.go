package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Amir22010/Horizon/internal/dqn"
	"github.com/Amir22010/Horizon/internal/eval"
	"github.com/Amir22010/Horizon/internal/replay"
	"github.com/Amir22010/Horizon/internal/report"
)

// #region main
func main() {
	fixturePath := flag.String("fixture", envOr("HORIZON_FIXTURE", ""), "path to training fixture JSON")
	dbPath := flag.String("db", envOr("HORIZON_DB", "horizon_reports.db"), "path to report database")
	epochs := flag.Int("epochs", 1, "passes over the fixture's batches")
	description := flag.String("desc", "training run", "run description stored with the reports")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: trainer --fixture path/to/fixture.json [--db path] [--epochs N]")
		os.Exit(2)
	}

	fixture, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		log.Fatalf("load fixture: %v", err)
	}

	store, err := report.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("open report store: %v", err)
	}
	defer store.Close()

	paramsJSON, err := json.Marshal(fixture.Params)
	if err != nil {
		log.Fatalf("marshal params: %v", err)
	}
	run, err := store.CreateRun(*description, string(paramsJSON))
	if err != nil {
		log.Fatalf("create run: %v", err)
	}

	trainer, err := dqn.New(fixture.Params, fixture.Networks.ToNetworks(), report.NewRunReporter(store, run.RunID))
	if err != nil {
		log.Fatalf("build trainer: %v", err)
	}

	fmt.Printf("Horizon trainer ready.\n")
	fmt.Printf("  Run: %s | DB: %s | Batches: %d | Epochs: %d\n",
		run.RunID, *dbPath, len(fixture.Batches), *epochs)

	var lastTD float64
	for e := 0; e < *epochs; e++ {
		for i := range fixture.Batches {
			res, err := trainer.Train(fixture.Batches[i].ToTransitions())
			if err != nil {
				log.Fatalf("train step (epoch %d, batch %d): %v", e+1, i+1, err)
			}
			lastTD = res.TDLoss
		}
		fmt.Printf("epoch %d/%d done, td_loss=%.6f\n", e+1, *epochs, lastTD)
	}

	// Validate the stored reports before declaring the run healthy.
	steps, err := store.ListSteps(run.RunID)
	if err != nil {
		log.Fatalf("list steps: %v", err)
	}
	harness := eval.NewEvalHarness(eval.DefaultEvalConfig())
	failures := 0
	for _, rep := range steps {
		if check := harness.Run(rep); !check.Passed {
			failures++
			log.Printf("step %d: %s", rep.Step, check.Reason)
		}
	}

	fmt.Printf("Finished %d steps, %d eval failures. Inspect with: inspect --db %s --run %s\n",
		trainer.Step(), failures, *dbPath, run.RunID)
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
