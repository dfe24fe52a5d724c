package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Amir22010/Horizon/internal/eval"
	"github.com/Amir22010/Horizon/internal/report"
	"github.com/logrusorgru/aurora"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to horizon_reports.db")
	last := flag.Int("last", 10, "show N most recent runs")
	runID := flag.String("run", "", "show step detail for one run")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/horizon_reports.db [--run id] [--last N] [--json]")
		os.Exit(2)
	}

	store, err := report.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(2)
	}
	defer store.Close()

	if *runID != "" {
		err = runStepMode(store, *runID, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type runRow struct {
	RunID       string `json:"run_id"`
	Description string `json:"description"`
	Steps       int    `json:"steps"`
	CreatedAt   string `json:"created_at"`
}

func runListMode(store *report.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	rows := make([]runRow, len(runs))
	for i, r := range runs {
		steps, err := store.ListSteps(r.RunID)
		if err != nil {
			return err
		}
		rows[i] = runRow{
			RunID:       r.RunID,
			Description: r.Description,
			Steps:       len(steps),
			CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-36s  %6s  %-20s  %s\n", "Run", "Steps", "Time", "Description")
	fmt.Printf("%-36s+-%6s+-%-20s+-%s\n",
		"------------------------------------", "------", "--------------------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-36s  %6d  %-20s  %s\n", r.RunID, r.Steps, r.CreatedAt, r.Description)
	}
	return nil
}

// #endregion list-mode

// #region step-mode

type stepRow struct {
	Step       int      `json:"step"`
	TDLoss     float64  `json:"td_loss"`
	RewardLoss *float64 `json:"reward_loss,omitempty"`
	Eval       string   `json:"eval"`
	Reason     string   `json:"reason,omitempty"`
}

func runStepMode(store *report.Store, runID string, jsonOut bool) error {
	steps, err := store.ListSteps(runID)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		fmt.Fprintln(os.Stderr, "no steps found for run")
		return nil
	}

	harness := eval.NewEvalHarness(eval.DefaultEvalConfig())
	rows := make([]stepRow, len(steps))
	for i, rep := range steps {
		check := harness.Run(rep)
		row := stepRow{Step: rep.Step, TDLoss: rep.TDLoss, RewardLoss: rep.RewardLoss}
		if check.Passed {
			row.Eval = "PASS"
		} else {
			row.Eval = "FAIL"
			row.Reason = check.Reason
		}
		rows[i] = row
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-6s  %12s  %12s  %-6s  %s\n", "Step", "TD Loss", "Reward Loss", "Eval", "Reason")
	fmt.Printf("%-6s+-%12s+-%12s+-%-6s+-%s\n",
		"------", "------------", "------------", "------", "--------------------")
	for _, r := range rows {
		rewardLoss := "—"
		if r.RewardLoss != nil {
			rewardLoss = fmt.Sprintf("%.6f", *r.RewardLoss)
		}
		verdict := aurora.Green(r.Eval)
		if r.Eval == "FAIL" {
			verdict = aurora.Red(r.Eval)
		}
		fmt.Printf("%-6d  %12.6f  %12s  %-6s  %s\n", r.Step, r.TDLoss, rewardLoss, verdict, r.Reason)
	}
	return nil
}

// #endregion step-mode

// #region helpers

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion helpers
