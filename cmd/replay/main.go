package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Amir22010/Horizon/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	tolerance := flag.Float64("tol", 1e-9, "absolute tolerance for loss/target comparison")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--tol 1e-9]")
		os.Exit(2)
	}

	results, err := replay.Run(replayLoad(*fixturePath), *tolerance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(2)
	}

	os.Exit(printComparison(results))
}

func replayLoad(path string) *replay.Fixture {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		os.Exit(2)
	}
	return f
}

// #endregion main

// #region output

// printComparison outputs a comparison table and returns the exit code:
// 0 when every step matches, 1 on divergence.
func printComparison(results []replay.StepComparison) int {
	fmt.Printf("%-6s| %-14s| %-14s| %-6s| %s\n", "Step", "Expected TD", "Replayed TD", "Match", "Detail")
	fmt.Printf("%-6s+%-15s+%-15s+%-7s+%s\n",
		"------", "---------------", "---------------", "-------", "----------")

	for _, r := range results {
		match := "DIFF"
		if r.Match {
			match = "OK"
		}
		fmt.Printf("%-6d| %-14.6f| %-14.6f| %-6s| %s\n", r.Step, r.WantTD, r.GotTD, match, r.Details)
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", s.TotalSteps, s.Matches, s.Diverges)

	if s.Diverges > 0 {
		return 1
	}
	return 0
}

// #endregion output
