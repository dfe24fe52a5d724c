package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Amir22010/Horizon/internal/report"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to horizon_reports.db")
	runID := flag.String("run", "", "run to plot (default: most recent)")
	outPath := flag.String("out", "curves.html", "output HTML path")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: curves --db path/to/horizon_reports.db [--run id] [--out curves.html]")
		os.Exit(2)
	}

	if err := run(*dbPath, *runID, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region render

func run(dbPath, runID, outPath string) error {
	store, err := report.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	if runID == "" {
		latest, err := store.LatestRun()
		if err != nil {
			return err
		}
		runID = latest.RunID
	}

	steps, err := store.ListSteps(runID)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return fmt.Errorf("run %s has no steps", runID)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "learning curves",
			Subtitle: runID,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	var xAxis []string
	tdItems := make([]opts.LineData, 0, len(steps))
	rewardItems := make([]opts.LineData, 0, len(steps))
	hasRewardLoss := false
	for _, rep := range steps {
		xAxis = append(xAxis, fmt.Sprintf("%d", rep.Step))
		tdItems = append(tdItems, opts.LineData{Value: rep.TDLoss})
		if rep.RewardLoss != nil {
			hasRewardLoss = true
			rewardItems = append(rewardItems, opts.LineData{Value: *rep.RewardLoss})
		}
	}

	line = line.SetXAxis(xAxis)
	line.AddSeries("td_loss", tdItems)
	if hasRewardLoss {
		line.AddSeries("reward_loss", rewardItems)
	}

	page := components.NewPage()
	page.AddCharts(line)

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	fmt.Printf("wrote %s (%d steps)\n", outPath, len(steps))
	return nil
}

// #endregion render
