package cliapp

import (
	"fmt"

	"github.com/spf13/cobra"

	"flood/internal/report"
	"flood/internal/stats"
)

var showFlags struct {
	baselines []string
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print each report's statistics in turn, with deltas against the first",
	Run:   runShow,
}

func init() {
	showCmd.Flags().StringSliceVar(&showFlags.baselines, "baseline", nil, "report file to display; repeatable")
}

func runShow(cmd *cobra.Command, args []string) {
	if len(showFlags.baselines) == 0 {
		exitf(2, "flood: show requires at least one --baseline PATH")
	}

	reports := make([]report.Report, 0, len(showFlags.baselines))
	for _, path := range showFlags.baselines {
		r, err := report.Load(path)
		if err != nil {
			exitf(3, "flood: %v", err)
		}
		reports = append(reports, r)
	}

	for i, r := range reports {
		fmt.Printf("\n=== %s ===\n", showFlags.baselines[i])
		fmt.Printf("target rate : %.0f/s\n", r.RunMeta.TargetRate)
		fmt.Printf("count       : %d (ok %d)\n", r.Aggregate.Count, r.Aggregate.Ok)
		fmt.Printf("throughput  : %.2f req/s\n", r.Aggregate.ThroughputRps)
		for _, label := range stats.QuantileLabels {
			fmt.Printf("  %-6s: %d us\n", label, r.Aggregate.ServiceTimeUs[label])
		}
		if i > 0 {
			d := r.CompareTo(reports[0])
			fmt.Printf("Δ vs %s: throughput %+.1f%%  error rate %+.1f%%\n", showFlags.baselines[0], d.ThroughputRpsPct, d.ErrorRatePct)
		}
	}
}
