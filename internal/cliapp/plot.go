package cliapp

import (
	"os"

	"github.com/spf13/cobra"

	"flood/internal/plotsvg"
	"flood/internal/report"
)

var plotFlags struct {
	baselines   []string
	throughput  bool
	percentile  string
	successRate bool
	out         string
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render a report's time series as an SVG chart",
	Run:   runPlot,
}

func init() {
	f := plotCmd.Flags()
	f.StringSliceVar(&plotFlags.baselines, "baseline", nil, "report file to plot; repeatable")
	f.BoolVar(&plotFlags.throughput, "throughput", false, "plot throughput_rps over time")
	f.StringVar(&plotFlags.percentile, "percentile", "", "plot the named quantile (e.g. p99) over time")
	f.BoolVar(&plotFlags.successRate, "success-rate", false, "plot success_rate over time")
	f.StringVar(&plotFlags.out, "out", "plot.svg", "output SVG path")
}

func runPlot(cmd *cobra.Command, args []string) {
	if len(plotFlags.baselines) == 0 {
		exitf(2, "flood: plot requires at least one --baseline PATH")
	}
	if !plotFlags.throughput && plotFlags.percentile == "" && !plotFlags.successRate {
		exitf(2, "flood: plot requires --throughput, --percentile P, or --success-rate")
	}

	reports := make([]report.Report, 0, len(plotFlags.baselines))
	for _, path := range plotFlags.baselines {
		r, err := report.Load(path)
		if err != nil {
			exitf(3, "flood: %v", err)
		}
		reports = append(reports, r)
	}

	var series []plotsvg.Series
	title := "flood"
	switch {
	case plotFlags.percentile != "":
		series = plotsvg.PercentileSeries(reports, plotFlags.baselines, plotFlags.percentile)
		title = plotFlags.percentile + " service time (ms)"
	case plotFlags.successRate && plotFlags.throughput:
		series = append(plotsvg.SuccessRateSeries(reports, plotFlags.baselines), plotsvg.ThroughputSeries(reports, plotFlags.baselines)...)
		title = "success rate (%) & throughput (req/s)"
	case plotFlags.successRate:
		series = plotsvg.SuccessRateSeries(reports, plotFlags.baselines)
		title = "success rate (%)"
	default:
		series = plotsvg.ThroughputSeries(reports, plotFlags.baselines)
		title = "throughput (req/s)"
	}

	svg := plotsvg.Render(title, series)
	if err := os.WriteFile(plotFlags.out, []byte(svg), 0o644); err != nil {
		exitf(2, "flood: write %s: %v", plotFlags.out, err)
	}
}
