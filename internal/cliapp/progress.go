package cliapp

import (
	"fmt"
	"strings"
	"time"

	"flood/internal/model"
	"flood/internal/report"
	"flood/internal/runctl"
	"flood/internal/stats"
	"flood/internal/workload"
)

// printHeader and printSummary render a run's configuration and results as
// a box-drawn, emoji-marked console report.
func printHeader(cfg runctl.Config, wl *workload.Workload) {
	fmt.Printf("\n🚀 STARTING FLOOD RUN\n")
	fmt.Printf("======================================================================\n")
	fmt.Printf("Endpoints   : %s\n", strings.Join(cfg.Endpoints, ", "))
	fmt.Printf("Calls       : %d (policy %s)\n", wl.Len(), wl.Policy())
	if cfg.ExpRamp {
		fmt.Printf("Rates       : exp-ramp\n")
	} else if len(cfg.Rates) == 0 {
		fmt.Printf("Rates       : as fast as possible\n")
	} else {
		fmt.Printf("Rates       : %v\n", cfg.Rates)
	}
	fmt.Printf("Duration    : %s per rate\n", cfg.Duration)
	fmt.Printf("Concurrency : %d\n", cfg.Concurrency)
	fmt.Printf("======================================================================\n\n")
}

func printProgress(index int, rate float64, elapsed, total time.Duration, snap stats.LiveSnapshot) {
	fmt.Printf("\rrun %d (rate %.0f/s) %s/%s | RPS: %7.1f | OK: %d | Err: %d | p50: %-10s p99: %-10s",
		index, rate, elapsed.Round(time.Second), total,
		snap.ThroughputRps,
		snap.Ok, snap.Err,
		snap.P50.Round(time.Microsecond), snap.P99.Round(time.Microsecond),
	)
}

func printSummary(rate float64, rep report.Report, path string) {
	fmt.Printf("\n\n📊 RESULTS — rate %.0f/s\n", rate)
	fmt.Printf("======================================================================\n")
	fmt.Printf("Requests    : %d (ok %d)\n", rep.Aggregate.Count, rep.Aggregate.Ok)
	fmt.Printf("Throughput  : %.2f req/s\n", rep.Aggregate.ThroughputRps)
	if rep.RunMeta.Aborted {
		fmt.Printf("⚠️  Aborted  : %s\n", rep.RunMeta.AbortReason)
	}
	for _, outcome := range []model.Outcome{model.ErrHttp, model.ErrTimeout, model.ErrDecode, model.ErrRpc, model.ErrOverload} {
		if n := rep.Aggregate.ErrorsByKind[string(outcome)]; n > 0 {
			fmt.Printf("  %-12s: %d\n", outcome, n)
		}
	}
	fmt.Printf("\n⏱️  SERVICE TIME (us)\n")
	for _, label := range stats.QuantileLabels {
		fmt.Printf("   %-6s: %d\n", label, rep.Aggregate.ServiceTimeUs[label])
	}
	fmt.Printf("\nReport written to %s\n", path)
	if rep.BaselineDelta != nil {
		fmt.Printf("Δ throughput: %+.1f%%   Δ error rate: %+.1f%%\n", rep.BaselineDelta.ThroughputRpsPct, rep.BaselineDelta.ErrorRatePct)
	}
	fmt.Printf("======================================================================\n")
}
