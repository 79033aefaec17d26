// Package runctl sequences one or more runs (a single rate, a `--rate`
// list, or an `--exp-ramp` sweep), wiring scheduler, executor and stats
// together for each, applying a cooldown between runs, and detecting
// sustained-failure aborts.
package runctl

import (
	"context"
	"fmt"
	"time"

	"flood/internal/executor"
	"flood/internal/model"
	"flood/internal/report"
	"flood/internal/rpcclient"
	"flood/internal/scheduler"
	"flood/internal/stats"
	"flood/internal/workload"
)

// Config controls one sequence of runs against a shared workload.
type Config struct {
	Endpoints []string
	Timeout   time.Duration

	Rates   []float64 // one run per entry; empty + !ExpRamp means "as fast as possible"
	ExpRamp bool      // generate {10, 100, 1000, ...} up to the largest Rates entry

	Duration   time.Duration
	CycleCount uint64
	Seed       int64

	Concurrency   int
	QueueCapacity int
	DrainDeadline time.Duration

	BucketWidth time.Duration
	Cooldown    time.Duration // between runs; default 5s

	// AbortAfterCycles/AbortAfterCalls gate the abort detector; zero uses the
	// defaults (10 cycles, 50 calls).
	AbortAfterCycles int
	AbortAfterCalls  int

	// OnLive, if set, is called periodically (every 200ms) during a run
	// with a live snapshot and elapsed/total run time, for a headless
	// progress line or the TUI's progress bar.
	OnLive func(runIndex int, rate float64, elapsed, total time.Duration, snap stats.LiveSnapshot)
}

func (c Config) withDefaults() Config {
	if c.Cooldown <= 0 {
		c.Cooldown = 5 * time.Second
	}
	if c.BucketWidth <= 0 {
		c.BucketWidth = time.Second
	}
	if c.AbortAfterCycles <= 0 {
		c.AbortAfterCycles = 10
	}
	if c.AbortAfterCalls <= 0 {
		c.AbortAfterCalls = 50
	}
	return c
}

// rates returns the concrete, ordered list of target rates to run, honoring
// ExpRamp (powers of ten up to the largest configured rate) or an explicit
// empty slice meaning a single as-fast-as-possible run.
func (c Config) rates() []float64 {
	if c.ExpRamp {
		max := 0.0
		for _, r := range c.Rates {
			if r > max {
				max = r
			}
		}
		if max <= 0 {
			max = 1000
		}
		var out []float64
		for r := 10.0; r <= max; r *= 10 {
			out = append(out, r)
		}
		return out
	}
	if len(c.Rates) == 0 {
		return []float64{0} // as-fast-as-possible
	}
	return c.Rates
}

// Result is one run's outcome: its report and whether it aborted.
type Result struct {
	Rate   float64
	Report report.Report
}

// Run executes every configured rate in sequence against wl, returning one
// Result per rate in order. ctx cancellation stops the remaining sequence.
func Run(ctx context.Context, cfg Config, wl *workload.Workload) ([]Result, error) {
	cfg = cfg.withDefaults()
	client := rpcclient.New(cfg.Endpoints, cfg.Timeout)

	rates := cfg.rates()
	results := make([]Result, 0, len(rates))

	for i, rate := range rates {
		if ctx.Err() != nil {
			break
		}
		res, err := runOne(ctx, cfg, client, wl, i, rate)
		if err != nil {
			return results, fmt.Errorf("runctl: run %d (rate %.0f): %w", i, rate, err)
		}
		results = append(results, res)

		if i < len(rates)-1 {
			select {
			case <-ctx.Done():
				return results, nil
			case <-time.After(cfg.Cooldown):
			}
		}
	}
	return results, nil
}

func runOne(parent context.Context, cfg Config, client *rpcclient.Client, wl *workload.Workload, index int, rate float64) (Result, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	startedAt := time.Now()

	sch := scheduler.New(scheduler.Config{RateHz: rate, Duration: cfg.Duration, CycleCount: cfg.CycleCount})
	ex := executor.New(executor.Config{
		Concurrency:   cfg.Concurrency,
		QueueCapacity: cfg.QueueCapacity,
		DrainDeadline: cfg.DrainDeadline,
	}, client, wl, cfg.Seed)

	raw := executor.NewSamples(4096)
	statsCycles := make(chan model.CycleSample, 4096)
	abortCycles := make(chan model.CycleSample, 4096)

	go teeCycles(raw.Cycles, statsCycles, abortCycles)

	collector := stats.NewCollector(startedAt, cfg.BucketWidth)
	collectorDone := make(chan struct{})
	go func() {
		collector.Run(executor.Samples{Calls: raw.Calls, Cycles: statsCycles})
		close(collectorDone)
	}()

	abortDone := make(chan string, 1)
	go watchAbort(abortCycles, cfg.AbortAfterCycles, cfg.AbortAfterCalls, cancel, abortDone)

	var liveStop chan struct{}
	if cfg.OnLive != nil {
		liveStop = make(chan struct{})
		go func() {
			t := time.NewTicker(200 * time.Millisecond)
			defer t.Stop()
			for {
				select {
				case <-liveStop:
					return
				case now := <-t.C:
					cfg.OnLive(index, rate, now.Sub(startedAt), cfg.Duration, collector.Live(now))
				}
			}
		}()
	}

	go sch.Run(ctx)
	ex.Run(ctx, sch, raw)

	if liveStop != nil {
		close(liveStop)
	}
	<-collectorDone

	var abortReason string
	select {
	case abortReason = <-abortDone:
	default:
	}

	meta := report.RunMeta{
		Endpoints:  cfg.Endpoints,
		TargetRate: rate,
		Duration:   cfg.Duration.String(),
		CycleCount: cfg.CycleCount,
		Seed:       cfg.Seed,
		StartedAt:  startedAt,
		Aborted:    abortReason != "",
		AbortReason: abortReason,
	}
	elapsed := time.Since(startedAt)
	rep := report.Build(meta, collector, elapsed)
	return Result{Rate: rate, Report: rep}, nil
}

func teeCycles(in <-chan model.CycleSample, outs ...chan model.CycleSample) {
	defer func() {
		for _, o := range outs {
			close(o)
		}
	}()
	for s := range in {
		for _, o := range outs {
			o <- s
		}
	}
}

// watchAbort detects a 100% failure rate sustained for >= afterCycles
// consecutive cycles with >= afterCalls calls dispatched across that
// streak. On trip, it cancels the run and sends a human-readable reason on
// done.
func watchAbort(in <-chan model.CycleSample, afterCycles, afterCalls int, cancel context.CancelFunc, done chan<- string) {
	defer close(done)
	streak := 0
	callsInStreak := 0
	for s := range in {
		calls := s.OkCount + s.ErrCount
		if s.OkCount == 0 && s.ErrCount > 0 {
			streak++
			callsInStreak += calls
		} else {
			streak = 0
			callsInStreak = 0
		}
		if streak >= afterCycles && callsInStreak >= afterCalls {
			done <- fmt.Sprintf("100%% failure for %d consecutive cycles (%d calls)", streak, callsInStreak)
			cancel()
			// drain remaining cycle samples without re-evaluating; the run
			// is already cancelled.
			for range in {
			}
			return
		}
	}
}
