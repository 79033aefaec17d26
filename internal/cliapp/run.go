package cliapp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"flood/internal/expand"
	"flood/internal/metricsrv"
	"flood/internal/model"
	"flood/internal/report"
	"flood/internal/runctl"
	"flood/internal/stats"
	"flood/internal/tui"
	"flood/internal/workload"
	"flood/internal/workloadfile"
)

var runFlags struct {
	rates       []float64
	endpoints   []string
	random      bool
	choose      bool
	expRamp     bool
	baseline    string
	input       string
	duration    time.Duration
	cycles      uint64
	seed        int64
	timeout     time.Duration
	concurrency int
	outDir      string
	useTUI      bool
	metricsAddr string
}

var runCmd = &cobra.Command{
	Use:   "run METHOD [PARAMS]",
	Short: "Drive a JSON-RPC endpoint at one or more target rates",
	Args:  cobra.ArbitraryArgs,
	Run:   runRun,
}

func init() {
	f := runCmd.Flags()
	f.Float64SliceVar(&runFlags.rates, "rate", nil, "target cycles/s; repeatable; absent means as-fast-as-possible")
	f.StringSliceVar(&runFlags.endpoints, "rpc-url", nil, "JSON-RPC endpoint URL; repeatable, round-robined")
	f.BoolVar(&runFlags.random, "random", false, "shuffle the workload's calls each cycle")
	f.BoolVar(&runFlags.choose, "choose", false, "pick one call at random each cycle")
	f.BoolVar(&runFlags.expRamp, "exp-ramp", false, "sweep rates 10,100,1000,... up to the largest --rate value")
	f.StringVar(&runFlags.baseline, "baseline", "", "prior report to compare against")
	f.StringVar(&runFlags.input, "input", "", "load the workload from a JSON file instead of positional args")
	f.DurationVar(&runFlags.duration, "duration", 10*time.Second, "run duration per rate")
	f.Uint64Var(&runFlags.cycles, "cycles", 0, "cycle budget per rate; 0 means duration-bounded")
	f.Int64Var(&runFlags.seed, "seed", 0, "deterministic RNG seed; 0 derives one from the current time")
	f.DurationVar(&runFlags.timeout, "timeout", 30*time.Second, "per-call HTTP timeout")
	f.IntVar(&runFlags.concurrency, "concurrency", 1024, "max total in-flight calls")
	f.StringVar(&runFlags.outDir, "out", ".", "directory reports are written to")
	f.BoolVar(&runFlags.useTUI, "tui", false, "show a live dashboard instead of the headless progress line")
	f.StringVar(&runFlags.metricsAddr, "metrics-addr", "", "expose live Prometheus metrics on this address")
}

func runRun(cmd *cobra.Command, args []string) {
	wl, filePolicy, err := buildWorkload(args)
	if err != nil {
		exitf(2, "flood: %v", err)
	}

	if len(runFlags.endpoints) == 0 {
		exitf(2, "flood: --rpc-url is required")
	}

	policy := model.PolicySerial
	if filePolicy != "" {
		policy = filePolicy
	}
	if cmd.Flags().Changed("random") {
		if runFlags.random {
			policy = model.PolicyShuffle
		} else {
			policy = model.PolicySerial
		}
	}
	if cmd.Flags().Changed("choose") {
		if runFlags.choose {
			policy = model.PolicyChoose
		} else {
			policy = model.PolicySerial
		}
	}
	wl2, err := workload.New(wl, policy)
	if err != nil {
		exitf(2, "flood: %v", err)
	}

	seed := runFlags.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var baseline *report.Report
	if runFlags.baseline != "" {
		b, err := report.Load(runFlags.baseline)
		if err != nil {
			exitf(3, "flood: %v", err)
		}
		baseline = &b
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var metrics *metricsrv.Server
	if runFlags.metricsAddr != "" {
		metrics = metricsrv.New(runFlags.metricsAddr)
		go metrics.Serve()
		defer metrics.Shutdown(context.Background())
	}

	var tuiUpdates chan tui.Update
	var tuiDone chan struct{}
	if runFlags.useTUI {
		tuiUpdates = make(chan tui.Update, 64)
		tuiDone = make(chan struct{})
		go runDashboard(tuiUpdates, tuiDone)
	}

	onLive := func(index int, rate float64, elapsed, total time.Duration, snap stats.LiveSnapshot) {
		if tuiUpdates != nil {
			select {
			case tuiUpdates <- tui.Update{RunIndex: index, Rate: rate, Elapsed: elapsed, Total: total, Snapshot: snap}:
			default:
			}
		} else {
			printProgress(index, rate, elapsed, total, snap)
		}
	}

	cfg := runctl.Config{
		Endpoints:     runFlags.endpoints,
		Timeout:       runFlags.timeout,
		Rates:         runFlags.rates,
		ExpRamp:       runFlags.expRamp,
		Duration:      runFlags.duration,
		CycleCount:    runFlags.cycles,
		Seed:          seed,
		Concurrency:   runFlags.concurrency,
		QueueCapacity: runFlags.concurrency,
		OnLive:        onLive,
	}

	printHeader(cfg, wl2)
	results, err := runctl.Run(ctx, cfg, wl2)
	if tuiUpdates != nil {
		close(tuiUpdates)
		<-tuiDone
	}
	if err != nil {
		exitf(2, "flood: %v", err)
	}

	allAborted := len(results) > 0
	for _, res := range results {
		rep := res.Report
		if baseline != nil {
			rep = rep.WithBaselineDelta(*baseline)
		}
		if !rep.RunMeta.Aborted {
			allAborted = false
		}
		path := reportPath(runFlags.outDir, firstMethod(wl2), res.Rate, rep.RunMeta.StartedAt)
		if err := report.Write(path, rep); err != nil {
			exitf(2, "flood: %v", err)
		}
		printSummary(res.Rate, rep, path)
	}

	if allAborted {
		os.Exit(4)
	}
}

// buildWorkload resolves the workload's concrete calls from either --input
// or positional args. The returned model.Policy is the workload file's
// declared policy ("" when the calls came from positional args, since those
// carry no policy of their own); the caller applies it unless the user
// explicitly overrode it with --random/--choose.
func buildWorkload(args []string) ([]model.ConcreteCall, model.Policy, error) {
	if runFlags.input != "" {
		calls, policy, err := workloadfile.Load(runFlags.input)
		return calls, policy, err
	}
	if len(args) == 0 {
		return nil, "", fmt.Errorf("a METHOD is required (or pass --input FILE)")
	}
	method := args[0]
	rawParams := strings.Join(args[1:], " ")
	tmpl, err := expand.ParseTemplate(method, rawParams)
	if err != nil {
		return nil, "", err
	}
	calls, err := expand.Expand(tmpl)
	return calls, "", err
}

func firstMethod(wl *workload.Workload) string {
	calls := wl.Calls()
	if len(calls) == 0 {
		return "unknown"
	}
	return calls[0].Method
}

func reportPath(dir, method string, rate float64, startedAt time.Time) string {
	name := fmt.Sprintf("%s@%s-%s.json", method, rateLabel(rate), startedAt.UTC().Format("20060102T150405Z"))
	if dir == "" || dir == "." {
		return name
	}
	return dir + string(os.PathSeparator) + name
}

func rateLabel(rate float64) string {
	if rate <= 0 {
		return "max"
	}
	return strconv.FormatFloat(rate, 'f', -1, 64)
}

func runDashboard(updates chan tui.Update, done chan struct{}) {
	defer close(done)
	m := tui.NewModel(updates, make(chan struct{}))
	p := tea.NewProgram(m)
	_, _ = p.Run()
}
