package runctl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flood/internal/model"
	"flood/internal/stats"
	"flood/internal/workload"
)

func okServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunSingleRateProducesReport(t *testing.T) {
	srv := okServer(t)
	wl, err := workload.New([]model.ConcreteCall{{Method: "ping"}}, model.PolicySerial)
	if err != nil {
		t.Fatalf("workload.New: %v", err)
	}

	cfg := Config{
		Endpoints:   []string{srv.URL},
		Timeout:     time.Second,
		Rates:       []float64{50},
		Duration:    200 * time.Millisecond,
		Concurrency: 32,
		Cooldown:    time.Millisecond,
	}

	results, err := Run(context.Background(), cfg, wl)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	rep := results[0].Report
	if rep.Aggregate.Count == 0 {
		t.Error("Aggregate.Count = 0, want at least one dispatched call")
	}
	if rep.RunMeta.Aborted {
		t.Errorf("run aborted unexpectedly: %s", rep.RunMeta.AbortReason)
	}
}

func TestRunExpRampProducesOneResultPerPowerOfTen(t *testing.T) {
	srv := okServer(t)
	wl, err := workload.New([]model.ConcreteCall{{Method: "ping"}}, model.PolicySerial)
	if err != nil {
		t.Fatalf("workload.New: %v", err)
	}

	cfg := Config{
		Endpoints:   []string{srv.URL},
		Timeout:     time.Second,
		Rates:       []float64{100},
		ExpRamp:     true,
		Duration:    50 * time.Millisecond,
		Concurrency: 32,
		Cooldown:    time.Millisecond,
	}

	results, err := Run(context.Background(), cfg, wl)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2 (10, 100)", len(results))
	}
	if results[0].Rate != 10 || results[1].Rate != 100 {
		t.Errorf("rates = [%v, %v], want [10, 100]", results[0].Rate, results[1].Rate)
	}
}

func TestRunAbortsOnSustainedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wl, err := workload.New([]model.ConcreteCall{{Method: "ping"}}, model.PolicySerial)
	if err != nil {
		t.Fatalf("workload.New: %v", err)
	}

	cfg := Config{
		Endpoints:        []string{srv.URL},
		Timeout:          200 * time.Millisecond,
		Rates:            []float64{200},
		Duration:         2 * time.Second,
		Concurrency:      32,
		Cooldown:         time.Millisecond,
		AbortAfterCycles: 2,
		AbortAfterCalls:  2,
	}

	results, err := Run(context.Background(), cfg, wl)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if !results[0].Report.RunMeta.Aborted {
		t.Error("RunMeta.Aborted = false, want true after a sustained-failure streak")
	}
}

func TestRunInvokesOnLive(t *testing.T) {
	srv := okServer(t)
	wl, err := workload.New([]model.ConcreteCall{{Method: "ping"}}, model.PolicySerial)
	if err != nil {
		t.Fatalf("workload.New: %v", err)
	}

	var calls int
	cfg := Config{
		Endpoints:   []string{srv.URL},
		Timeout:     time.Second,
		Rates:       []float64{100},
		Duration:    400 * time.Millisecond,
		Concurrency: 32,
		Cooldown:    time.Millisecond,
		OnLive: func(index int, rate float64, elapsed, total time.Duration, snap stats.LiveSnapshot) {
			calls++
		},
	}

	if _, err := Run(context.Background(), cfg, wl); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls == 0 {
		t.Error("OnLive was never invoked during a 400ms run with a 200ms tick")
	}
}
