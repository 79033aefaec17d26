package executor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flood/internal/model"
	"flood/internal/rpcclient"
	"flood/internal/scheduler"
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

func oneCallWorkload(t *testing.T) *workload.Workload {
	t.Helper()
	wl, err := workload.New([]model.ConcreteCall{{Method: "ping"}}, model.PolicySerial)
	if err != nil {
		t.Fatalf("workload.New: %v", err)
	}
	return wl
}

func TestExecutorDispatchesConfiguredCycles(t *testing.T) {
	srv := okServer(t)
	client := rpcclient.New([]string{srv.URL}, 2*time.Second)
	wl := oneCallWorkload(t)

	sch := scheduler.New(scheduler.Config{RateHz: 0, CycleCount: 20})
	ex := New(Config{Concurrency: 16, QueueCapacity: 16}, client, wl, 1)

	out := NewSamples(256)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go sch.Run(ctx)

	doneCycles := make(chan int)
	go func() {
		n := 0
		for range out.Cycles {
			n++
		}
		doneCycles <- n
	}()
	go func() {
		for range out.Calls {
		}
	}()

	ex.Run(ctx, sch, out)
	n := <-doneCycles

	if n != 20 {
		t.Fatalf("cycle samples = %d, want 20", n)
	}
}

func TestExecutorOverloadsUnderImpossibleRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	t.Cleanup(srv.Close)

	client := rpcclient.New([]string{srv.URL}, 2*time.Second)
	wl := oneCallWorkload(t)

	sch := scheduler.New(scheduler.Config{RateHz: 5000, Duration: 200 * time.Millisecond})
	ex := New(Config{Concurrency: 2, QueueCapacity: 2, DrainDeadline: time.Second}, client, wl, 1)

	out := NewSamples(4096)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go sch.Run(ctx)

	var overloaded int
	done := make(chan struct{})
	go func() {
		for s := range out.Cycles {
			if s.ErrCount > 0 && s.OkCount == 0 {
				overloaded++
			}
		}
		close(done)
	}()
	go func() {
		for range out.Calls {
		}
	}()

	ex.Run(ctx, sch, out)
	<-done

	if overloaded == 0 {
		t.Error("want at least one overloaded cycle when rate outpaces a 2-slot concurrency cap against a slow backend, got 0")
	}
}
