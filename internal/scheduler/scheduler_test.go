package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestSchedulerEmitsCycleCountTickets(t *testing.T) {
	sch := New(Config{RateHz: 1000, CycleCount: 25})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go sch.Run(ctx)

	var got []Ticket
	for t := range sch.Tickets() {
		got = append(got, t)
	}
	if len(got) != 25 {
		t.Fatalf("len(got) = %d, want 25", len(got))
	}
	for i, tk := range got {
		if tk.CycleID != uint64(i) {
			t.Errorf("got[%d].CycleID = %d, want %d", i, tk.CycleID, i)
		}
	}
}

func TestSchedulerRespectsDuration(t *testing.T) {
	sch := New(Config{RateHz: 200, Duration: 100 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go sch.Run(ctx)

	n := 0
	for range sch.Tickets() {
		n++
	}
	// ~20 tickets expected at 200Hz for 100ms; allow generous slack for
	// scheduling jitter under test load.
	if n == 0 || n > 60 {
		t.Errorf("n = %d, want roughly 20 (allowing jitter)", n)
	}
}

func TestSchedulerAsFastAsPossibleHonorsCycleCount(t *testing.T) {
	sch := New(Config{RateHz: 0, CycleCount: 50})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go sch.Run(ctx)

	n := 0
	for range sch.Tickets() {
		n++
	}
	if n != 50 {
		t.Errorf("n = %d, want 50", n)
	}
}

func TestSchedulerCancelStopsEmission(t *testing.T) {
	sch := New(Config{RateHz: 1})
	ctx, cancel := context.WithCancel(context.Background())

	go sch.Run(ctx)
	time.Sleep(10 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		for range sch.Tickets() {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Tickets() channel never closed after ctx cancellation")
	}
}

func TestSchedulerHighRateBatches(t *testing.T) {
	sch := New(Config{RateHz: 1_000_000, CycleCount: 100})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go sch.Run(ctx)

	n := 0
	for range sch.Tickets() {
		n++
	}
	if n != 100 {
		t.Errorf("n = %d, want 100", n)
	}
}
