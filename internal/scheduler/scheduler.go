// Package scheduler emits cycle-start tickets at a target open-loop rate,
// independent of whether earlier cycles have completed. An independent
// goroutine emits tickets into a bounded channel on a fixed schedule
// (t0 + i*period), so "time to wait for the next tick" is never conflated
// with "time to wait for a response" — a busy downstream never slows the
// schedule itself, only how far the executor's queue falls behind it.
package scheduler

import (
	"context"
	"time"
)

type State int

const (
	Idle State = iota
	Running
	Draining
	Done
)

// Ticket is a scheduled cycle-start signal with a target wall-clock time.
type Ticket struct {
	CycleID     uint64
	ScheduledTs time.Time
}

// wakeupGranularity is the practical minimum interval the scheduler can
// individually sleep for; below it, tickets are emitted in batches, each
// retaining its own ScheduledTs so latency accounting stays correct.
const wakeupGranularity = 10 * time.Microsecond

// Config controls one scheduler run.
type Config struct {
	// RateHz is the target cycles/s. Zero means "as fast as possible",
	// bounded only by the executor's concurrency cap.
	RateHz float64

	Duration   time.Duration // 0 means unbounded (governed by CycleCount)
	CycleCount uint64        // 0 means unbounded (governed by Duration)
}

// Scheduler emits Tickets on Tickets() until the run's duration or cycle
// budget is exhausted, then transitions Running -> Draining -> Done.
type Scheduler struct {
	cfg     Config
	tickets chan Ticket
	state   chan State
	done    chan struct{}
}

// New constructs a Scheduler. Call Run to start emitting tickets.
func New(cfg Config) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		tickets: make(chan Ticket, 1024),
		state:   make(chan State, 4),
		done:    make(chan struct{}),
	}
}

// Tickets returns the channel of emitted tickets. It is closed once the
// scheduler reaches Done.
func (s *Scheduler) Tickets() <-chan Ticket { return s.tickets }

// Run drives the scheduler to completion. It blocks until Done; callers
// typically invoke it in its own goroutine. ctx cancellation moves the
// scheduler straight to Draining then Done.
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.tickets)
	defer s.setState(Done)
	defer s.setState(Draining)

	s.setState(Running)
	t0 := time.Now()
	deadline := time.Time{}
	if s.cfg.Duration > 0 {
		deadline = t0.Add(s.cfg.Duration)
	}

	if s.cfg.RateHz <= 0 {
		s.runAsFastAsPossible(ctx, deadline)
		return
	}

	period := time.Duration(float64(time.Second) / s.cfg.RateHz)
	var i uint64
	for {
		if s.cfg.CycleCount > 0 && i >= s.cfg.CycleCount {
			return
		}
		scheduled := t0.Add(time.Duration(float64(i) * float64(period)))
		if !deadline.IsZero() && scheduled.After(deadline) {
			return
		}

		if period < wakeupGranularity {
			// Batch: figure out how many tickets have come due since we last
			// woke, and emit them all now, each with its own ScheduledTs.
			now := time.Now()
			batchEnd := i
			for {
				next := t0.Add(time.Duration(float64(batchEnd) * float64(period)))
				if next.After(now) {
					break
				}
				if s.cfg.CycleCount > 0 && batchEnd >= s.cfg.CycleCount {
					break
				}
				if !deadline.IsZero() && next.After(deadline) {
					break
				}
				batchEnd++
			}
			for ; i < batchEnd; i++ {
				sc := t0.Add(time.Duration(float64(i) * float64(period)))
				if !s.emit(ctx, Ticket{CycleID: i, ScheduledTs: sc}) {
					return
				}
			}
			if batchEnd == i {
				// Nothing due yet; sleep a hair and retry.
				select {
				case <-ctx.Done():
					return
				case <-time.After(wakeupGranularity):
				}
			}
			continue
		}

		if wait := time.Until(scheduled); wait > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
		if !s.emit(ctx, Ticket{CycleID: i, ScheduledTs: scheduled}) {
			return
		}
		i++
	}
}

func (s *Scheduler) runAsFastAsPossible(ctx context.Context, deadline time.Time) {
	var i uint64
	for {
		if s.cfg.CycleCount > 0 && i >= s.cfg.CycleCount {
			return
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return
		}
		now := time.Now()
		if !s.emit(ctx, Ticket{CycleID: i, ScheduledTs: now}) {
			return
		}
		i++
	}
}

// emit sends a ticket, respecting cancellation. Returns false if the run
// should stop.
func (s *Scheduler) emit(ctx context.Context, t Ticket) bool {
	select {
	case s.tickets <- t:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Scheduler) setState(st State) {
	select {
	case s.state <- st:
	default:
	}
}

// State returns a channel of state transitions, best-effort (non-blocking
// sends; a slow reader may miss an intermediate state but will always see
// Done eventually via Tickets() closing).
func (s *Scheduler) State() <-chan State { return s.state }
