// Package executor binds rate-scheduler tickets to workload cycles and
// drives concurrent dispatch of the calls each cycle contains, forwarding
// per-call and per-cycle samples to the statistics component. Total
// in-flight calls are bounded by a golang.org/x/sync/semaphore weighted
// semaphore; a bounded wait queue in front of it evicts the oldest queued
// cycle (reporting it as overload) once the target rate outpaces what the
// concurrency cap can drain.
package executor

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"flood/internal/model"
	"flood/internal/rpcclient"
	"flood/internal/scheduler"
	"flood/internal/workload"
)

// Config controls executor resource limits.
type Config struct {
	Concurrency   int           // max total in-flight calls across all cycles; default 1024
	QueueCapacity int           // bounded ticket queue size; default == Concurrency
	DrainDeadline time.Duration // max time to await in-flight cycles on Draining; default 30s
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 1024
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = c.Concurrency
	}
	if c.DrainDeadline <= 0 {
		c.DrainDeadline = 30 * time.Second
	}
	return c
}

// Samples is the output sample stream: one CallSample per dispatched call,
// one CycleSample per completed (or overloaded) cycle. Both channels are
// generously buffered; the executor is the only place backpressure may
// discard work, via ErrOverload, never the statistics sink.
type Samples struct {
	Calls  chan model.CallSample
	Cycles chan model.CycleSample
}

// NewSamples allocates a Samples pair with the given buffer size.
func NewSamples(buffer int) Samples {
	return Samples{
		Calls:  make(chan model.CallSample, buffer),
		Cycles: make(chan model.CycleSample, buffer),
	}
}

// queuedCycle pairs a scheduled ticket with the concrete calls its cycle
// will issue. Calls are resolved eagerly (from the workload, which is a
// cheap pure function) so an evicted entry still reports an accurate
// per-call ErrOverload count.
type queuedCycle struct {
	cycleID     uint64
	scheduledTs time.Time
	calls       []model.ConcreteCall
}

// Executor drives one run's worth of tickets to completion. Tickets that
// cannot be admitted to the bounded wait queue (because it is already at
// capacity) evict the oldest queued ticket, which is reported as
// ErrOverload rather than silently dropped.
type Executor struct {
	cfg    Config
	client *rpcclient.Client
	wl     *workload.Workload
	seed   int64
	sem    *semaphore.Weighted

	queue chan queuedCycle
	mu    sync.Mutex // guards the evict-oldest-on-full dance on queue

	inflight sync.WaitGroup
}

// New constructs an Executor bound to one workload, one client, and one run
// seed.
func New(cfg Config, client *rpcclient.Client, wl *workload.Workload, seed int64) *Executor {
	cfg = cfg.withDefaults()
	return &Executor{
		cfg:    cfg,
		client: client,
		wl:     wl,
		seed:   seed,
		sem:    semaphore.NewWeighted(int64(cfg.Concurrency)),
		queue:  make(chan queuedCycle, cfg.QueueCapacity),
	}
}

// Run consumes tickets from sch until its Tickets() channel closes, then
// drains in-flight cycles (up to the configured drain deadline) before
// closing both sample channels. It blocks until fully drained.
func (e *Executor) Run(ctx context.Context, sch *scheduler.Scheduler, out Samples) {
	defer close(out.Calls)
	defer close(out.Cycles)

	ctx, cancelCalls := context.WithCancel(ctx)
	defer cancelCalls()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		e.acceptTickets(sch, out)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		e.dispatchLoop(ctx, out)
	}()

	wg.Wait() // accept + dispatch both stop once the scheduler is exhausted

	drainDone := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(drainDone)
	}()

	select {
	case <-drainDone:
	case <-time.After(e.cfg.DrainDeadline):
		// Abort the calls still in flight: each returns ErrTimeout, and
		// its cycle emits its samples before the channels are closed.
		cancelCalls()
		<-drainDone
	}
}

// acceptTickets reads tickets from the scheduler and admits them to the
// bounded wait queue, evicting (and reporting as ErrOverload) the oldest
// queued cycle when the queue is already full.
func (e *Executor) acceptTickets(sch *scheduler.Scheduler, out Samples) {
	for t := range sch.Tickets() {
		qc := queuedCycle{
			cycleID:     t.CycleID,
			scheduledTs: t.ScheduledTs,
			calls:       e.wl.CycleCalls(t.CycleID, e.seed),
		}
		e.admit(qc, out)
	}
	close(e.queue)
}

// admit pushes qc onto the bounded queue, evicting the oldest entry first
// if the queue is already at capacity. Single-producer (only acceptTickets
// calls this), so the evict-then-send pair below cannot race with another
// admit.
func (e *Executor) admit(qc queuedCycle, out Samples) {
	e.mu.Lock()
	defer e.mu.Unlock()

	select {
	case e.queue <- qc:
		return
	default:
	}

	// Queue full: evict the oldest entry, then admit the new one.
	select {
	case evicted := <-e.queue:
		e.emitOverload(evicted, out)
	default:
	}
	e.queue <- qc
}

// dispatchLoop is the sole consumer of the wait queue: it blocks on the
// concurrency semaphore (so the queue fills up exactly when the target
// can't keep pace) and spawns one goroutine per admitted cycle.
func (e *Executor) dispatchLoop(ctx context.Context, out Samples) {
	for qc := range e.queue {
		weight := int64(len(qc.calls))
		if weight > int64(e.cfg.Concurrency) {
			weight = int64(e.cfg.Concurrency)
		}
		if weight == 0 {
			weight = 1
		}

		if err := e.sem.Acquire(ctx, weight); err != nil {
			e.emitOverload(qc, out)
			continue
		}

		e.inflight.Add(1)
		go e.runCycle(ctx, qc, weight, out)
	}
}

// emitOverload records a dropped or unacquirable cycle as ErrOverload: one
// call sample per call the cycle would have issued, plus a summarizing
// cycle sample.
func (e *Executor) emitOverload(qc queuedCycle, out Samples) {
	now := time.Now()
	for i, c := range qc.calls {
		out.Calls <- model.CallSample{
			CycleID: qc.cycleID, CallIndex: i, Method: c.Method,
			ScheduledTs: qc.scheduledTs, StartTs: now, EndTs: now,
			Outcome: model.ErrOverload,
		}
	}
	out.Cycles <- model.CycleSample{
		CycleID: qc.cycleID, ScheduledTs: qc.scheduledTs, StartTs: now, EndTs: now,
		ErrCount: len(qc.calls),
	}
}

// runCycle dispatches every call in one cycle concurrently, awaits them
// all, and emits per-call then per-cycle samples.
func (e *Executor) runCycle(ctx context.Context, qc queuedCycle, weight int64, out Samples) {
	defer e.inflight.Done()
	defer e.sem.Release(weight)

	start := time.Now()

	var wg sync.WaitGroup
	results := make([]rpcclient.Result, len(qc.calls))
	for i, c := range qc.calls {
		wg.Add(1)
		go func(i int, c model.ConcreteCall) {
			defer wg.Done()
			results[i] = e.client.Issue(ctx, c)
		}(i, c)
	}
	wg.Wait()

	end := time.Now()
	okCount, errCount := 0, 0
	for i, r := range results {
		out.Calls <- model.CallSample{
			CycleID: qc.cycleID, CallIndex: i, Method: qc.calls[i].Method, Endpoint: r.Endpoint,
			ScheduledTs: qc.scheduledTs, StartTs: r.StartTs, EndTs: r.EndTs,
			Outcome: r.Outcome, ResponseBytes: r.ResponseBytes,
		}
		if r.Outcome == model.Ok {
			okCount++
		} else {
			errCount++
		}
	}
	out.Cycles <- model.CycleSample{
		CycleID: qc.cycleID, ScheduledTs: qc.scheduledTs, StartTs: start, EndTs: end,
		OkCount: okCount, ErrCount: errCount,
	}
}
