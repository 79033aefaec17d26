// Package stats consumes the executor's sample stream and maintains running
// count/error/latency aggregates, globally and per method, plus a
// fixed-width time-bucketed throughput series. It never drops a sample: the
// executor is the only place backpressure may discard work (as
// model.ErrOverload), and such discards are counted here like any other
// outcome.
//
// Built on a thread-safe atomic-counter-plus-histogram aggregate,
// generalized from one flat global aggregate into a global/per-method/
// per-bucket hierarchy, with both a service-time and a response-time
// latency view.
package stats

import (
	"sort"
	"sync"
	"time"

	"flood/internal/executor"
	"flood/internal/model"
)

// outcomeOrder fixes iteration order for snapshots so reports are stable.
var outcomeOrder = []model.Outcome{
	model.Ok, model.ErrHttp, model.ErrTimeout, model.ErrDecode, model.ErrRpc, model.ErrOverload,
}

// OutcomeCounts is a thread-safe per-outcome-kind counter.
type OutcomeCounts struct {
	mu sync.Mutex
	m  map[model.Outcome]uint64
}

func newOutcomeCounts() *OutcomeCounts {
	return &OutcomeCounts{m: make(map[model.Outcome]uint64, len(outcomeOrder))}
}

func (c *OutcomeCounts) add(o model.Outcome) {
	c.mu.Lock()
	c.m[o]++
	c.mu.Unlock()
}

// Snapshot returns a copy of the current per-outcome counts.
func (c *OutcomeCounts) Snapshot() map[model.Outcome]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[model.Outcome]uint64, len(c.m))
	for k, v := range c.m {
		out[k] = v
	}
	return out
}

// Total returns the sum of all recorded outcomes.
func (c *OutcomeCounts) Total() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var t uint64
	for _, v := range c.m {
		t += v
	}
	return t
}

// OkCount returns the number of Ok outcomes recorded.
func (c *OutcomeCounts) OkCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[model.Ok]
}

// MethodStats aggregates one method's outcomes and both latency views.
type MethodStats struct {
	Counts       *OutcomeCounts
	ServiceTime  *SafeHistogram // end_ts - start_ts
	ResponseTime *SafeHistogram // end_ts - scheduled_ts

	mu    sync.Mutex
	bytes uint64
}

func newMethodStats() *MethodStats {
	return &MethodStats{
		Counts:       newOutcomeCounts(),
		ServiceTime:  NewSafeHistogram(),
		ResponseTime: NewSafeHistogram(),
	}
}

func (m *MethodStats) addBytes(n int64) {
	if n <= 0 {
		return
	}
	m.mu.Lock()
	m.bytes += uint64(n)
	m.mu.Unlock()
}

// Bytes returns the total response bytes recorded for this method.
func (m *MethodStats) Bytes() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bytes
}

// Bucket is one fixed-width time-bucket's accumulated call/cycle counts and
// latency sketch (service-time view, the one percentile plots read).
type Bucket struct {
	Start, End time.Time

	mu                                   sync.Mutex
	okCycles, errCycles                  uint64
	okCalls, errCalls                    uint64
	serviceTime                          *SafeHistogram
}

func newBucket(start, end time.Time) *Bucket {
	return &Bucket{Start: start, End: end, serviceTime: NewSafeHistogram()}
}

func (b *Bucket) addCall(okCall bool, serviceUs int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if okCall {
		b.okCalls++
	} else {
		b.errCalls++
	}
	b.serviceTime.RecordMicros(serviceUs)
}

func (b *Bucket) addCycle(okCycle bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if okCycle {
		b.okCycles++
	} else {
		b.errCycles++
	}
}

// BucketSnapshot is the immutable, report-ready view of one Bucket.
type BucketSnapshot struct {
	Start, End                         time.Time
	OkCycles, ErrCycles                uint64
	OkCalls, ErrCalls                  uint64
	Latency                            map[string]int64
	ThroughputRps                      float64
	SuccessRate                        float64
}

func (b *Bucket) snapshot() BucketSnapshot {
	b.mu.Lock()
	okCalls, errCalls := b.okCalls, b.errCalls
	okCycles, errCycles := b.okCycles, b.errCycles
	b.mu.Unlock()

	width := b.End.Sub(b.Start).Seconds()
	var throughput float64
	if width > 0 {
		throughput = float64(okCalls+errCalls) / width
	}
	var success float64
	if total := okCalls + errCalls; total > 0 {
		success = float64(okCalls) / float64(total)
	}
	return BucketSnapshot{
		Start: b.Start, End: b.End,
		OkCycles: okCycles, ErrCycles: errCycles,
		OkCalls: okCalls, ErrCalls: errCalls,
		Latency:       b.serviceTime.Snapshot(),
		ThroughputRps: throughput,
		SuccessRate:   success,
	}
}

// Collector is the statistics sink: the sole consumer of one run's
// CallSample/CycleSample channels. Its histograms and bucket map
// are mutated only from Run's own goroutines (one per channel); readers use
// the exported thread-safe accessors.
type Collector struct {
	startedAt   time.Time
	bucketWidth time.Duration

	global *MethodStats

	methodsMu sync.Mutex
	methods   map[string]*MethodStats
	order     []string

	bucketsMu sync.Mutex
	buckets   map[int64]*Bucket
	bucketIdx []int64
}

// NewCollector constructs a Collector anchored at startedAt, bucketing
// throughput into bucketWidth-wide windows (pass 0 to default to 1s).
func NewCollector(startedAt time.Time, bucketWidth time.Duration) *Collector {
	if bucketWidth <= 0 {
		bucketWidth = time.Second
	}
	return &Collector{
		startedAt:   startedAt,
		bucketWidth: bucketWidth,
		global:      newMethodStats(),
		methods:     make(map[string]*MethodStats),
		buckets:     make(map[int64]*Bucket),
	}
}

// Run consumes in.Calls and in.Cycles until both are closed. It blocks;
// callers typically invoke it in its own goroutine alongside the executor.
func (c *Collector) Run(in executor.Samples) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for s := range in.Calls {
			c.addCall(s)
		}
	}()
	go func() {
		defer wg.Done()
		for s := range in.Cycles {
			c.addCycle(s)
		}
	}()
	wg.Wait()
}

func (c *Collector) methodStats(method string) *MethodStats {
	c.methodsMu.Lock()
	defer c.methodsMu.Unlock()
	ms, ok := c.methods[method]
	if !ok {
		ms = newMethodStats()
		c.methods[method] = ms
		c.order = append(c.order, method)
	}
	return ms
}

func (c *Collector) bucketFor(ts time.Time) *Bucket {
	idx := int64(ts.Sub(c.startedAt) / c.bucketWidth)
	if idx < 0 {
		idx = 0
	}
	c.bucketsMu.Lock()
	defer c.bucketsMu.Unlock()
	b, ok := c.buckets[idx]
	if !ok {
		start := c.startedAt.Add(time.Duration(idx) * c.bucketWidth)
		b = newBucket(start, start.Add(c.bucketWidth))
		c.buckets[idx] = b
		c.bucketIdx = append(c.bucketIdx, idx)
	}
	return b
}

func (c *Collector) addCall(s model.CallSample) {
	okCall := s.Outcome == model.Ok
	serviceUs := s.ServiceTime().Microseconds()
	responseUs := s.ResponseTime().Microseconds()

	c.global.Counts.add(s.Outcome)
	c.global.ServiceTime.RecordMicros(serviceUs)
	c.global.ResponseTime.RecordMicros(responseUs)
	c.global.addBytes(s.ResponseBytes)

	ms := c.methodStats(s.Method)
	ms.Counts.add(s.Outcome)
	ms.ServiceTime.RecordMicros(serviceUs)
	ms.ResponseTime.RecordMicros(responseUs)
	ms.addBytes(s.ResponseBytes)

	c.bucketFor(s.ScheduledTs).addCall(okCall, serviceUs)
}

func (c *Collector) addCycle(s model.CycleSample) {
	c.bucketFor(s.ScheduledTs).addCycle(s.ErrCount == 0)
}

// GlobalOutcomeCounts returns the global per-outcome-kind counts.
func (c *Collector) GlobalOutcomeCounts() map[model.Outcome]uint64 { return c.global.Counts.Snapshot() }

// GlobalServiceTime returns the global service-time (end-start) histogram.
func (c *Collector) GlobalServiceTime() *SafeHistogram { return c.global.ServiceTime }

// GlobalResponseTime returns the global response-time (end-scheduled) histogram.
func (c *Collector) GlobalResponseTime() *SafeHistogram { return c.global.ResponseTime }

// GlobalBytes returns total response bytes recorded across all methods.
func (c *Collector) GlobalBytes() uint64 { return c.global.Bytes() }

// MethodNames returns method names in first-seen order.
func (c *Collector) MethodNames() []string {
	c.methodsMu.Lock()
	defer c.methodsMu.Unlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Method returns the MethodStats for name, or nil if never observed.
func (c *Collector) Method(name string) *MethodStats {
	c.methodsMu.Lock()
	defer c.methodsMu.Unlock()
	return c.methods[name]
}

// Buckets returns every observed bucket's snapshot in chronological order.
// Once a run's sample stream has fully drained every bucket is final; Live
// also calls it mid-run and uses IsBucketFinalized to skip buckets that may
// still change.
func (c *Collector) Buckets() []BucketSnapshot {
	c.bucketsMu.Lock()
	idxs := make([]int64, len(c.bucketIdx))
	copy(idxs, c.bucketIdx)
	c.bucketsMu.Unlock()

	sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })

	out := make([]BucketSnapshot, 0, len(idxs))
	for _, idx := range idxs {
		c.bucketsMu.Lock()
		b := c.buckets[idx]
		c.bucketsMu.Unlock()
		out = append(out, b.snapshot())
	}
	return out
}

// IsBucketFinalized reports whether bucket end+2×(global p99 service time)
// has passed as of now. Live viewers should not treat a bucket's counts as
// settled until this returns true, since calls scheduled near the bucket
// boundary may still be in flight.
func (c *Collector) IsBucketFinalized(b BucketSnapshot, now time.Time) bool {
	grace := 2 * time.Duration(c.global.ServiceTime.ValueAtQuantile(99)) * time.Microsecond
	return !now.Before(b.End.Add(grace))
}

// LiveSnapshot is a cheap point-in-time read used by the headless progress
// line and the optional TUI/metrics exporter.
type LiveSnapshot struct {
	Total, Ok, Err uint64
	ThroughputRps  float64
	P50, P99       time.Duration
}

// Live returns a LiveSnapshot as of now, computing instantaneous throughput
// from the most recent finalized bucket.
func (c *Collector) Live(now time.Time) LiveSnapshot {
	counts := c.GlobalOutcomeCounts()
	var total, ok uint64
	for o, n := range counts {
		total += n
		if o == model.Ok {
			ok = n
		}
	}

	var throughput float64
	buckets := c.Buckets()
	for i := len(buckets) - 1; i >= 0; i-- {
		if c.IsBucketFinalized(buckets[i], now) {
			throughput = buckets[i].ThroughputRps
			break
		}
	}

	return LiveSnapshot{
		Total: total, Ok: ok, Err: total - ok,
		ThroughputRps: throughput,
		P50:           time.Duration(c.global.ServiceTime.ValueAtQuantile(50)) * time.Microsecond,
		P99:           time.Duration(c.global.ServiceTime.ValueAtQuantile(99)) * time.Microsecond,
	}
}

// ErrorRate returns the global fraction (0..1) of non-Ok outcomes.
func (c *Collector) ErrorRate() float64 {
	counts := c.GlobalOutcomeCounts()
	var total, ok uint64
	for o, n := range counts {
		total += n
		if o == model.Ok {
			ok = n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(total-ok) / float64(total)
}
