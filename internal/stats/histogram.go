package stats

import (
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// SafeHistogram is a thread-safe wrapper around hdrhistogram.Histogram:
// 1us to 10min range, 3 significant figures. HdrHistogram is preferred
// here over a sampling reservoir because it is mergeable and reproducible
// across time buckets.
type SafeHistogram struct {
	hist *hdrhistogram.Histogram
	mu   sync.Mutex
}

const (
	histMinUs   = 1
	histMaxUs   = int64(10 * 60 * 1_000_000) // 10 minutes, in microseconds
	histSigFigs = 3
)

func NewSafeHistogram() *SafeHistogram {
	return &SafeHistogram{hist: hdrhistogram.New(histMinUs, histMaxUs, histSigFigs)}
}

// RecordMicros records a latency value given in microseconds, clamping to
// the histogram's configured range rather than dropping out-of-range
// samples (a sample is never silently lost here).
func (h *SafeHistogram) RecordMicros(us int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if us < histMinUs {
		us = histMinUs
	}
	if us > histMaxUs {
		us = histMaxUs
	}
	_ = h.hist.RecordValue(us)
}

func (h *SafeHistogram) ValueAtQuantile(q float64) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.ValueAtQuantile(q)
}

func (h *SafeHistogram) Min() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.Min()
}

func (h *SafeHistogram) Max() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.Max()
}

func (h *SafeHistogram) Mean() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.Mean()
}

func (h *SafeHistogram) TotalCount() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.TotalCount()
}

// RequiredQuantiles are the non-min/max quantiles reported for every
// latency distribution.
var RequiredQuantiles = []float64{25, 50, 75, 90, 95, 99, 99.9, 99.99}

// QuantileLabels names min, every RequiredQuantiles entry, and max, in
// report order.
var QuantileLabels = []string{"min", "p25", "p50", "p75", "p90", "p95", "p99", "p99.9", "p99.99", "max"}

func quantileLabel(q float64) string {
	switch q {
	case 25:
		return "p25"
	case 50:
		return "p50"
	case 75:
		return "p75"
	case 90:
		return "p90"
	case 95:
		return "p95"
	case 99:
		return "p99"
	case 99.9:
		return "p99.9"
	case 99.99:
		return "p99.99"
	default:
		return "p?"
	}
}

// Snapshot returns {label -> microseconds} for min, every RequiredQuantiles
// entry, and max.
func (h *SafeHistogram) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(QuantileLabels))
	out["min"] = h.Min()
	for _, q := range RequiredQuantiles {
		out[quantileLabel(q)] = h.ValueAtQuantile(q)
	}
	out["max"] = h.Max()
	return out
}
