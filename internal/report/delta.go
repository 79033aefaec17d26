package report

// Delta is a percentage-change comparison against a baseline report:
// positive means worse for latency and error rate, better for throughput.
type Delta struct {
	ThroughputRpsPct float64            `json:"throughput_rps_pct"`
	ErrorRatePct     float64            `json:"error_rate_pct"`
	ServiceTimePct   map[string]float64 `json:"service_time_pct"`
	ResponseTimePct  map[string]float64 `json:"response_time_pct"`
}

// pctChange returns the plain percentage change from baseline to current
// (positive when current is larger). A zero baseline yields 0 when current is
// also zero, otherwise 100.
func pctChange(baseline, current float64) float64 {
	if baseline == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - baseline) / baseline * 100
}

func errorRate(a Aggregate) float64 {
	if a.Count == 0 {
		return 0
	}
	return float64(a.Count-a.Ok) / float64(a.Count) * 100
}

// CompareTo computes r's delta against baseline: for throughput, an
// increase is reported as a positive (better) percentage;
// for latency and error-rate, an increase is reported as positive (worse).
// Worse-is-positive falls out naturally from the plain arithmetic percentage
// change for latency/error-rate, and best-is-positive falls out the same way
// for throughput, so no additional sign flip is needed.
func (r Report) CompareTo(baseline Report) Delta {
	d := Delta{
		ThroughputRpsPct: pctChange(baseline.Aggregate.ThroughputRps, r.Aggregate.ThroughputRps),
		ErrorRatePct:     pctChange(errorRate(baseline.Aggregate), errorRate(r.Aggregate)),
		ServiceTimePct:   make(map[string]float64, len(r.Aggregate.ServiceTimeUs)),
		ResponseTimePct:  make(map[string]float64, len(r.Aggregate.ResponseTimeUs)),
	}
	for label, v := range r.Aggregate.ServiceTimeUs {
		if bv, ok := baseline.Aggregate.ServiceTimeUs[label]; ok {
			d.ServiceTimePct[label] = pctChange(float64(bv), float64(v))
		}
	}
	for label, v := range r.Aggregate.ResponseTimeUs {
		if bv, ok := baseline.Aggregate.ResponseTimeUs[label]; ok {
			d.ResponseTimePct[label] = pctChange(float64(bv), float64(v))
		}
	}
	return d
}

// WithBaselineDelta returns a copy of r with BaselineDelta populated from
// comparison against baseline.
func (r Report) WithBaselineDelta(baseline Report) Report {
	d := r.CompareTo(baseline)
	r.BaselineDelta = &d
	return r
}
