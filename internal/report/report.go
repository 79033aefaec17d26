// Package report defines the versioned, immutable JSON artifact a run
// produces, assembled from internal/stats.Collector snapshots, plus
// baseline loading and percentage-change delta computation.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"flood/internal/model"
	"flood/internal/stats"
)

// SchemaVersion is the current report schema version.
const SchemaVersion = 1

// RunMeta describes the conditions a run executed under.
type RunMeta struct {
	Endpoints   []string  `json:"endpoints"`
	TargetRate  float64   `json:"target_rate"`
	Duration    string    `json:"duration"`
	CycleCount  uint64    `json:"cycle_count"`
	Seed        int64     `json:"seed"`
	StartedAt   time.Time `json:"started_at"`
	Aborted     bool      `json:"aborted"`
	AbortReason string    `json:"abort_reason,omitempty"`
}

// Aggregate is one {count, ok, errors_by_kind, latency, throughput_rps}
// statistics block, used both globally and per-method.
type Aggregate struct {
	Count         uint64           `json:"count"`
	Ok            uint64           `json:"ok"`
	ErrorsByKind  map[string]uint64 `json:"errors_by_kind"`
	ServiceTimeUs map[string]int64 `json:"service_time_us"`
	ResponseTimeUs map[string]int64 `json:"response_time_us"`
	ThroughputRps float64          `json:"throughput_rps"`
	Bytes         uint64           `json:"bytes"`
}

// BucketEntry is one row of the report's time_series.
type BucketEntry struct {
	BucketStart   time.Time        `json:"bucket_start"`
	BucketEnd     time.Time        `json:"bucket_end"`
	OkCycles      uint64           `json:"ok_cycles"`
	ErrCycles     uint64           `json:"err_cycles"`
	OkCalls       uint64           `json:"ok_calls"`
	ErrCalls      uint64           `json:"err_calls"`
	ServiceTimeUs map[string]int64 `json:"service_time_us"`
	ThroughputRps float64          `json:"throughput_rps"`
	SuccessRate   float64          `json:"success_rate"`
}

// Report is the full, immutable artifact for one run.
type Report struct {
	SchemaVersion int                    `json:"schema_version"`
	RunMeta       RunMeta                `json:"run_meta"`
	Aggregate     Aggregate              `json:"aggregate"`
	PerMethod     map[string]Aggregate   `json:"per_method"`
	TimeSeries    []BucketEntry          `json:"time_series"`
	BaselineDelta *Delta                 `json:"baseline_delta,omitempty"`
}

// outcomeKindNames renders model.Outcome keys as report-stable strings.
func outcomeKindNames(counts map[model.Outcome]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(counts))
	for k, v := range counts {
		if k == model.Ok {
			continue
		}
		out[string(k)] = v
	}
	return out
}

func aggregateFrom(counts map[model.Outcome]uint64, service, response *stats.SafeHistogram, bytes uint64, duration time.Duration) Aggregate {
	var total uint64
	for _, v := range counts {
		total += v
	}
	ok := counts[model.Ok]
	var throughput float64
	if duration > 0 {
		throughput = float64(total) / duration.Seconds()
	}
	return Aggregate{
		Count:          total,
		Ok:             ok,
		ErrorsByKind:   outcomeKindNames(counts),
		ServiceTimeUs:  service.Snapshot(),
		ResponseTimeUs: response.Snapshot(),
		ThroughputRps:  throughput,
		Bytes:          bytes,
	}
}

// Build assembles a Report from a run's RunMeta and its Collector's final
// state. duration is the wall-clock span over which throughput_rps is
// computed; runctl passes the run's measured elapsed time.
func Build(meta RunMeta, c *stats.Collector, duration time.Duration) Report {
	perMethod := make(map[string]Aggregate)
	for _, name := range c.MethodNames() {
		ms := c.Method(name)
		perMethod[name] = aggregateFrom(ms.Counts.Snapshot(), ms.ServiceTime, ms.ResponseTime, ms.Bytes(), duration)
	}

	series := make([]BucketEntry, 0)
	for _, b := range c.Buckets() {
		series = append(series, BucketEntry{
			BucketStart: b.Start, BucketEnd: b.End,
			OkCycles: b.OkCycles, ErrCycles: b.ErrCycles,
			OkCalls: b.OkCalls, ErrCalls: b.ErrCalls,
			ServiceTimeUs: b.Latency,
			ThroughputRps: b.ThroughputRps,
			SuccessRate:   b.SuccessRate,
		})
	}

	return Report{
		SchemaVersion: SchemaVersion,
		RunMeta:       meta,
		Aggregate:     aggregateFrom(c.GlobalOutcomeCounts(), c.GlobalServiceTime(), c.GlobalResponseTime(), c.GlobalBytes(), duration),
		PerMethod:     perMethod,
		TimeSeries:    series,
	}
}

// Write serializes r as indented JSON to path.
func Write(path string, r Report) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

// Load reads and parses a report JSON document, for use as a baseline or
// for `flood show`/`flood plot`.
func Load(path string) (Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("report: read %s: %w", path, err)
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return Report{}, fmt.Errorf("report: parse %s: %w", path, err)
	}
	return r, nil
}
