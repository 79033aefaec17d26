package report

import (
	"path/filepath"
	"testing"
	"time"

	"flood/internal/executor"
	"flood/internal/model"
	"flood/internal/stats"
)

func buildTestReport(t *testing.T) Report {
	t.Helper()
	start := time.Now()
	c := stats.NewCollector(start, time.Second)

	samples := executor.NewSamples(8)
	go func() {
		samples.Calls <- model.CallSample{Method: "ping", Outcome: model.Ok, ScheduledTs: start, StartTs: start, EndTs: start.Add(time.Millisecond)}
		samples.Calls <- model.CallSample{Method: "ping", Outcome: model.ErrTimeout, ScheduledTs: start, StartTs: start, EndTs: start.Add(2 * time.Millisecond)}
		close(samples.Calls)
		samples.Cycles <- model.CycleSample{ScheduledTs: start, StartTs: start, EndTs: start.Add(2 * time.Millisecond), OkCount: 1, ErrCount: 1}
		close(samples.Cycles)
	}()
	c.Run(samples)

	meta := RunMeta{Endpoints: []string{"http://example"}, TargetRate: 10, StartedAt: start}
	return Build(meta, c, time.Second)
}

func TestBuildPopulatesAggregate(t *testing.T) {
	r := buildTestReport(t)
	if r.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", r.SchemaVersion, SchemaVersion)
	}
	if r.Aggregate.Count != 2 || r.Aggregate.Ok != 1 {
		t.Errorf("Aggregate = %+v, want count 2, ok 1", r.Aggregate)
	}
	if _, ok := r.PerMethod["ping"]; !ok {
		t.Error("PerMethod missing \"ping\"")
	}
	if len(r.TimeSeries) == 0 {
		t.Error("TimeSeries is empty")
	}
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	r := buildTestReport(t)
	path := filepath.Join(t.TempDir(), "report.json")

	if err := Write(path, r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Aggregate.Count != r.Aggregate.Count {
		t.Errorf("loaded.Aggregate.Count = %d, want %d", loaded.Aggregate.Count, r.Aggregate.Count)
	}
	if loaded.RunMeta.TargetRate != r.RunMeta.TargetRate {
		t.Errorf("loaded.RunMeta.TargetRate = %v, want %v", loaded.RunMeta.TargetRate, r.RunMeta.TargetRate)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Load: want error for a missing file, got nil")
	}
}
