package report

import "testing"

func TestPctChange(t *testing.T) {
	cases := []struct {
		baseline, current, want float64
	}{
		{100, 150, 50},
		{100, 50, -50},
		{0, 0, 0},
		{0, 10, 100},
	}
	for _, c := range cases {
		if got := pctChange(c.baseline, c.current); got != c.want {
			t.Errorf("pctChange(%v, %v) = %v, want %v", c.baseline, c.current, got, c.want)
		}
	}
}

func TestCompareToThroughputAndErrorRate(t *testing.T) {
	baseline := Report{Aggregate: Aggregate{Count: 100, Ok: 90, ThroughputRps: 50}}
	current := Report{Aggregate: Aggregate{Count: 100, Ok: 95, ThroughputRps: 100}}

	d := current.CompareTo(baseline)
	if d.ThroughputRpsPct != 100 {
		t.Errorf("ThroughputRpsPct = %v, want 100 (throughput doubled)", d.ThroughputRpsPct)
	}
	if d.ErrorRatePct >= 0 {
		t.Errorf("ErrorRatePct = %v, want negative (error rate improved from 10%% to 5%%)", d.ErrorRatePct)
	}
}

func TestWithBaselineDeltaSetsPointer(t *testing.T) {
	baseline := Report{Aggregate: Aggregate{Count: 10, Ok: 10, ThroughputRps: 10}}
	current := Report{Aggregate: Aggregate{Count: 10, Ok: 10, ThroughputRps: 20}}

	got := current.WithBaselineDelta(baseline)
	if got.BaselineDelta == nil {
		t.Fatal("BaselineDelta = nil, want populated")
	}
	if got.BaselineDelta.ThroughputRpsPct != 100 {
		t.Errorf("ThroughputRpsPct = %v, want 100", got.BaselineDelta.ThroughputRpsPct)
	}
}
