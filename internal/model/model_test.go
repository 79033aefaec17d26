package model

import (
	"testing"
	"time"
)

func TestCallSampleDerivedDurations(t *testing.T) {
	scheduled := time.Now()
	start := scheduled.Add(5 * time.Millisecond)
	end := start.Add(20 * time.Millisecond)

	s := CallSample{ScheduledTs: scheduled, StartTs: start, EndTs: end}

	if got := s.ServiceTime(); got != 20*time.Millisecond {
		t.Errorf("ServiceTime() = %v, want 20ms", got)
	}
	if got := s.ResponseTime(); got != 25*time.Millisecond {
		t.Errorf("ResponseTime() = %v, want 25ms", got)
	}
	if got := s.QueueDelay(); got != 5*time.Millisecond {
		t.Errorf("QueueDelay() = %v, want 5ms", got)
	}
}

func TestCycleSampleDuration(t *testing.T) {
	start := time.Now()
	c := CycleSample{StartTs: start, EndTs: start.Add(30 * time.Millisecond)}
	if got := c.Duration(); got != 30*time.Millisecond {
		t.Errorf("Duration() = %v, want 30ms", got)
	}
}
