// Package model holds the data types shared across the benchmark engine:
// cycle policies, call templates, concrete calls, outcomes and samples.
package model

import (
	"encoding/json"
	"time"
)

// Policy controls how a workload yields its per-cycle call sequence.
type Policy string

const (
	PolicySerial  Policy = "serial"
	PolicyShuffle Policy = "shuffle"
	PolicyChoose  Policy = "choose"
)

// CallTemplate is a method name plus an ordered list of parameter tokens,
// at most one of which may be a range expression.
type CallTemplate struct {
	Method string
	Params []string
}

// ConcreteCall is a method plus a fully bound JSON-RPC parameter list.
type ConcreteCall struct {
	Method string
	Params []json.RawMessage
}

// Outcome classifies the result of a single dispatched call.
type Outcome string

const (
	Ok          Outcome = "Ok"
	ErrHttp     Outcome = "ErrHttp"
	ErrTimeout  Outcome = "ErrTimeout"
	ErrDecode   Outcome = "ErrDecode"
	ErrRpc      Outcome = "ErrRpc"
	ErrOverload Outcome = "ErrOverload"
)

// CallSample is the timing/outcome record for one concrete call within a cycle.
type CallSample struct {
	CycleID       uint64
	CallIndex     int
	Method        string
	Endpoint      string
	ScheduledTs   time.Time
	StartTs       time.Time
	EndTs         time.Time
	Outcome       Outcome
	ResponseBytes int64
}

// ServiceTime is end_ts - start_ts: pure call/processing time.
func (s CallSample) ServiceTime() time.Duration { return s.EndTs.Sub(s.StartTs) }

// ResponseTime is end_ts - scheduled_ts: includes coordinated-omission queueing delay.
func (s CallSample) ResponseTime() time.Duration { return s.EndTs.Sub(s.ScheduledTs) }

// QueueDelay is start_ts - scheduled_ts.
func (s CallSample) QueueDelay() time.Duration { return s.StartTs.Sub(s.ScheduledTs) }

// CycleSample is the atomic-cycle-level timing record.
type CycleSample struct {
	CycleID     uint64
	ScheduledTs time.Time
	StartTs     time.Time
	EndTs       time.Time
	OkCount     int
	ErrCount    int
}

func (c CycleSample) Duration() time.Duration { return c.EndTs.Sub(c.StartTs) }
