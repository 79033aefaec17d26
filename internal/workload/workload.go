// Package workload holds the ordered list of concrete calls that make up one
// benchmark cycle, plus the cycle-ordering policy (Serial, Shuffle, Choose).
// A Workload is immutable once constructed, so every cycle's call order is a
// pure, seed-deterministic function of its cycle id.
package workload

import (
	"fmt"
	"math/rand"

	"flood/internal/model"
)

// Workload is immutable once constructed.
type Workload struct {
	calls  []model.ConcreteCall
	policy model.Policy
}

// New validates and constructs a Workload. The call list must be non-empty.
func New(calls []model.ConcreteCall, policy model.Policy) (*Workload, error) {
	if len(calls) == 0 {
		return nil, fmt.Errorf("workload: call list must be non-empty")
	}
	switch policy {
	case model.PolicySerial, model.PolicyShuffle, model.PolicyChoose:
	default:
		return nil, fmt.Errorf("workload: unknown policy %q", policy)
	}
	cp := make([]model.ConcreteCall, len(calls))
	copy(cp, calls)
	return &Workload{calls: cp, policy: policy}, nil
}

// Len returns the number of concrete calls in the stored list.
func (w *Workload) Len() int { return len(w.calls) }

// Policy returns the workload's fixed cycle-ordering policy.
func (w *Workload) Policy() model.Policy { return w.policy }

// Calls returns the immutable stored call list, in input order.
func (w *Workload) Calls() []model.ConcreteCall { return w.calls }

// CycleCalls returns the sequence of calls to dispatch for cycle i, given the
// run seed. It is a pure function of (policy, i, seed): identical inputs
// always produce a bit-identical sequence, regardless of goroutine
// scheduling or prior calls, because the RNG is freshly seeded per call via
// mixSeed rather than threaded through shared state.
func (w *Workload) CycleCalls(cycle uint64, seed int64) []model.ConcreteCall {
	switch w.policy {
	case model.PolicySerial:
		out := make([]model.ConcreteCall, len(w.calls))
		copy(out, w.calls)
		return out

	case model.PolicyShuffle:
		rng := rand.New(rand.NewSource(mixSeed(seed, cycle)))
		perm := rng.Perm(len(w.calls))
		out := make([]model.ConcreteCall, len(w.calls))
		for i, idx := range perm {
			out[i] = w.calls[idx]
		}
		return out

	case model.PolicyChoose:
		rng := rand.New(rand.NewSource(mixSeed(seed, cycle)))
		idx := rng.Intn(len(w.calls))
		return []model.ConcreteCall{w.calls[idx]}

	default:
		// unreachable: validated in New
		return nil
	}
}
