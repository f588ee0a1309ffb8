package scheduler

import (
	"sync/atomic"

	"github.com/streamforge/streamforge/operator"
)

// RoundRobin hands each worker the next ready instance after the one it
// was last given, wrapping around the shared instance list. Every worker
// shares the same instance slice; only each worker's cursor is private,
// so this holds no lock on the hot path beyond the atomics on Instance's
// own claim.
type RoundRobin struct {
	instances []*operator.Instance
	cursors   []int64 // one per worker, indexes into instances

	assignments atomic.Int64
	misses      atomic.Int64
}

// NewRoundRobin builds a RoundRobin scheduler over instances for
// numWorkers workers.
func NewRoundRobin(instances []*operator.Instance, numWorkers int) *RoundRobin {
	return &RoundRobin{
		instances: instances,
		cursors:   make([]int64, numWorkers),
	}
}

// Next implements Scheduler. It scans once around the instance list
// starting from the worker's cursor, claiming the first ready, unclaimed
// instance it finds.
func (r *RoundRobin) Next(workerID int) *operator.Instance {
	n := len(r.instances)
	if n == 0 {
		return nil
	}
	start := int(r.cursors[workerID]) % n

	for i := 0; i < n; i++ {
		idx := (start + i) % n
		inst := r.instances[idx]
		if inst.Ready() && inst.TryClaim() {
			r.cursors[workerID] = int64(idx + 1)
			r.assignments.Add(1)
			return inst
		}
	}
	r.misses.Add(1)
	return nil
}

// NotifyWorkAvailable implements Scheduler; RoundRobin polls, so this is a
// no-op.
func (r *RoundRobin) NotifyWorkAvailable() {}

// Stats implements Scheduler.
func (r *RoundRobin) Stats() Stats {
	return Stats{Assignments: r.assignments.Load(), Misses: r.misses.Load()}
}
