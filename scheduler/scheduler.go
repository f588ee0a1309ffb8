// Package scheduler assigns ready OperatorInstances to workers. A
// scheduler never runs an instance itself; it only answers "what should
// worker N do next", which the worker pool then executes.
package scheduler

import "github.com/streamforge/streamforge/operator"

// Policy names a scheduling strategy for RuntimeConfig. Priority and
// LoadAware are accepted for forward compatibility with a richer
// scheduler but currently resolve to RoundRobin (see New).
type Policy int

const (
	PolicyRoundRobin Policy = iota
	PolicyWorkStealing
	PolicyPriority
	PolicyLoadAware
)

// String returns a human-readable name for the Policy.
func (p Policy) String() string {
	switch p {
	case PolicyRoundRobin:
		return "RoundRobin"
	case PolicyWorkStealing:
		return "WorkStealing"
	case PolicyPriority:
		return "Priority"
	case PolicyLoadAware:
		return "LoadAware"
	default:
		return "Unknown"
	}
}

// Stats is a point-in-time snapshot of a scheduler's counters.
type Stats struct {
	Assignments int64
	Misses      int64
	Steals      int64
}

// Scheduler decides which ready OperatorInstance a worker should run next.
type Scheduler interface {
	// Next returns a ready instance for the calling worker, or nil if none
	// is currently ready. workerID identifies the calling worker and is
	// stable for the worker's lifetime.
	Next(workerID int) *operator.Instance

	// NotifyWorkAvailable is a hint that at least one instance transitioned
	// from not-ready to ready. Schedulers that poll need not act on it;
	// it exists so a future event-driven scheduler has somewhere to hook in.
	NotifyWorkAvailable()

	// Stats returns a snapshot of the scheduler's counters.
	Stats() Stats
}

// New builds a Scheduler for the given policy over instances, sized for
// numWorkers workers. Priority and LoadAware fall back to RoundRobin: this
// runtime has no per-event priority field and no load-sampling machinery
// to drive either policy, so accepting the config value without
// implementing a distinct strategy is preferable to rejecting a
// configuration a caller may have inherited from a different profile.
func New(policy Policy, instances []*operator.Instance, numWorkers int) Scheduler {
	switch policy {
	case PolicyWorkStealing:
		return NewWorkStealing(instances, numWorkers)
	default:
		return NewRoundRobin(instances, numWorkers)
	}
}
