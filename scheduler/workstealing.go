package scheduler

import (
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/streamforge/streamforge/operator"
)

// WorkStealing partitions instances across workers at construction (round-
// robin by index) so each worker has a home partition to check first, then
// falls back to stealing from a random victim partition on a local miss.
// This trades RoundRobin's perfectly even scan order for better cache
// locality when a worker's own partition usually has work, at the cost of
// an occasional steal across partitions when it doesn't.
type WorkStealing struct {
	partitions [][]*operator.Instance

	rngMu sync.Mutex
	rng   *rand.Rand

	assignments atomic.Int64
	misses      atomic.Int64
	steals      atomic.Int64
}

// NewWorkStealing builds a WorkStealing scheduler over instances for
// numWorkers workers.
func NewWorkStealing(instances []*operator.Instance, numWorkers int) *WorkStealing {
	if numWorkers < 1 {
		numWorkers = 1
	}
	partitions := make([][]*operator.Instance, numWorkers)
	for i, inst := range instances {
		p := i % numWorkers
		partitions[p] = append(partitions[p], inst)
	}
	return &WorkStealing{
		partitions: partitions,
		rng:        rand.New(rand.NewSource(1)),
	}
}

// Next implements Scheduler: check the calling worker's own partition
// first, then try up to len(partitions) random victims.
func (w *WorkStealing) Next(workerID int) *operator.Instance {
	if workerID < 0 || workerID >= len(w.partitions) {
		workerID = 0
	}

	if inst := w.scan(w.partitions[workerID]); inst != nil {
		w.assignments.Add(1)
		return inst
	}

	for attempt := 0; attempt < len(w.partitions); attempt++ {
		victim := w.randomPartition(workerID)
		if inst := w.scan(w.partitions[victim]); inst != nil {
			w.assignments.Add(1)
			w.steals.Add(1)
			return inst
		}
	}

	w.misses.Add(1)
	return nil
}

func (w *WorkStealing) scan(partition []*operator.Instance) *operator.Instance {
	for _, inst := range partition {
		if inst.Ready() && inst.TryClaim() {
			return inst
		}
	}
	return nil
}

func (w *WorkStealing) randomPartition(exclude int) int {
	n := len(w.partitions)
	if n == 1 {
		return 0
	}
	w.rngMu.Lock()
	defer w.rngMu.Unlock()
	victim := w.rng.Intn(n)
	if victim == exclude {
		victim = (victim + 1) % n
	}
	return victim
}

// NotifyWorkAvailable implements Scheduler; WorkStealing polls, so this is
// a no-op.
func (w *WorkStealing) NotifyWorkAvailable() {}

// Stats implements Scheduler.
func (w *WorkStealing) Stats() Stats {
	return Stats{
		Assignments: w.assignments.Load(),
		Misses:      w.misses.Load(),
		Steals:      w.steals.Load(),
	}
}
