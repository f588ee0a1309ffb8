package operator

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/streamforge/streamforge/errors"
	"github.com/streamforge/streamforge/event"
	"github.com/streamforge/streamforge/metric"
	"github.com/streamforge/streamforge/queue"
)

// Instance binds one Operator to its input queue and its own EmitContext.
// It is the unit the scheduler hands out and the worker pool executes.
//
// The runtime guarantees at most one worker executes a given Instance's
// ExecuteBatch at a time (see claimed below); Operator implementations may
// therefore keep unsynchronized mutable state across calls.
type Instance struct {
	id    uuid.UUID
	name  string
	op    Operator
	input *queue.Queue[event.Event] // nil for a Source
	emit  *EmitContext

	counters *metric.Counters

	state State

	claimed atomic.Bool

	eventsProcessed atomic.Int64
	iterations      atomic.Int64
	errorCount      atomic.Int64

	stopped bool
}

// NewInstance constructs an Instance in state Created. input is nil for a
// Source, since sources have no upstream edge.
func NewInstance(name string, op Operator, input *queue.Queue[event.Event], emit *EmitContext) *Instance {
	return &Instance{id: uuid.New(), name: name, op: op, input: input, emit: emit, state: StateCreated}
}

// Name returns the instance's graph node name.
func (in *Instance) Name() string { return in.name }

// ID returns the instance's process-lifetime-unique identifier, for
// correlating log lines with a specific instance independent of its
// graph node name.
func (in *Instance) ID() uuid.UUID { return in.id }

// Operator returns the wrapped Operator.
func (in *Instance) Operator() Operator { return in.op }

// Emit returns the instance's EmitContext.
func (in *Instance) Emit() *EmitContext { return in.emit }

// Input returns the instance's input queue, or nil for a Source.
func (in *Instance) Input() *queue.Queue[event.Event] { return in.input }

// SetCounters attaches the runtime-wide metric.Counters this instance
// increments OperatorErrors on. Nil by default, in which case a failing
// Process call is still counted locally (see Health) but not reflected
// in the global counters.
func (in *Instance) SetCounters(c *metric.Counters) { in.counters = c }

// State returns the instance's current lifecycle state.
func (in *Instance) State() State { return in.state }

// setState enforces the lifecycle transition table; a violation is a
// runtime bug and is reported as a fatal ClassifiedError rather than
// silently accepted.
func (in *Instance) setState(to State) error {
	if !CanTransition(in.state, to) {
		return lifecycleErr("setState", in.state.String(), to.String())
	}
	in.state = to
	return nil
}

// Init runs the operator's Init hook and advances Created -> Initialized.
func (in *Instance) Init() error {
	if err := in.setState(StateInitialized); err != nil {
		return err
	}
	if err := in.op.Init(); err != nil {
		return errors.WrapFatal(err, "operator", in.name, "init")
	}
	return nil
}

// Start advances Initialized -> Running.
func (in *Instance) Start() error {
	return in.setState(StateRunning)
}

// Pause advances Running -> Paused. It only changes the recorded state:
// neither the scheduler nor the worker pool consults State, so a paused
// instance with queued input is still executed.
func (in *Instance) Pause() error {
	return in.setState(StatePaused)
}

// Resume advances Paused -> Running.
func (in *Instance) Resume() error {
	return in.setState(StateRunning)
}

// TryClaim attempts to acquire exclusive execution rights over this
// instance for one batch. It returns false if another worker already
// holds the claim, which is how the runtime enforces the per-instance
// single-worker invariant: several workers' Next calls may find the same
// instance ready, but only the one whose TryClaim succeeds is handed it.
func (in *Instance) TryClaim() bool {
	return in.claimed.CompareAndSwap(false, true)
}

// Release gives up the execution claim acquired by TryClaim.
func (in *Instance) Release() {
	in.claimed.Store(false)
}

// Ready reports whether this instance currently has work. Source
// instances are never scheduled through Ready/ExecuteBatch - the runtime
// drives them on a dedicated goroutine via GenerateOnce - so Ready simply
// reflects whether the input queue has anything waiting.
func (in *Instance) Ready() bool {
	return in.input != nil && !in.input.Empty()
}

// ExecuteBatch repeatedly try_pops from the input queue and feeds Process,
// stopping at either an empty queue, a tombstone, or maxBatch events. It
// returns the number of events processed and whether the queue reached
// end-of-stream during this call. It must not be called on a Source
// instance; see GenerateOnce.
func (in *Instance) ExecuteBatch(maxBatch int) (processed int, eof bool) {
	in.iterations.Add(1)

	for i := 0; i < maxBatch; i++ {
		item, ok := in.input.TryPop()
		if !ok {
			eof = in.input.IsClosed() && in.input.Empty()
			break
		}
		if item.IsTombstone {
			eof = true
			break
		}
		if err := in.op.Process(item.Value, in.emit); err != nil {
			in.errorCount.Add(1)
			if in.counters != nil {
				in.counters.OperatorErrors.Add(1)
			}
		}
		in.eventsProcessed.Add(1)
		processed++
	}
	return processed, eof
}

// GenerateOnce calls the wrapped Source's Generate exactly once and
// reports whether the source may be called again. It is what the
// runtime's dedicated per-source goroutine calls in a loop, never the
// worker pool; calling it on a non-Source instance panics.
func (in *Instance) GenerateOnce() (more bool) {
	src, ok := in.op.(Source)
	if !ok {
		panic("operator: GenerateOnce called on a non-Source instance " + in.name)
	}
	in.iterations.Add(1)
	more = src.Generate(in.emit)
	in.eventsProcessed.Add(1)
	return more
}

// StopRequested reports whether the wrapped Source has asked to stop. It
// panics if called on a non-Source instance.
func (in *Instance) StopRequested() bool {
	src, ok := in.op.(Source)
	if !ok {
		panic("operator: StopRequested called on a non-Source instance " + in.name)
	}
	return src.StopRequested()
}

// RequestStop asks the wrapped Source to stop; it panics if called on a
// non-Source instance.
func (in *Instance) RequestStop() {
	src, ok := in.op.(Source)
	if !ok {
		panic("operator: RequestStop called on a non-Source instance " + in.name)
	}
	src.RequestStop()
}

// IsSource reports whether the wrapped Operator is a Source.
func (in *Instance) IsSource() bool {
	_, ok := in.op.(Source)
	return ok
}

// Shutdown runs the operator's Shutdown hook, advances to Stopped, and
// closes every downstream edge so consumers see end-of-stream.
func (in *Instance) Shutdown() error {
	if in.stopped {
		return nil
	}
	if err := in.setState(StateShuttingDown); err != nil {
		return err
	}
	err := in.op.Shutdown()
	in.emit.CloseOutputs()
	in.stopped = true
	if serr := in.setState(StateStopped); serr != nil && err == nil {
		err = serr
	}
	if err != nil {
		return errors.WrapFatal(err, "operator", in.name, "shutdown")
	}
	return nil
}

// Health returns a snapshot of this instance's condition.
func (in *Instance) Health() Health {
	errCount := in.errorCount.Load()
	return Health{
		State:      in.state,
		ErrorCount: errCount,
		Healthy:    errCount == 0,
	}
}

// Stats is a snapshot of an instance's processing counters.
type Stats struct {
	EventsProcessed int64
	Iterations      int64
	ErrorCount      int64
}

// Stats returns a snapshot of this instance's processing counters.
func (in *Instance) Stats() Stats {
	return Stats{
		EventsProcessed: in.eventsProcessed.Load(),
		Iterations:      in.iterations.Load(),
		ErrorCount:      in.errorCount.Load(),
	}
}
