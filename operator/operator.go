// Package operator defines the unit of work a streamforge graph schedules:
// the Operator contract, its lifecycle state machine, the EmitContext an
// operator uses to publish downstream, and the function-style constructors
// that let a caller build one from a plain closure instead of a type.
package operator

import (
	"github.com/streamforge/streamforge/errors"
	"github.com/streamforge/streamforge/event"
)

// State is a point in an operator's lifecycle. Transitions are strictly
// ordered; Runtime enforces them and never calls a hook out of sequence.
type State int

const (
	StateCreated State = iota
	StateInitialized
	StateRunning
	StatePaused
	StateShuttingDown
	StateStopped
)

// String returns a human-readable name for the State.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateInitialized:
		return "Initialized"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// validTransitions enumerates the only State pairs Runtime will move an
// operator through.
var validTransitions = map[State][]State{
	StateCreated:      {StateInitialized},
	StateInitialized:  {StateRunning},
	StateRunning:      {StatePaused, StateShuttingDown},
	StatePaused:       {StateRunning, StateShuttingDown},
	StateShuttingDown: {StateStopped},
}

// CanTransition reports whether moving from `from` to `to` is legal.
func CanTransition(from, to State) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Operator is the contract every processing stage in a graph implements.
// Init is called exactly once before the first Process/OnTimer call.
// Process handles one input event; OnTimer fires on the operator's own
// schedule (a no-op default is fine for operators with no periodic work).
// Shutdown is called exactly once, after the operator will receive no
// further Process or OnTimer calls, and must release any resources Init
// acquired.
type Operator interface {
	Name() string
	Init() error
	Process(evt event.Event, emit *EmitContext) error
	OnTimer(emit *EmitContext) error
	Shutdown() error
}

// Source is an Operator with no upstream input. The runtime drives it on
// its own dedicated goroutine rather than through the scheduler: Generate
// is called repeatedly, producing at most one event per call via emit,
// until it returns false to signal natural end-of-stream. RequestStop is
// the runtime's side of a second, independent signal: it asks the source
// to stop early, and a well-behaved Generate implementation checks
// StopRequested itself and returns false soon after it is set. The two
// signals are deliberately separate - a finite source ends on its own via
// Generate's return value without ever needing RequestStop, while an
// unbounded source only stops because the runtime called RequestStop.
type Source interface {
	Operator
	Generate(emit *EmitContext) bool
	RequestStop()
	StopRequested() bool
}

// Sink is an Operator with no downstream output. Consume replaces Process
// for sinks that never emit; the runtime still calls Process on the
// interface it was constructed with, but Sink operators built via
// FromConsumeFunc route straight to Consume without an EmitContext.
type Sink interface {
	Operator
	Consume(evt event.Event) error
}

// Health is a snapshot of an operator's runtime condition, restored from
// the reference platform's component health-check surface even though the
// distilled contract only tracks raw counters. It costs nothing beyond
// data the runtime already keeps per instance.
type Health struct {
	State      State
	ErrorCount int64
	Healthy    bool
}

// NoopTimer is embeddable by operators with no periodic work; it satisfies
// the OnTimer method of Operator with a no-op.
type NoopTimer struct{}

// OnTimer implements Operator.
func (NoopTimer) OnTimer(*EmitContext) error { return nil }

// lifecycleErr classifies a lifecycle-transition violation as fatal, matching
// this runtime's error taxonomy: a scheduler or runtime bug that calls a
// hook out of order should stop the process, not retry.
func lifecycleErr(op, from, to string) error {
	return errors.WrapFatal(errors.ErrInvalidTransition, "operator", op, from+"->"+to)
}
