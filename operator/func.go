package operator

import (
	"sync/atomic"

	"github.com/streamforge/streamforge/event"
)

// The three function-style constructors below let a caller build an
// Operator from a plain closure instead of a named type, for the common
// case where an operator has no state beyond what the closure captures.
// Each is grounded on a different processor shape observed in the
// reference platform: a raw emit-and-continue processor, a filter/map
// that emits zero or one event, and a pure value transform.

// emitFuncOperator wraps a func(event.Event, *EmitContext) as an Operator.
// The function decides for itself whether, and how many times, to call
// emit.Emit or emit.TryEmit.
type emitFuncOperator struct {
	name string
	fn   func(evt event.Event, emit *EmitContext)
	NoopTimer
}

// FromEmitFunc builds an Operator whose Process hands the input event and
// the EmitContext directly to fn. This is the most general of the three
// shapes: fn can emit zero, one, or many events, and can inspect the
// EmitContext's output count to decide fan-out behavior.
func FromEmitFunc(name string, fn func(evt event.Event, emit *EmitContext)) Operator {
	return &emitFuncOperator{name: name, fn: fn}
}

func (o *emitFuncOperator) Name() string { return o.name }
func (o *emitFuncOperator) Init() error  { return nil }
func (o *emitFuncOperator) Process(evt event.Event, emit *EmitContext) error {
	o.fn(evt, emit)
	return nil
}
func (o *emitFuncOperator) Shutdown() error { return nil }

// mapFuncOperator wraps a func(event.Event) (event.Event, bool) as an
// Operator, calling Emit only when the function reports true. Returning
// false lets fn act as a filter without a separate operator shape.
type mapFuncOperator struct {
	name string
	fn   func(evt event.Event) (event.Event, bool)
	NoopTimer
}

// FromMapFunc builds an Operator that emits the transformed event when fn
// returns true, or drops the input event when fn returns false. This is
// the shape a stateless map or filter should use.
func FromMapFunc(name string, fn func(evt event.Event) (event.Event, bool)) Operator {
	return &mapFuncOperator{name: name, fn: fn}
}

func (o *mapFuncOperator) Name() string { return o.name }
func (o *mapFuncOperator) Init() error  { return nil }
func (o *mapFuncOperator) Process(evt event.Event, emit *EmitContext) error {
	if out, keep := o.fn(evt); keep {
		emit.Emit(out)
	} else {
		emit.Drop()
	}
	return nil
}
func (o *mapFuncOperator) Shutdown() error { return nil }

// payloadFuncOperator wraps a func(event.Event) event.Payload as an
// Operator, always emitting exactly one output event carrying the
// returned payload and the input event's metadata.
type payloadFuncOperator struct {
	name string
	fn   func(evt event.Event) event.Payload
	NoopTimer
}

// FromPayloadFunc builds an Operator for the common case of a pure,
// always-emits transform: fn computes a new payload from the input event
// and the runtime handles preserving metadata and emitting.
func FromPayloadFunc(name string, fn func(evt event.Event) event.Payload) Operator {
	return &payloadFuncOperator{name: name, fn: fn}
}

func (o *payloadFuncOperator) Name() string { return o.name }
func (o *payloadFuncOperator) Init() error  { return nil }
func (o *payloadFuncOperator) Process(evt event.Event, emit *EmitContext) error {
	emit.Emit(evt.WithPayload(o.fn(evt)))
	return nil
}
func (o *payloadFuncOperator) Shutdown() error { return nil }

// consumeFuncOperator wraps a func(event.Event) error as a Sink.
type consumeFuncOperator struct {
	name string
	fn   func(evt event.Event) error
	NoopTimer
}

// FromConsumeFunc builds a Sink whose Consume delegates to fn. The runtime
// drives a sink through Instance.ExecuteBatch, which calls Process; here
// Process delegates to the same fn and ignores its EmitContext.
func FromConsumeFunc(name string, fn func(evt event.Event) error) Sink {
	return &consumeFuncOperator{name: name, fn: fn}
}

func (o *consumeFuncOperator) Name() string { return o.name }
func (o *consumeFuncOperator) Init() error  { return nil }
func (o *consumeFuncOperator) Process(evt event.Event, emit *EmitContext) error {
	return o.fn(evt)
}
func (o *consumeFuncOperator) Consume(evt event.Event) error { return o.fn(evt) }
func (o *consumeFuncOperator) Shutdown() error               { return nil }

// generateFuncOperator wraps a func(*EmitContext) bool as a Source. It
// carries its own stop_requested flag, set by RequestStop and checked by
// the caller-supplied fn; the runtime also consults it directly between
// Generate calls.
type generateFuncOperator struct {
	name string
	fn   func(emit *EmitContext) bool
	stop atomic.Bool
	NoopTimer
}

// FromGenerateFunc builds a Source whose Generate delegates to fn. fn
// should return false once it has nothing left to emit, and should check
// stopRequested (passed by the runtime via the Source's own
// StopRequested, exposed here as a closure argument) if it runs
// indefinitely. This is the shape for a source with no state beyond what
// fn closes over.
func FromGenerateFunc(name string, fn func(emit *EmitContext, stopRequested func() bool) bool) Source {
	o := &generateFuncOperator{name: name}
	o.fn = func(emit *EmitContext) bool { return fn(emit, o.StopRequested) }
	return o
}

func (o *generateFuncOperator) Name() string                            { return o.name }
func (o *generateFuncOperator) Init() error                             { return nil }
func (o *generateFuncOperator) Process(event.Event, *EmitContext) error { return nil }
func (o *generateFuncOperator) Generate(emit *EmitContext) bool         { return o.fn(emit) }
func (o *generateFuncOperator) RequestStop()                            { o.stop.Store(true) }
func (o *generateFuncOperator) StopRequested() bool                     { return o.stop.Load() }
func (o *generateFuncOperator) Shutdown() error                         { return nil }
