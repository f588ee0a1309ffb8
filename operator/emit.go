package operator

import (
	"github.com/streamforge/streamforge/event"
	"github.com/streamforge/streamforge/metric"
	"github.com/streamforge/streamforge/queue"
)

// output pairs a downstream queue with the name of the edge it terminates,
// for diagnostics.
type output struct {
	name  string
	queue *queue.Queue[event.Event]
}

// EmitContext is how an operator publishes to its downstream edges. An
// operator never sees the queues directly; Emit and TryEmit are the only
// way data crosses an edge, which keeps backpressure propagation entirely
// inside this type instead of scattered across every operator
// implementation.
type EmitContext struct {
	operatorName string
	instanceID   int
	outputs      []output
	counters     *metric.Counters

	emitted    int64
	tryEmitted int64
	tryDropped int64
}

// NewEmitContext constructs an EmitContext for an operator instance. The
// runtime builds one per OperatorInstance at graph materialization time;
// operator implementations never construct their own.
func NewEmitContext(operatorName string, instanceID int) *EmitContext {
	return &EmitContext{operatorName: operatorName, instanceID: instanceID}
}

// AddOutput registers a downstream queue under name. Order matters: Emit
// and TryEmit iterate outputs in registration order, and fan-out cloning
// hands the last output the original event instead of a copy.
func (ec *EmitContext) AddOutput(name string, q *queue.Queue[event.Event]) {
	ec.outputs = append(ec.outputs, output{name: name, queue: q})
}

// OutputCount reports how many downstream edges this context can emit to.
func (ec *EmitContext) OutputCount() int { return len(ec.outputs) }

// SetCounters attaches the runtime-wide metric.Counters this context
// increments on Emit/TryEmit/Drop. It is nil by default, in which case
// those calls skip counter bookkeeping entirely; Runtime.Init only calls
// it when RuntimeConfig.EnableMetrics is set, so a caller that wants no
// counter overhead on the hot path can simply not ask for it.
func (ec *EmitContext) SetCounters(c *metric.Counters) { ec.counters = c }

// Emit blocks, per output, until the event is accepted or that output's
// queue is closed. It returns the number of outputs that accepted the
// event. All outputs but the last receive a cloned copy of evt; the last
// receives evt itself. A queue only ever refuses a blocking Push because
// it has been closed, so every refusal here is counted as a drop rather
// than backpressure.
func (ec *EmitContext) Emit(evt event.Event) int {
	accepted := 0
	dropped := 0
	last := len(ec.outputs) - 1
	for i, out := range ec.outputs {
		e := evt
		if i != last {
			e = evt.Clone()
		}
		if out.queue.Push(e) {
			accepted++
		} else {
			dropped++
		}
	}
	ec.emitted += int64(accepted)
	if ec.counters != nil {
		ec.counters.EventsEmitted.Add(int64(accepted))
		if dropped > 0 {
			ec.counters.EventsDropped.Add(int64(dropped))
		}
	}
	return accepted
}

// TryEmit offers the event to every output without blocking. It returns
// the number of outputs that accepted the event; outputs whose queue is
// currently full or closed simply don't receive it. A refusal against a
// closed queue is a drop; a refusal against an open, full queue is
// backpressure. A call that accepts none of its outputs increments
// BackpressureEvents once, matching the "zero return value" backpressure
// signal callers see from try_emit.
func (ec *EmitContext) TryEmit(evt event.Event) int {
	accepted := 0
	closedDrops := 0
	last := len(ec.outputs) - 1
	for i, out := range ec.outputs {
		e := evt
		if i != last {
			e = evt.Clone()
		}
		if out.queue.TryPush(e) {
			accepted++
		} else {
			ec.tryDropped++
			if out.queue.IsClosed() {
				closedDrops++
			}
		}
	}
	ec.tryEmitted += int64(accepted)
	if ec.counters != nil {
		if accepted == 0 && len(ec.outputs) > 0 {
			ec.counters.BackpressureEvents.Add(1)
		}
		if closedDrops > 0 {
			ec.counters.EventsDropped.Add(int64(closedDrops))
		}
	}
	return accepted
}

// Drop records that this operator explicitly discarded evt rather than
// emitting it, e.g. a filter's predicate returning false. It is the only
// way the events_dropped counter sees a filter decision, since a dropped
// event never reaches Emit or TryEmit at all.
func (ec *EmitContext) Drop() {
	if ec.counters != nil {
		ec.counters.EventsDropped.Add(1)
	}
}

// CloseOutputs closes every downstream queue. Called once by the runtime
// after an operator's Shutdown returns, propagating end-of-stream to
// whatever is downstream of it.
func (ec *EmitContext) CloseOutputs() {
	for _, out := range ec.outputs {
		out.queue.Close()
	}
}

// EmitStats is a snapshot of an EmitContext's counters.
type EmitStats struct {
	Emitted    int64
	TryEmitted int64
	TryDropped int64
}

// Stats returns a snapshot of this context's emit counters.
func (ec *EmitContext) Stats() EmitStats {
	return EmitStats{Emitted: ec.emitted, TryEmitted: ec.tryEmitted, TryDropped: ec.tryDropped}
}
