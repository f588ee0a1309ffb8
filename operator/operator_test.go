package operator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/streamforge/event"
	"github.com/streamforge/streamforge/metric"
	"github.com/streamforge/streamforge/queue"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to State
		want     bool
	}{
		{StateCreated, StateInitialized, true},
		{StateCreated, StateRunning, false},
		{StateRunning, StatePaused, true},
		{StatePaused, StateRunning, true},
		{StateRunning, StateShuttingDown, true},
		{StateShuttingDown, StateStopped, true},
		{StateStopped, StateRunning, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "CanTransition(%v, %v)", tc.from, tc.to)
	}
}

func TestFromMapFuncFiltersAndTransforms(t *testing.T) {
	doubleEvens := FromMapFunc("double-evens", func(evt event.Event) (event.Event, bool) {
		v, _ := evt.Payload().AsInt64()
		if v%2 != 0 {
			return evt, false
		}
		return evt.WithPayload(event.Int64(v * 2)), true
	})

	out := queue.New[event.Event](4)
	counters := metric.New()
	emit := NewEmitContext("double-evens", 0)
	emit.SetCounters(counters)
	emit.AddOutput("out", out)

	require.NoError(t, doubleEvens.Process(event.New(event.Int64(3)), emit))
	assert.True(t, out.Empty(), "odd input should have been filtered, but something was emitted")
	assert.Equal(t, int64(1), counters.Snapshot().EventsDropped, "filtering an event should count as a drop")

	require.NoError(t, doubleEvens.Process(event.New(event.Int64(4)), emit))
	item, ok := out.TryPop()
	require.True(t, ok, "even input should have been emitted")
	v, _ := item.Value.Payload().AsInt64()
	assert.Equal(t, int64(8), v)
	assert.Equal(t, int64(1), counters.Snapshot().EventsEmitted)
}

func TestEmitContextFanOutClonesAllButLast(t *testing.T) {
	q1 := queue.New[event.Event](2)
	q2 := queue.New[event.Event](2)
	emit := NewEmitContext("fanout", 0)
	emit.AddOutput("a", q1)
	emit.AddOutput("b", q2)

	accepted := emit.Emit(event.New(event.Bytes([]byte{1, 2, 3})))
	require.Equal(t, 2, accepted)

	item1, _ := q1.TryPop()
	item2, _ := q2.TryPop()
	b1, _ := item1.Value.Payload().AsBytes()
	b2, _ := item2.Value.Payload().AsBytes()

	b1[0] = 99
	assert.NotEqual(t, byte(99), b2[0], "mutating the first output's payload leaked into the second output")
}

func TestEmitOnClosedOutputCountsAsDropped(t *testing.T) {
	closedQueue := queue.New[event.Event](2)
	closedQueue.Close()

	counters := metric.New()
	emit := NewEmitContext("drop-on-close", 0)
	emit.SetCounters(counters)
	emit.AddOutput("closed", closedQueue)

	accepted := emit.Emit(event.New(event.Int64(1)))
	assert.Equal(t, 0, accepted)
	assert.Equal(t, int64(1), counters.Snapshot().EventsDropped)
	assert.Equal(t, int64(0), counters.Snapshot().EventsEmitted)
}

func TestTryEmitDoesNotBlockOnFullQueue(t *testing.T) {
	full := queue.New[event.Event](1)
	full.TryPush(event.New(event.Empty()))

	counters := metric.New()
	emit := NewEmitContext("op", 0)
	emit.SetCounters(counters)
	emit.AddOutput("full", full)

	accepted := emit.TryEmit(event.New(event.Int64(1)))
	assert.Equal(t, 0, accepted)
	assert.Equal(t, int64(1), emit.Stats().TryDropped)
	assert.Equal(t, int64(1), counters.Snapshot().BackpressureEvents, "accepting zero outputs should count as backpressure")
	assert.Equal(t, int64(0), counters.Snapshot().EventsDropped, "a full-but-open queue is backpressure, not a drop")
}

func TestTryEmitOnClosedOutputCountsAsDropped(t *testing.T) {
	closedQueue := queue.New[event.Event](2)
	closedQueue.Close()

	counters := metric.New()
	emit := NewEmitContext("try-drop-on-close", 0)
	emit.SetCounters(counters)
	emit.AddOutput("closed", closedQueue)

	accepted := emit.TryEmit(event.New(event.Int64(1)))
	assert.Equal(t, 0, accepted)
	assert.Equal(t, int64(1), counters.Snapshot().EventsDropped)
}

type recordingOperator struct {
	NoopTimer
	name       string
	initCalled bool
	shutCalled bool
	failNext   bool
}

func (r *recordingOperator) Name() string { return r.name }
func (r *recordingOperator) Init() error  { r.initCalled = true; return nil }
func (r *recordingOperator) Process(event.Event, *EmitContext) error {
	if r.failNext {
		return errRecordingOperatorFailure
	}
	return nil
}
func (r *recordingOperator) Shutdown() error { r.shutCalled = true; return nil }

var errRecordingOperatorFailure = errors.New("recordingOperator: simulated failure")

func TestInstanceLifecycle(t *testing.T) {
	op := &recordingOperator{name: "rec"}
	in := NewInstance("rec", op, queue.New[event.Event](4), NewEmitContext("rec", 0))

	require.NoError(t, in.Init())
	assert.True(t, op.initCalled, "Instance.Init did not call the operator's Init hook")

	require.NoError(t, in.Start())
	assert.Equal(t, StateRunning, in.State())

	require.NoError(t, in.Shutdown())
	assert.True(t, op.shutCalled, "Instance.Shutdown did not call the operator's Shutdown hook")
	assert.Equal(t, StateStopped, in.State())
}

func TestInstanceClaimIsExclusive(t *testing.T) {
	op := &recordingOperator{name: "rec"}
	in := NewInstance("rec", op, queue.New[event.Event](4), NewEmitContext("rec", 0))

	require.True(t, in.TryClaim(), "first TryClaim should succeed")
	assert.False(t, in.TryClaim(), "second TryClaim should fail while claim is held")
	in.Release()
	assert.True(t, in.TryClaim(), "TryClaim should succeed again after Release")
}

func TestInstanceExecuteBatchStopsOnTombstone(t *testing.T) {
	op := &recordingOperator{name: "rec"}
	in := queue.New[event.Event](4)
	in.TryPush(event.New(event.Int64(1)))
	in.PushTombstone()

	inst := NewInstance("rec", op, in, NewEmitContext("rec", 0))
	processed, eof := inst.ExecuteBatch(64)

	assert.Equal(t, 1, processed)
	assert.True(t, eof, "expected eof after a tombstone")
}

func TestInstanceExecuteBatchCountsOperatorErrors(t *testing.T) {
	op := &recordingOperator{name: "rec", failNext: true}
	in := queue.New[event.Event](4)
	in.TryPush(event.New(event.Int64(1)))

	counters := metric.New()
	inst := NewInstance("rec", op, in, NewEmitContext("rec", 0))
	inst.SetCounters(counters)

	processed, _ := inst.ExecuteBatch(64)
	assert.Equal(t, 1, processed)
	assert.Equal(t, int64(1), counters.Snapshot().OperatorErrors)
	assert.Equal(t, int64(1), inst.Health().ErrorCount)
}
