package runtime

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/streamforge/event"
	"github.com/streamforge/streamforge/operator"
	"github.com/streamforge/streamforge/scheduler"
)

func sequenceSource(name string, from, to int64) operator.Source {
	next := from
	return operator.FromGenerateFunc(name, func(emit *operator.EmitContext, stopRequested func() bool) bool {
		if next > to || stopRequested() {
			return false
		}
		emit.Emit(event.New(event.Int64(next)))
		next++
		return true
	})
}

func squareOperator(name string) operator.Operator {
	return operator.FromPayloadFunc(name, func(evt event.Event) event.Payload {
		v, _ := evt.Payload().AsInt64()
		return event.Int64(v * v)
	})
}

func evenFilterOperator(name string) operator.Operator {
	return operator.FromMapFunc(name, func(evt event.Event) (event.Event, bool) {
		v, _ := evt.Payload().AsInt64()
		return evt, v%2 == 0
	})
}

// countingSum is the aggregate sink used by TestSequenceSquareEvenAggregate:
// it tallies how many events it saw and the sum of their int64 payloads.
type countingSum struct {
	count atomic.Int64
	sum   atomic.Int64
}

func (c *countingSum) sink(name string) operator.Sink {
	return operator.FromConsumeFunc(name, func(evt event.Event) error {
		v, _ := evt.Payload().AsInt64()
		c.count.Add(1)
		c.sum.Add(v)
		return nil
	})
}

// TestSequenceSquareEvenAggregate exercises the full Init/Start/
// AwaitCompletion/Stop lifecycle over Sequence(1..20) -> Square ->
// EvenFilter -> Aggregate with 2 workers and RoundRobin scheduling. Only
// even inputs survive the filter (since squaring preserves parity), so
// the aggregate should see the squares of 2,4,...,20: count=10,
// sum=1540. The 10 odd squares the filter discards should also show up
// in the runtime-wide EventsDropped counter.
func TestSequenceSquareEvenAggregate(t *testing.T) {
	g := NewGraphBuilder(16)
	agg := &countingSum{}

	require.NoError(t, g.AddSource("sequence", sequenceSource("sequence", 1, 20)))
	require.NoError(t, g.AddOperator("square", squareOperator("square")))
	require.NoError(t, g.AddOperator("even_filter", evenFilterOperator("even_filter")))
	require.NoError(t, g.AddSink("aggregate", agg.sink("aggregate")))
	require.NoError(t, g.Connect("sequence", "square"))
	require.NoError(t, g.Connect("square", "even_filter"))
	require.NoError(t, g.Connect("even_filter", "aggregate"))

	cfg := Config{
		NumWorkers:           2,
		DefaultQueueCapacity: 16,
		SchedulingPolicy:     scheduler.PolicyRoundRobin,
		EnableMetrics:        true,
		MetricsInterval:      time.Second,
	}

	rt := New(cfg, g)
	require.NoError(t, rt.Init())
	require.NoError(t, rt.Start(context.Background()))

	rt.AwaitCompletion()

	require.NoError(t, rt.Stop(2*time.Second))

	assert.Equal(t, int64(10), agg.count.Load())
	assert.Equal(t, int64(1540), agg.sum.Load())
	assert.Equal(t, StateStopped, rt.State())

	snap := rt.Stats().Metrics
	assert.Equal(t, int64(10), snap.EventsDropped, "even_filter should have dropped the 10 odd squares")
}

// TestRuntimeStopOnSourcelessGraph confirms that a graph with no sources
// still starts and stops cleanly: Start has nothing to spawn,
// AwaitCompletion returns immediately, and Stop drains zero queues.
func TestRuntimeStopOnSourcelessGraph(t *testing.T) {
	g := NewGraphBuilder(8)
	agg := &countingSum{}
	require.NoError(t, g.AddSink("aggregate", agg.sink("aggregate")))

	rt := New(DefaultConfig(), g)
	require.NoError(t, rt.Init())
	require.NoError(t, rt.Start(context.Background()))
	rt.AwaitCompletion()
	require.NoError(t, rt.Stop(time.Second))
}

// TestRuntimeRejectsDoubleStart checks that Start refuses to run twice,
// matching the lifecycle-misuse-is-fatal contract.
func TestRuntimeRejectsDoubleStart(t *testing.T) {
	g := NewGraphBuilder(8)
	agg := &countingSum{}
	require.NoError(t, g.AddSink("aggregate", agg.sink("aggregate")))

	rt := New(DefaultConfig(), g)
	require.NoError(t, rt.Init())
	require.NoError(t, rt.Start(context.Background()))
	assert.Error(t, rt.Start(context.Background()), "expected the second Start to fail")
	require.NoError(t, rt.Stop(time.Second))
}

// TestRuntimeRequestStopEndsUnboundedSource verifies the second stop
// signal: a source that never returns false on its own, driven purely by
// RequestStop via Runtime.Stop, still exits its dedicated goroutine.
func TestRuntimeRequestStopEndsUnboundedSource(t *testing.T) {
	g := NewGraphBuilder(8)
	var emitted atomic.Int64
	src := operator.FromGenerateFunc("ticker", func(emit *operator.EmitContext, stopRequested func() bool) bool {
		if stopRequested() {
			return false
		}
		emit.Emit(event.New(event.Int64(1)))
		emitted.Add(1)
		return true
	})
	agg := &countingSum{}
	require.NoError(t, g.AddSource("ticker", src))
	require.NoError(t, g.AddSink("aggregate", agg.sink("aggregate")))
	require.NoError(t, g.Connect("ticker", "aggregate"))

	rt := New(DefaultConfig(), g)
	require.NoError(t, rt.Init())
	require.NoError(t, rt.Start(context.Background()))

	time.Sleep(20 * time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- rt.Stop(2 * time.Second) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return; RequestStop likely did not reach the source goroutine")
	}

	assert.Greater(t, emitted.Load(), int64(0), "expected the ticker source to have emitted at least once before being stopped")
}
