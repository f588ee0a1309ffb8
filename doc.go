// Package streamforge is an in-process, single-node runtime for
// building and running small parallel stream-processing graphs.
//
// A graph is assembled with a GraphBuilder: named Source, Operator, and
// Sink nodes connected by directed edges. Init materializes each edge
// into a bounded Queue and wires every node's EmitContext to its
// downstream queues; Start puts the graph to work.
//
//	g := runtime.NewGraphBuilder(4096)
//	g.AddSource("ticks", ticker)
//	g.AddOperator("square", square)
//	g.AddSink("log", logger)
//	g.Connect("ticks", "square")
//	g.Connect("square", "log")
//
//	rt := runtime.New(runtime.DefaultConfig(), g)
//	rt.Init()
//	rt.Start(ctx)
//	rt.AwaitCompletion()
//	rt.Stop(5 * time.Second)
//
// # Execution model
//
// Every non-source node is driven by a fixed worker pool through a
// Scheduler (round-robin or work-stealing); a worker claims a ready
// instance, runs one batch of its input queue through Process, and
// releases the claim. Sources are never scheduled: each runs on its own
// dedicated goroutine, calling Generate until it reports no more events
// or the runtime asks it to stop.
//
// # Packages
//
//   - event: the immutable Event and its tagged-union Payload
//   - queue: the bounded, blocking multi-producer multi-consumer queue
//     every edge is materialized as
//   - operator: the Operator/Source/Sink contracts, the per-instance
//     lifecycle state machine, and EmitContext
//   - scheduler: RoundRobin and WorkStealing assignment policies
//   - worker: the fixed-size pool that drives a Scheduler
//   - metric: always-on atomic counters plus an optional Prometheus
//     exporter
//   - runtime: GraphBuilder and the Runtime coordinator itself
//   - config: a thin YAML loader for runtime.Config, used by cmd/streamdemo
//
// streamforge has no CLI, config file, or network surface of its own;
// cmd/streamdemo is a reference binary showing one way to wire those
// around it, not part of the library's contract.
package streamforge
