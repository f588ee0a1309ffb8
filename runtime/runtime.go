// Package runtime is the coordinator that turns a GraphBuilder and a
// Config into a running graph of operator instances: it materializes
// edges into queues, wires each node's EmitContext, builds a scheduler
// and worker pool for everything except sources, and drives each source
// on its own dedicated goroutine since sources are never scheduled.
package runtime

import (
	"context"
	"log/slog"
	goruntime "runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/streamforge/streamforge/errors"
	"github.com/streamforge/streamforge/event"
	"github.com/streamforge/streamforge/metric"
	"github.com/streamforge/streamforge/operator"
	"github.com/streamforge/streamforge/queue"
	"github.com/streamforge/streamforge/scheduler"
	"github.com/streamforge/streamforge/worker"
)

// drainPollInterval is how often Stop re-checks whether every queue has
// drained before closing them.
const drainPollInterval = 10 * time.Millisecond

// State is a point in the Runtime's own lifecycle, distinct from the
// per-instance State an individual operator moves through.
type State int

const (
	StateCreated State = iota
	StateInitialized
	StateRunning
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
	case StateShuttingDown:
		return "ShuttingDown"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// namedQueue pairs a downstream edge's destination node name with the
// queue materialized for it, for wiring into an EmitContext.
type namedQueue struct {
	to string
	q  *queue.Queue[event.Event]
}

// Runtime owns every queue, operator instance, the scheduler, the worker
// pool, and one goroutine per source. It is not safe for concurrent use
// of Init/Start/Stop from more than one goroutine; callers should drive
// its lifecycle from a single owner.
type Runtime struct {
	cfg      Config
	logger   *slog.Logger
	counters *metric.Counters

	mu    sync.Mutex
	state State

	graph *GraphBuilder

	order           []string
	instances       map[string]*operator.Instance
	sourceInstances []*operator.Instance
	schedulable     []*operator.Instance
	allQueues       []*queue.Queue[event.Event]

	resolvedWorkers int
	sched           scheduler.Scheduler
	pool            *worker.Pool

	running  atomic.Bool
	sourceWG sync.WaitGroup

	metricsCancel context.CancelFunc
	metricsWG     sync.WaitGroup
}

// Option configures a Runtime at construction.
type Option func(*Runtime)

// WithLogger attaches a structured logger; nil is replaced with
// slog.Default() in New.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) { rt.logger = logger }
}

// WithCounters attaches a caller-owned metric.Counters instead of the one
// New allocates, so a caller can share counters across more than one
// Runtime or register them with a PrometheusExporter before Init runs.
func WithCounters(c *metric.Counters) Option {
	return func(rt *Runtime) { rt.counters = c }
}

// New constructs a Runtime in state Created from a fully-built
// GraphBuilder. Init must be called before Start.
func New(cfg Config, graph *GraphBuilder, opts ...Option) *Runtime {
	rt := &Runtime{
		cfg:       cfg,
		graph:     graph,
		instances: make(map[string]*operator.Instance),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.logger == nil {
		rt.logger = slog.Default()
	}
	if rt.counters == nil {
		rt.counters = metric.New()
	}
	return rt
}

// State returns the Runtime's current lifecycle state.
func (rt *Runtime) State() State {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.state
}

// Counters returns the Runtime's metric counters, shared with any
// PrometheusExporter the caller has registered against them.
func (rt *Runtime) Counters() *metric.Counters { return rt.counters }

func (rt *Runtime) transition(to State) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if !canTransition(rt.state, to) {
		return errors.WrapFatal(errors.ErrInvalidTransition, "runtime", "transition", rt.state.String()+"->"+to.String())
	}
	rt.state = to
	return nil
}

func canTransition(from, to State) bool {
	switch from {
	case StateCreated:
		return to == StateInitialized
	case StateInitialized:
		return to == StateRunning
	case StateRunning:
		return to == StateShuttingDown
	case StateShuttingDown:
		return to == StateStopped
	default:
		return false
	}
}

// Init materializes the graph: one Queue per edge, one Instance and
// EmitContext per node, a scheduler over every non-source instance sized
// for the resolved worker count, a worker pool to drive that scheduler,
// and an Init call on every operator in construction order.
func (rt *Runtime) Init() error {
	if err := rt.graph.validate(); err != nil {
		return err
	}
	if err := rt.transition(StateInitialized); err != nil {
		return err
	}

	inputQueues := make(map[string]*queue.Queue[event.Event], len(rt.graph.nodes))
	outputQueues := make(map[string][]namedQueue, len(rt.graph.nodes))

	for _, e := range rt.graph.edges {
		capacity := e.capacity
		if capacity <= 0 {
			capacity = rt.cfg.DefaultQueueCapacity
		}
		if _, exists := inputQueues[e.to]; exists {
			return errors.WrapInvalid(errors.ErrDuplicateName, "runtime", "Init", "node "+e.to+" already has an input edge")
		}
		q := queue.New[event.Event](capacity)
		inputQueues[e.to] = q
		outputQueues[e.from] = append(outputQueues[e.from], namedQueue{to: e.to, q: q})
		rt.allQueues = append(rt.allQueues, q)
	}

	rt.order = append([]string(nil), rt.graph.order...)

	for i, name := range rt.order {
		n := rt.graph.nodes[name]
		emit := operator.NewEmitContext(name, i)
		for _, oq := range outputQueues[name] {
			emit.AddOutput(oq.to, oq.q)
		}

		inst := operator.NewInstance(name, n.op, inputQueues[name], emit)
		if rt.cfg.EnableMetrics {
			emit.SetCounters(rt.counters)
			inst.SetCounters(rt.counters)
		}
		rt.instances[name] = inst

		if n.kind == kindSource {
			rt.sourceInstances = append(rt.sourceInstances, inst)
		} else {
			rt.schedulable = append(rt.schedulable, inst)
		}
	}

	rt.resolvedWorkers = rt.cfg.NumWorkers
	if rt.resolvedWorkers <= 0 {
		rt.resolvedWorkers = goruntime.NumCPU()
		if rt.resolvedWorkers < 1 {
			rt.resolvedWorkers = 4
		}
	}

	rt.sched = scheduler.New(rt.cfg.SchedulingPolicy, rt.schedulable, rt.resolvedWorkers)
	rt.pool = worker.New(rt.sched, rt.resolvedWorkers, worker.WithLogger(rt.logger))

	for _, name := range rt.order {
		inst := rt.instances[name]
		if err := inst.Init(); err != nil {
			return err
		}
		rt.logger.Debug("instance initialized", "name", name, "instance_id", inst.ID())
	}

	rt.logger.Info("runtime initialized",
		"nodes", len(rt.order),
		"sources", len(rt.sourceInstances),
		"workers", rt.resolvedWorkers,
		"policy", rt.cfg.SchedulingPolicy.String(),
	)
	return nil
}

// Start transitions the Runtime to Running, starts the worker pool, and
// spawns one dedicated goroutine per source. Sources are never handed to
// the scheduler; their goroutines run generate-call loops independent of
// the worker pool until they hit end-of-stream or are asked to stop
// early.
func (rt *Runtime) Start(ctx context.Context) error {
	if err := rt.transition(StateRunning); err != nil {
		return err
	}

	for _, name := range rt.order {
		if err := rt.instances[name].Start(); err != nil {
			return err
		}
	}

	rt.running.Store(true)
	rt.pool.Start(ctx)

	for _, src := range rt.sourceInstances {
		rt.sourceWG.Add(1)
		go rt.runSource(src)
	}

	if rt.cfg.EnableMetrics && rt.cfg.MetricsInterval > 0 {
		metricsCtx, cancel := context.WithCancel(context.Background())
		rt.metricsCancel = cancel
		rt.metricsWG.Add(1)
		go rt.runMetricsAggregator(metricsCtx)
	}

	rt.logger.Info("runtime started", "sources", len(rt.sourceInstances))
	return nil
}

// runMetricsAggregator periodically folds every queue's and the
// scheduler's own counters into rt.counters, on RuntimeConfig.
// MetricsInterval. EventsEmitted, EventsDropped, BackpressureEvents,
// OperatorErrors, and EventsProcessed are updated eagerly on their own
// hot paths; this loop is only for the counters that queue.Queue and
// scheduler.Scheduler already track themselves, so the global view
// mirrors rather than duplicates that bookkeeping.
func (rt *Runtime) runMetricsAggregator(ctx context.Context) {
	defer rt.metricsWG.Done()
	ticker := time.NewTicker(rt.cfg.MetricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rt.aggregateCounters()
		}
	}
}

// aggregateCounters stores the current queue and scheduler totals into
// rt.counters. It overwrites rather than adds, since queue.Stats and
// scheduler.Stats already report cumulative totals.
func (rt *Runtime) aggregateCounters() {
	var pushBlocked, popBlocked int64
	for _, q := range rt.allQueues {
		s := q.Stats()
		pushBlocked += s.PushBlockedCount
		popBlocked += s.PopBlockedCount
	}
	rt.counters.QueuePushBlocked.Store(pushBlocked)
	rt.counters.QueuePopBlocked.Store(popBlocked)

	if rt.sched != nil {
		ss := rt.sched.Stats()
		rt.counters.SchedulerMisses.Store(ss.Misses)
		rt.counters.SchedulerSteals.Store(ss.Steals)
	}
}

// runSource is the dedicated per-source thread loop: call generate once,
// stop as soon as it reports no more events or the runtime is no longer
// running or has asked this source to stop, incrementing the global
// events-processed counter once per call that produced more work.
func (rt *Runtime) runSource(inst *operator.Instance) {
	defer rt.sourceWG.Done()

	for rt.running.Load() && !inst.StopRequested() {
		more := inst.GenerateOnce()
		if !more {
			break
		}
		rt.counters.EventsProcessed.Add(1)
	}
}

// AwaitCompletion blocks until every source has stopped generating,
// either because it reached its own end-of-stream or because Stop asked
// it to. Unlike Stop, it does not change the Runtime's state and does not
// touch the worker pool or queues; it exists for naturally-finite
// pipelines that should be allowed to run to completion without an
// explicit shutdown call.
func (rt *Runtime) AwaitCompletion() {
	rt.sourceWG.Wait()
}

// Stop drains and tears the Runtime down: it asks every source to stop
// and joins their goroutines, waits for every queue to empty, closes
// every queue so blocked pops wake up, stops the worker pool, and calls
// Shutdown on every operator in construction order. timeout bounds how
// long it waits for the worker pool to exit once its context is
// canceled; Stop still completes even if that bound is exceeded, since
// a stuck operator is a process-terminating condition the caller should
// observe via the returned error, not a reason to hang forever.
func (rt *Runtime) Stop(timeout time.Duration) error {
	if err := rt.transition(StateShuttingDown); err != nil {
		return err
	}

	for _, src := range rt.sourceInstances {
		src.RequestStop()
	}
	rt.sourceWG.Wait()

	if rt.metricsCancel != nil {
		rt.metricsCancel()
		rt.metricsWG.Wait()
	}

	rt.drainQueues()

	rt.running.Store(false)
	for _, q := range rt.allQueues {
		q.Close()
	}

	var firstErr error
	if !rt.pool.Stop(timeout) {
		rt.logger.Error("worker pool did not stop within timeout", "timeout", timeout)
		firstErr = errors.WrapFatal(context.DeadlineExceeded, "runtime", "Stop", "stop worker pool")
	}

	if rt.cfg.EnableMetrics {
		rt.aggregateCounters()
	}

	for _, name := range rt.order {
		if err := rt.instances[name].Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := rt.transition(StateStopped); err != nil && firstErr == nil {
		firstErr = err
	}

	rt.logger.Info("runtime stopped")
	return firstErr
}

// drainQueues polls every queue until all are empty, sleeping
// drainPollInterval between rounds. It runs before queues are closed so
// that in-flight events are allowed to reach their downstream operator
// rather than being abandoned mid-edge.
func (rt *Runtime) drainQueues() {
	for {
		allEmpty := true
		for _, q := range rt.allQueues {
			if !q.Empty() {
				allEmpty = false
				break
			}
		}
		if allEmpty {
			return
		}
		time.Sleep(drainPollInterval)
	}
}

// Instance looks up an operator instance by its graph node name.
func (rt *Runtime) Instance(name string) (*operator.Instance, bool) {
	inst, ok := rt.instances[name]
	return inst, ok
}

// Stats is a snapshot of the Runtime's aggregate counters and the
// per-component stats beneath it, gathered on demand rather than pushed,
// matching the "stats always on, export is an adapter" split used
// throughout this codebase.
type Stats struct {
	Metrics   metric.Snapshot
	Scheduler scheduler.Stats
	Workers   []worker.Stats
	Queues    map[string]queue.Stats
	Instances map[string]operator.Stats
}

// Stats gathers a snapshot of every counter the Runtime, its scheduler,
// its worker pool, its queues, and its instances currently expose.
func (rt *Runtime) Stats() Stats {
	if rt.cfg.EnableMetrics {
		rt.aggregateCounters()
	}

	queues := make(map[string]queue.Stats, len(rt.graph.edges))
	for _, e := range rt.graph.edges {
		if inst, ok := rt.instances[e.to]; ok {
			if q := inst.Input(); q != nil {
				queues[e.from+"->"+e.to] = q.Stats()
			}
		}
	}

	instances := make(map[string]operator.Stats, len(rt.instances))
	for name, inst := range rt.instances {
		instances[name] = inst.Stats()
	}

	return Stats{
		Metrics:   rt.counters.Snapshot(),
		Scheduler: rt.sched.Stats(),
		Workers:   rt.pool.Stats(),
		Queues:    queues,
		Instances: instances,
	}
}
