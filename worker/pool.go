// Package worker drives a Scheduler with a fixed pool of goroutines. Each
// worker loops: ask the scheduler for a ready instance, run one batch on
// it if it got one, release the claim, and either continue immediately
// (there was work) or back off briefly (there wasn't) before asking again.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/streamforge/streamforge/operator"
	"github.com/streamforge/streamforge/scheduler"
)

// DefaultMaxBatch is how many units of work ExecuteBatch processes per
// scheduling round when the pool isn't configured otherwise.
const DefaultMaxBatch = 64

// idleBackoff is how long a worker sleeps after a scheduling miss before
// asking the scheduler again, to avoid a hot spin loop when every
// instance is momentarily out of work.
const idleBackoff = 200 * time.Microsecond

// Stats is a snapshot of one worker's counters.
type Stats struct {
	BatchesRun      int64
	EventsProcessed int64
	Misses          int64
	ActiveTime      time.Duration
	IdleTime        time.Duration
}

type workerStats struct {
	batchesRun      atomic.Int64
	eventsProcessed atomic.Int64
	misses          atomic.Int64
	activeTimeNs    atomic.Int64
	idleTimeNs      atomic.Int64
}

func (ws *workerStats) snapshot() Stats {
	return Stats{
		BatchesRun:      ws.batchesRun.Load(),
		EventsProcessed: ws.eventsProcessed.Load(),
		Misses:          ws.misses.Load(),
		ActiveTime:      time.Duration(ws.activeTimeNs.Load()),
		IdleTime:        time.Duration(ws.idleTimeNs.Load()),
	}
}

// Pool runs numWorkers goroutines, each pulling ready work from sched
// until Stop is called. Start/Stop are guarded by lifecycleMu so
// concurrent callers can't race a pool into an inconsistent state, the
// same guarantee the reference generic pool this is grounded on provides.
type Pool struct {
	sched      scheduler.Scheduler
	numWorkers int
	maxBatch   int
	logger     *slog.Logger

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	cancel context.CancelFunc
	wg     sync.WaitGroup

	perWorker []*workerStats
}

// Option configures a Pool at construction.
type Option func(*Pool)

// WithMaxBatch overrides DefaultMaxBatch.
func WithMaxBatch(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.maxBatch = n
		}
	}
}

// WithLogger attaches a structured logger; nil is replaced with
// slog.Default() in New.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) { p.logger = logger }
}

// New constructs a Pool of numWorkers workers driving sched. numWorkers is
// clamped to at least 1.
func New(sched scheduler.Scheduler, numWorkers int, opts ...Option) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	p := &Pool{
		sched:      sched,
		numWorkers: numWorkers,
		maxBatch:   DefaultMaxBatch,
		perWorker:  make([]*workerStats, numWorkers),
	}
	for i := range p.perWorker {
		p.perWorker[i] = &workerStats{}
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Start launches the pool's worker goroutines. Calling Start twice is a
// no-op on the second call.
func (p *Pool) Start(ctx context.Context) {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.started {
		return
	}
	p.started = true

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.runWorker(runCtx, i)
	}
	p.logger.Info("worker pool started", "workers", p.numWorkers, "max_batch", p.maxBatch)
}

// Stop signals every worker to exit and waits for them to return, up to
// timeout. It returns false if the timeout elapsed with workers still
// running.
func (p *Pool) Stop(timeout time.Duration) bool {
	p.lifecycleMu.Lock()
	if p.stopped {
		p.lifecycleMu.Unlock()
		return true
	}
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
	p.lifecycleMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped")
		return true
	case <-time.After(timeout):
		p.logger.Error("worker pool stop timed out", "timeout", timeout)
		return false
	}
}

// Stats returns a snapshot of every worker's counters, indexed by worker
// id.
func (p *Pool) Stats() []Stats {
	out := make([]Stats, len(p.perWorker))
	for i, ws := range p.perWorker {
		out[i] = ws.snapshot()
	}
	return out
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	stats := p.perWorker[id]

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		start := time.Now()
		inst := p.sched.Next(id)
		if inst == nil {
			stats.misses.Add(1)
			stats.idleTimeNs.Add(int64(time.Since(start)))
			select {
			case <-ctx.Done():
				return
			case <-time.After(idleBackoff):
			}
			continue
		}

		processed := p.executeClaimed(id, inst)
		stats.batchesRun.Add(1)
		stats.eventsProcessed.Add(int64(processed))
		stats.activeTimeNs.Add(int64(time.Since(start)))
	}
}

// executeClaimed runs one batch on an instance the scheduler has already
// claimed on this worker's behalf, recovering a panicking hook so one
// operator's bug is logged with full context before this process exits -
// mirroring the "user-operator fault is a process-terminating event"
// contract instead of silently swallowing it.
func (p *Pool) executeClaimed(workerID int, inst *operator.Instance) (processed int) {
	defer inst.Release()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("operator panicked", "operator", inst.Name(), "worker", workerID, "panic", r)
			panic(r)
		}
	}()

	n, _ := inst.ExecuteBatch(p.maxBatch)
	return n
}
