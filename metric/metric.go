// Package metric exposes the runtime's counters. Atomic counters are
// always collected, mirroring the "stats always on, Prometheus optional"
// split used throughout this codebase; a PrometheusExporter registered
// with Prometheus is an opt-in adapter on top, never a requirement for reading
// the raw numbers back out in-process.
package metric

import "sync/atomic"

// Counters holds the runtime-wide counters RuntimeConfig.EnableMetrics
// gates reporting of. All fields are safe for concurrent use.
type Counters struct {
	EventsEmitted      atomic.Int64
	EventsProcessed    atomic.Int64
	EventsDropped      atomic.Int64
	BackpressureEvents atomic.Int64
	QueuePushBlocked   atomic.Int64
	QueuePopBlocked    atomic.Int64
	SchedulerMisses    atomic.Int64
	SchedulerSteals    atomic.Int64
	OperatorErrors     atomic.Int64
}

// New constructs a zeroed Counters.
func New() *Counters {
	return &Counters{}
}

// Snapshot is a point-in-time copy of Counters suitable for logging or
// exporting without holding a reference into the live struct.
type Snapshot struct {
	EventsEmitted      int64
	EventsProcessed    int64
	EventsDropped      int64
	BackpressureEvents int64
	QueuePushBlocked   int64
	QueuePopBlocked    int64
	SchedulerMisses    int64
	SchedulerSteals    int64
	OperatorErrors     int64
}

// Snapshot copies the current counter values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		EventsEmitted:      c.EventsEmitted.Load(),
		EventsProcessed:    c.EventsProcessed.Load(),
		EventsDropped:      c.EventsDropped.Load(),
		BackpressureEvents: c.BackpressureEvents.Load(),
		QueuePushBlocked:   c.QueuePushBlocked.Load(),
		QueuePopBlocked:    c.QueuePopBlocked.Load(),
		SchedulerMisses:    c.SchedulerMisses.Load(),
		SchedulerSteals:    c.SchedulerSteals.Load(),
		OperatorErrors:     c.OperatorErrors.Load(),
	}
}
