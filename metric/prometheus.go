package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusExporter mirrors Counters into a set of Prometheus gauges on
// demand. It does not subscribe to changes; call Collect (typically from a
// periodic ticker, per RuntimeConfig.MetricsInterval) to push the latest
// snapshot into the registered gauges.
type PrometheusExporter struct {
	counters *Counters

	eventsEmitted      prometheus.Gauge
	eventsProcessed    prometheus.Gauge
	eventsDropped      prometheus.Gauge
	backpressureEvents prometheus.Gauge
	queuePushBlocked   prometheus.Gauge
	queuePopBlocked    prometheus.Gauge
	schedulerMisses    prometheus.Gauge
	schedulerSteals    prometheus.Gauge
	operatorErrors     prometheus.Gauge
}

// NewPrometheusExporter builds gauges under the "streamforge" namespace and
// registers them with reg. It returns an error if registration fails, e.g.
// because reg already has a collector under the same name.
func NewPrometheusExporter(counters *Counters, reg prometheus.Registerer) (*PrometheusExporter, error) {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "streamforge",
			Subsystem: "runtime",
			Name:      name,
			Help:      help,
		})
	}

	e := &PrometheusExporter{
		counters:           counters,
		eventsEmitted:      gauge("events_emitted_total", "Events accepted by an EmitContext output."),
		eventsProcessed:    gauge("events_processed_total", "Source Generate calls that reported more events to come."),
		eventsDropped:      gauge("events_dropped_total", "Events refused by a closed output or discarded by a filtering operator."),
		backpressureEvents: gauge("backpressure_events_total", "TryEmit calls that accepted none of their outputs."),
		queuePushBlocked:   gauge("queue_push_blocked_total", "Blocking Push calls that had to wait for space."),
		queuePopBlocked:    gauge("queue_pop_blocked_total", "Blocking Pop calls that had to wait for an item."),
		schedulerMisses:    gauge("scheduler_misses_total", "Scheduler.Next calls that found no ready instance."),
		schedulerSteals:    gauge("scheduler_steals_total", "Work-stealing assignments from a non-home partition."),
		operatorErrors:     gauge("operator_errors_total", "Errors returned by an operator's hooks."),
	}

	collectors := []prometheus.Collector{
		e.eventsEmitted, e.eventsProcessed, e.eventsDropped, e.backpressureEvents,
		e.queuePushBlocked, e.queuePopBlocked,
		e.schedulerMisses, e.schedulerSteals, e.operatorErrors,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Collect copies the current counter snapshot into the registered gauges.
func (e *PrometheusExporter) Collect() {
	snap := e.counters.Snapshot()
	e.eventsEmitted.Set(float64(snap.EventsEmitted))
	e.eventsProcessed.Set(float64(snap.EventsProcessed))
	e.eventsDropped.Set(float64(snap.EventsDropped))
	e.backpressureEvents.Set(float64(snap.BackpressureEvents))
	e.queuePushBlocked.Set(float64(snap.QueuePushBlocked))
	e.queuePopBlocked.Set(float64(snap.QueuePopBlocked))
	e.schedulerMisses.Set(float64(snap.SchedulerMisses))
	e.schedulerSteals.Set(float64(snap.SchedulerSteals))
	e.operatorErrors.Set(float64(snap.OperatorErrors))
}
