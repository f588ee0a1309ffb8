// RoundRobin and WorkStealing both determine readiness by asking the
// instance itself (operator.Instance.Ready), never by inspecting queue
// internals directly, so a scheduler has no dependency on the queue
// package beyond what operator.Instance already exposes.
package scheduler
