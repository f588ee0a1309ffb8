// Architecture notes for Pool.
//
// Work selection: unlike a channel-backed pool where idle workers block
// on a receive, this pool's workers poll the scheduler and back off for
// idleBackoff on a miss. A scheduler has no way to wake a sleeping worker
// early today (NotifyWorkAvailable is currently unused by both built-in
// schedulers); idleBackoff is kept short enough that this costs
// sub-millisecond added latency under light load, not an unbounded one.
//
// Fault handling: a Process call that panics inside a worker's batch is
// logged with the operator name and worker id, then re-panicked. Generate
// and Shutdown do not run on pool workers and are not wrapped here. This pool does
// not turn operator bugs into errors it can route around; a misbehaving
// operator is expected to crash the process so the failure is visible
// immediately rather than silently dropping events.
//
// Known limitation: there is no dynamic scaling and no per-worker
// priority; every worker is interchangeable and runs the same loop.
package worker
