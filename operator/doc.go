// Package operator's lifecycle state machine intentionally has no
// self-transitions and no way to skip a state: Runtime always drives an
// Instance Created -> Initialized -> Running -> ShuttingDown -> Stopped,
// with Paused as an optional detour from and back to Running. A hook
// implementation that panics is the operator's problem, not this
// package's; Instance.ExecuteBatch does not recover from a panicking
// Process/Generate call, since a process-terminating fault is the
// documented behavior for an operator that corrupts its own invariants.
package operator
