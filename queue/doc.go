// Architecture notes for queue.Queue.
//
// Blocking semantics: Push/Pop block the calling goroutine using a
// sync.Cond pair rather than a buffered channel. This was chosen over
// `chan Item[T]` so that Close can distinguish "no more room" from "no
// more producers" and let readers drain whatever is left before reporting
// end-of-stream, which a closed buffered channel cannot do once a writer
// panics on send.
//
// Thread safety: every exported method takes the single mutex; there is
// no lock-free fast path. At the batch sizes this runtime schedules with
// (see the worker package's DefaultMaxBatch), lock contention has not been a
// bottleneck worth a lock-free ring buffer's added complexity.
//
// Known limitation: PushFor/PopFor's timeout is approximate, not exact -
// see condWaitTimeout. A missed deadline by a few hundred microseconds is
// not distinguishable from a real wakeup at the API level.
package queue
