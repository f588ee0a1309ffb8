package queue

import (
	"sync"
	"sync/atomic"
	"time"
)

// condWaitTimeout waits on c, which must be bound to a locked mu, for at
// most d before giving up. It returns false if the wait was woken by the
// timeout rather than a real Signal/Broadcast, so the caller can
// distinguish "recheck the predicate" from "give up".
//
// sync.Cond has no built-in deadline, so this arms a timer that grabs mu
// and broadcasts once d elapses, mirroring the watcher-goroutine idiom
// used elsewhere in this codebase for context-cancellable blocking calls.
func condWaitTimeout(c *sync.Cond, mu *sync.Mutex, d time.Duration) bool {
	var timedOut int32
	timer := time.AfterFunc(d, func() {
		mu.Lock()
		atomic.StoreInt32(&timedOut, 1)
		c.Broadcast()
		mu.Unlock()
	})
	c.Wait()
	timer.Stop()
	return atomic.LoadInt32(&timedOut) == 0
}
