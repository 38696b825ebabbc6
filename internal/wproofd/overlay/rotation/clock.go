package rotation

import (
	"sync/atomic"
	"time"
)

// Clock is the scheduler's only source of time. Production code uses a loop
// clock so that every callback runs on the session's event loop; tests use a
// manually advanced clock.
type Clock interface {
	// Now returns the current time
	Now() time.Time
	// AfterFunc arranges for f to run once after d
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable one-shot wait. Once Stop has returned, the timer's
// callback never runs.
type Timer interface {
	// Stop cancels the timer, reporting whether it prevented the callback
	Stop() bool
}

// NewLoopClock returns a wall clock whose timer callbacks are executed on loop
func NewLoopClock(loop *Loop) Clock {
	return loopClock{loop: loop}
}

type loopClock struct {
	loop *Loop
}

func (c loopClock) Now() time.Time {
	return time.Now()
}

func (c loopClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		c.loop.Post(func() {
			// A Stop that ran on the loop after the timer expired but before
			// this task was dequeued wins.
			if t.fired.CompareAndSwap(false, true) {
				f()
			}
		})
	})
	return t
}

type loopTimer struct {
	timer *time.Timer
	fired atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	return t.fired.CompareAndSwap(false, true)
}
