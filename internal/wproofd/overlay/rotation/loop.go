package rotation

import (
	"context"
	"sync"
)

// Loop runs callbacks one at a time on a single goroutine. It is the
// cooperative event loop a page session lives on: timer expiries and page
// interactions are all posted here, so scheduler state never needs a lock.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop with room for buffer pending callbacks
func NewLoop(buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run executes posted callbacks until ctx is cancelled or Close is called.
// Callbacks still queued at that point are dropped.
func (l *Loop) Run(ctx context.Context) {
	defer l.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case f := <-l.tasks:
			f()
		}
	}
}

// Post queues f for execution, reporting false once the loop has closed
func (l *Loop) Post(f func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.tasks <- f:
		return true
	case <-l.done:
		return false
	}
}

// Do runs f on the loop and waits for it to finish. It must not be called
// from a callback already running on the loop.
func (l *Loop) Do(f func()) bool {
	ran := make(chan struct{})
	if !l.Post(func() {
		f()
		close(ran)
	}) {
		return false
	}

	select {
	case <-ran:
		return true
	case <-l.done:
		return false
	}
}

// Close stops the loop
func (l *Loop) Close() {
	l.once.Do(func() {
		close(l.done)
	})
}

// Done is closed when the loop stops
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
