// Package rotationtest provides a manually advanced clock for driving the
// rotation scheduler deterministically in tests.
package rotationtest

import (
	"time"

	"github.com/wrale/wrale-proof/internal/wproofd/overlay/rotation"
)

// Clock is a simulated clock. Timers fire only from Advance, in deadline
// order, with ties broken by creation order. It is not safe for concurrent use.
type Clock struct {
	now    time.Time
	seq    uint64
	timers []*timer
}

// NewClock creates a clock reading start
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the simulated time
func (c *Clock) Now() time.Time {
	return c.now
}

// AfterFunc schedules f at Now()+d
func (c *Clock) AfterFunc(d time.Duration, f func()) rotation.Timer {
	if d < 0 {
		d = 0
	}
	t := &timer{at: c.now.Add(d), seq: c.seq, f: f}
	c.seq++
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, running every timer that comes due.
// Timers created by callbacks fire too if they fall inside the window.
func (c *Clock) Advance(d time.Duration) {
	target := c.now.Add(d)
	for {
		t := c.next(target)
		if t == nil {
			break
		}
		t.done = true
		c.now = t.at
		t.f()
	}
	c.now = target
	c.compact()
}

// Pending returns the number of timers that have neither fired nor been stopped
func (c *Clock) Pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

func (c *Clock) next(limit time.Time) *timer {
	var best *timer
	for _, t := range c.timers {
		if t.done || t.at.After(limit) {
			continue
		}
		if best == nil || t.at.Before(best.at) || (t.at.Equal(best.at) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (c *Clock) compact() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.done {
			live = append(live, t)
		}
	}
	c.timers = live
}

type timer struct {
	at   time.Time
	seq  uint64
	f    func()
	done bool
}

func (t *timer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	return true
}
