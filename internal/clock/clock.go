// Package clock abstracts timer scheduling so that time-driven behavior
// (toast dismissal, fade transitions) can be driven manually in tests.
package clock

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// TimerID identifies a scheduled timer. IDs are unique per Clock and never 0.
type TimerID uint64

// Timer is a pending callback.
type Timer interface {
	// ID returns the timer's identifier.
	ID() TimerID
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or the timer was already stopped.
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// Real is a Clock backed by time.AfterFunc.
type Real struct {
	next atomic.Uint64
}

// NewReal returns a Clock backed by the runtime timers.
func NewReal() *Real {
	return &Real{}
}

// Now returns the current time.
func (c *Real) Now() time.Time { return time.Now() }

// AfterFunc runs f in its own goroutine after d.
func (c *Real) AfterFunc(d time.Duration, f func()) Timer {
	return &realTimer{
		id: TimerID(c.next.Add(1)),
		t:  time.AfterFunc(d, f),
	}
}

type realTimer struct {
	id TimerID
	t  *time.Timer
}

func (t *realTimer) ID() TimerID { return t.id }
func (t *realTimer) Stop() bool  { return t.t.Stop() }

// Fake is a manually advanced Clock. Callbacks run synchronously inside
// Advance, in deadline order, on the caller's goroutine.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	next    TimerID
	pending map[TimerID]*fakeTimer
}

// NewFake returns a Fake clock starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{
		now:     start,
		pending: make(map[TimerID]*fakeTimer),
	}
}

// Now returns the fake current time.
func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (c *Fake) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	t := &fakeTimer{clock: c, id: c.next, when: c.now.Add(d), f: f}
	c.pending[t.id] = t
	return t
}

// Advance moves the clock forward by d and runs every callback whose
// deadline has passed, including callbacks scheduled by other callbacks.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		t := c.earliestLocked(target)
		if t == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		delete(c.pending, t.id)
		if t.when.After(c.now) {
			c.now = t.when
		}
		c.mu.Unlock()
		t.f()
	}
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Fake) earliestLocked(deadline time.Time) *fakeTimer {
	due := make([]*fakeTimer, 0, len(c.pending))
	for _, t := range c.pending {
		if !t.when.After(deadline) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].when.Equal(due[j].when) {
			return due[i].id < due[j].id
		}
		return due[i].when.Before(due[j].when)
	})
	return due[0]
}

type fakeTimer struct {
	clock *Fake
	id    TimerID
	when  time.Time
	f     func()
}

func (t *fakeTimer) ID() TimerID { return t.id }

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if _, ok := t.clock.pending[t.id]; !ok {
		return false
	}
	delete(t.clock.pending, t.id)
	return true
}
