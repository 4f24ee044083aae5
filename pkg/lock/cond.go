// Copyright 2025 The go-lock Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lock

import (
	"sync"
	"time"
)

// WaitResult is the outcome of a timed condition wait. A timeout is an
// expected outcome, not an error.
type WaitResult int

const (
	// WaitSuccess means the waiter was woken by Signal or Broadcast (or
	// spuriously) before the deadline.
	WaitSuccess WaitResult = iota

	// WaitTimeout means the deadline elapsed first.
	WaitTimeout
)

// Cond is a condition variable supporting plain, absolute-deadline and
// relative-timeout waits. The associated lock is supplied per call and must
// be held by the caller around Wait, and around the state change preceding
// Signal or Broadcast.
//
// Waits can wake spuriously; callers re-check their predicate in a loop.
// There is no wake ordering guarantee among waiters.
type Cond struct {
	mu      sync.Mutex
	waiters []*waiter
}

type waiter struct {
	ch chan struct{}
}

// NewCond returns a condition variable with no waiters.
func NewCond() *Cond {
	return &Cond{}
}

// enqueue registers the calling goroutine as a waiter. It must run before
// the caller releases its lock, so a wakeup between release and sleep is
// never lost.
func (c *Cond) enqueue() *waiter {
	w := &waiter{ch: make(chan struct{})}
	c.mu.Lock()
	c.waiters = append(c.waiters, w)
	c.mu.Unlock()
	return w
}

// remove drops w from the wait list. It reports false when w is gone
// already, meaning a Signal or Broadcast consumed it concurrently.
func (c *Cond) remove(w *waiter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, q := range c.waiters {
		if q == w {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// Wait atomically releases l and blocks the caller until woken by Signal or
// Broadcast, then reacquires l before returning. l must be held on entry.
func (c *Cond) Wait(l sync.Locker) {
	w := c.enqueue()
	l.Unlock()
	<-w.ch
	l.Lock()
}

// WaitUntil is Wait with an absolute deadline.
func (c *Cond) WaitUntil(l sync.Locker, deadline time.Time) WaitResult {
	return c.WaitFor(l, time.Until(deadline))
}

// WaitFor is Wait with a relative timeout. Nanosecond granularity is
// preserved; a non-positive duration times out immediately (the lock is
// still cycled, matching an expired timed wait).
func (c *Cond) WaitFor(l sync.Locker, d time.Duration) WaitResult {
	if d <= 0 {
		l.Unlock()
		l.Lock()
		return WaitTimeout
	}

	w := c.enqueue()
	l.Unlock()

	t := time.NewTimer(d)
	defer t.Stop()

	var res WaitResult
	select {
	case <-w.ch:
		res = WaitSuccess
	case <-t.C:
		if c.remove(w) {
			res = WaitTimeout
		} else {
			// A wakeup raced the timer and already consumed this waiter, so
			// it must count: the signaler saw us among the current waiters.
			res = WaitSuccess
		}
	}
	l.Lock()
	return res
}

// Signal wakes at most one current waiter. Which one is unspecified.
func (c *Cond) Signal() {
	c.mu.Lock()
	if len(c.waiters) > 0 {
		w := c.waiters[0]
		c.waiters = c.waiters[1:]
		close(w.ch)
	}
	c.mu.Unlock()
}

// Broadcast wakes all current waiters. They reacquire their locks one at a
// time, not simultaneously.
func (c *Cond) Broadcast() {
	c.mu.Lock()
	for _, w := range c.waiters {
		close(w.ch)
	}
	c.waiters = nil
	c.mu.Unlock()
}
