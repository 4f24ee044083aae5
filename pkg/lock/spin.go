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
	"runtime"
	"sync/atomic"
)

// spinAttempts bounds the active-spin phase before a blocked acquirer parks
// on the wakeup channel. Short critical sections are usually over within a
// few reschedules.
const spinAttempts = 4

// spinMutex is the manually managed backend of UnfairMutex: an atomic word
// with a brief spin phase and a channel for parking. v is 1 when unlocked, 0
// when locked, and negative when locked with waiters, which forces the owner
// to attempt a wakeup on release.
type spinMutex struct {
	v  int32
	ch chan struct{}
}

func newSpinMutex() *spinMutex {
	m := &spinMutex{ch: make(chan struct{}, 1)}
	atomic.StoreInt32(&m.v, 1)
	return m
}

func (m *spinMutex) lock() {
	// Uncontended case.
	if atomic.AddInt32(&m.v, -1) == 0 {
		return
	}

	for i := 0; ; i++ {
		// Retry while making sure m.v stays negative, so the owner knows
		// the lock is contended and wakes someone on release.
		if v := atomic.LoadInt32(&m.v); v >= 0 && atomic.SwapInt32(&m.v, -1) == 1 {
			return
		}
		if i < spinAttempts {
			runtime.Gosched()
			continue
		}
		<-m.ch
	}
}

func (m *spinMutex) tryLock() bool {
	if atomic.LoadInt32(&m.v) <= 0 {
		return false
	}
	return atomic.CompareAndSwapInt32(&m.v, 1, 0)
}

func (m *spinMutex) unlock() {
	if atomic.SwapInt32(&m.v, 1) == 0 {
		// There were no pending waiters.
		return
	}

	// Wake some waiter up.
	select {
	case m.ch <- struct{}{}:
	default:
	}
}
