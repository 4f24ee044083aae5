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

//go:build linux

package lock

import (
	"sync"
	"sync/atomic"

	"github.com/ezoushen/go-lock/pkg/futex"
)

// futexAvailable caches the one-time capability probe. Every UnfairMutex
// constructed afterwards reuses the answer; the platform does not grow or
// lose the facility at runtime.
var futexAvailable = sync.OnceValue(futex.Available)

func newUnfairBackend() unfairBackend {
	if futexAvailable() {
		return new(futexMutex)
	}
	return newSpinMutex()
}

// Lock states of a futexMutex word.
const (
	futexUnlocked  = 0
	futexLocked    = 1
	futexContended = 2
)

// futexMutex is the kernel-managed backend of UnfairMutex: a single word the
// kernel sleeps and wakes on, with no allocation beyond the word itself.
// The state encoding distinguishes "locked" from "locked with waiters" so
// that an uncontended unlock skips the wake syscall.
type futexMutex struct {
	state uint32
}

func (m *futexMutex) lock() {
	if atomic.CompareAndSwapUint32(&m.state, futexUnlocked, futexLocked) {
		return
	}
	for {
		v := atomic.LoadUint32(&m.state)
		if v == futexContended ||
			(v == futexLocked && atomic.CompareAndSwapUint32(&m.state, futexLocked, futexContended)) {
			futex.Wait(&m.state, futexContended, false)
		}
		if atomic.CompareAndSwapUint32(&m.state, futexUnlocked, futexContended) {
			return
		}
	}
}

func (m *futexMutex) tryLock() bool {
	return atomic.CompareAndSwapUint32(&m.state, futexUnlocked, futexLocked)
}

func (m *futexMutex) unlock() {
	if atomic.SwapUint32(&m.state, futexUnlocked) == futexContended {
		futex.Wake(&m.state, 1, false)
	}
}
