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

// UnfairMutex is an exclusive lock optimized for short critical sections.
// Construction probes the platform once: where the kernel offers a futex
// wait/wake facility, operations delegate to a futex-backed word; otherwise
// a spin-style lock is used. The chosen backend never changes afterwards and
// both satisfy the same contract.
//
// There is no fairness guarantee, and no admission order among blocked
// acquirers. Re-locking by the holding goroutine is undefined (it
// deadlocks); use a Recursive Mutex for re-entrancy.
type UnfairMutex struct {
	impl unfairBackend
}

// unfairBackend is the common surface of the two interchangeable backends.
type unfairBackend interface {
	lock()
	unlock()
	tryLock() bool
}

// NewUnfair returns an unfair mutex backed by the best facility the running
// platform offers.
func NewUnfair() *UnfairMutex {
	return &UnfairMutex{impl: newUnfairBackend()}
}

// Lock acquires the mutex, blocking until it is available.
func (m *UnfairMutex) Lock() {
	m.impl.lock()
}

// Unlock releases the mutex. It must be called by the holder.
func (m *UnfairMutex) Unlock() {
	m.impl.unlock()
}

// TryLock attempts to acquire the mutex without blocking and reports whether
// it succeeded.
func (m *UnfairMutex) TryLock() bool {
	return m.impl.tryLock()
}

// WithLock runs body while holding the mutex, releasing on every exit path.
func (m *UnfairMutex) WithLock(body func()) {
	m.Lock()
	defer m.Unlock()
	body()
}
