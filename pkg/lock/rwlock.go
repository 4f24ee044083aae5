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
)

// RWMutex is a reader/writer lock: any number of concurrent readers, or one
// writer, never both. The zero value is an unlocked RWMutex.
//
// Whatever reader/writer fairness the runtime provides (currently
// writer-preferring) is an implementation property of the platform, not a
// guarantee of this type. A goroutine holding the write side must not
// acquire the read side of the same RWMutex.
//
// An RWMutex must not be copied after first use.
type RWMutex struct {
	rw sync.RWMutex
}

// RLock acquires the lock for reading, blocking until no writer holds it.
func (m *RWMutex) RLock() {
	m.rw.RLock()
}

// TryRLock attempts to acquire the lock for reading without blocking and
// reports whether it succeeded.
func (m *RWMutex) TryRLock() bool {
	return m.rw.TryRLock()
}

// RUnlock releases one read acquisition. It does not affect other readers.
func (m *RWMutex) RUnlock() {
	m.rw.RUnlock()
}

// Lock acquires the lock for writing, blocking until no reader or writer
// holds it.
func (m *RWMutex) Lock() {
	m.rw.Lock()
}

// TryLock attempts to acquire the lock for writing without blocking and
// reports whether it succeeded. It fails while any reader holds the lock.
func (m *RWMutex) TryLock() bool {
	return m.rw.TryLock()
}

// Unlock releases the write acquisition.
func (m *RWMutex) Unlock() {
	m.rw.Unlock()
}

// WithRLock runs body under read protection, releasing on every exit path.
func (m *RWMutex) WithRLock(body func()) {
	m.RLock()
	defer m.RUnlock()
	body()
}

// WithLock runs body under write protection, releasing on every exit path.
func (m *RWMutex) WithLock(body func()) {
	m.Lock()
	defer m.Unlock()
	body()
}
