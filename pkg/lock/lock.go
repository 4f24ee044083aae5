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

// Package lock provides the exclusive, reader/writer, adaptive and condition
// primitives that the guard package composes. All primitives are created
// eagerly and are valid for the lifetime of the owning object.
package lock

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Type selects the semantics of a Mutex.
type Type int

const (
	// Default is the implementation-chosen baseline, equivalent to Normal.
	Default Type = iota

	// Normal is a non-recursive mutex. Re-locking by the holder deadlocks.
	Normal

	// Recursive permits the holding goroutine to lock again; each lock must
	// be matched by an unlock before other goroutines may proceed.
	Recursive

	// ErrorChecking reports illegal re-lock and unlock through LockErr and
	// UnlockErr instead of deadlocking or panicking.
	ErrorChecking
)

// Errors reported by ErrorChecking mutexes.
var (
	// ErrWouldDeadlock is returned when the holder of an ErrorChecking mutex
	// attempts to lock it again.
	ErrWouldDeadlock = errors.New("lock: relock by holder would deadlock")

	// ErrNotOwner is returned when a goroutine unlocks an ErrorChecking mutex
	// it does not hold.
	ErrNotOwner = errors.New("lock: mutex is not held by the caller")
)

// Mutex is an exclusive lock with configurable semantics. The zero value is
// an unlocked mutex of type Default; New or Init select another type.
//
// A Mutex must not be copied after first use.
type Mutex struct {
	kind Type
	mu   sync.Mutex

	// owner is the ID of the holding goroutine, or 0 when unheld. It is
	// maintained only for Recursive and ErrorChecking mutexes.
	owner atomic.Int64

	// depth is the recursion count. It is written only by the owner while
	// the mutex is held.
	depth int
}

// New returns a mutex of the given type.
func New(t Type) *Mutex {
	m := &Mutex{}
	m.Init(t)
	return m
}

// Init sets the type of a zero-value mutex. It must not be called on a
// mutex that is in use.
func (m *Mutex) Init(t Type) {
	m.kind = t
}

// tracked reports whether this mutex maintains owner identity.
func (m *Mutex) tracked() bool {
	return m.kind == Recursive || m.kind == ErrorChecking
}

// Lock acquires the mutex, blocking until it is available. For a Recursive
// mutex held by the caller, Lock increments the recursion count and returns
// immediately. For an ErrorChecking mutex, misuse panics; use LockErr to
// observe it as an error instead.
func (m *Mutex) Lock() {
	if err := m.lock(); err != nil {
		panic(fmt.Sprintf("lock: Lock: %v", err))
	}
}

// LockErr is Lock for ErrorChecking mutexes: an illegal re-lock by the
// holder returns ErrWouldDeadlock instead of blocking forever.
func (m *Mutex) LockErr() error {
	return m.lock()
}

func (m *Mutex) lock() error {
	if !m.tracked() {
		m.mu.Lock()
		return nil
	}
	gid := goroutineID()
	if m.owner.Load() == gid {
		if m.kind == ErrorChecking {
			return ErrWouldDeadlock
		}
		m.depth++
		return nil
	}
	m.mu.Lock()
	m.owner.Store(gid)
	m.depth = 1
	return nil
}

// TryLock attempts to acquire the mutex without blocking and reports whether
// it succeeded. For a Recursive mutex held by the caller it succeeds and
// increments the recursion count.
func (m *Mutex) TryLock() bool {
	if !m.tracked() {
		return m.mu.TryLock()
	}
	gid := goroutineID()
	if m.owner.Load() == gid {
		if m.kind == ErrorChecking {
			return false
		}
		m.depth++
		return true
	}
	if !m.mu.TryLock() {
		return false
	}
	m.owner.Store(gid)
	m.depth = 1
	return true
}

// Unlock releases the mutex. A Recursive mutex is released only when the
// recursion count returns to zero. Unlocking a tracked mutex that the caller
// does not hold panics; use UnlockErr on ErrorChecking mutexes to observe it
// as an error.
func (m *Mutex) Unlock() {
	if err := m.unlock(); err != nil {
		panic(fmt.Sprintf("lock: Unlock: %v", err))
	}
}

// UnlockErr is Unlock for ErrorChecking mutexes: unlocking while not the
// holder returns ErrNotOwner.
func (m *Mutex) UnlockErr() error {
	return m.unlock()
}

func (m *Mutex) unlock() error {
	if !m.tracked() {
		m.mu.Unlock()
		return nil
	}
	if m.owner.Load() != goroutineID() {
		return ErrNotOwner
	}
	m.depth--
	if m.depth > 0 {
		return nil
	}
	m.owner.Store(0)
	m.mu.Unlock()
	return nil
}

// WithLock runs body while holding the mutex. The mutex is released on every
// exit path, including a panic propagating out of body.
func (m *Mutex) WithLock(body func()) {
	m.Lock()
	defer m.Unlock()
	body()
}
