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

// Package guard provides an atomically-guarded value whose locking policy is
// chosen independently of its call sites. A value is paired with one of four
// interchangeable strategies at construction and is only ever observed or
// mutated inside a strategy-mediated critical section.
package guard

import (
	"github.com/ezoushen/go-lock/pkg/lock"
)

// Strategy serializes reads and writes of one guarded value. Each strategy
// instance closes over exactly one lock (or dispatcher) created at
// construction and is never swapped afterwards.
//
// Write is the fire-and-forget write form: only BarrierStrategy makes it
// asynchronous, every other strategy blocks until the task has run. This
// asymmetry is deliberate; callers that need the write to be visible on
// return use WriteSync.
type Strategy interface {
	// Read runs task under at-least-shared protection.
	Read(task func())

	// Write runs task under exclusive protection, possibly without blocking
	// the caller.
	Write(task func())

	// WriteSync runs task under exclusive protection and blocks until it
	// has completed.
	WriteSync(task func())
}

// ExclusiveStrategy serializes every read and write through one exclusive
// lock. Readers never overlap.
type ExclusiveStrategy struct {
	mu *lock.Mutex
}

// NewExclusive returns an exclusive-lock strategy.
func NewExclusive() *ExclusiveStrategy {
	return &ExclusiveStrategy{mu: lock.New(lock.Default)}
}

// Read implements Strategy.Read.
func (s *ExclusiveStrategy) Read(task func()) { s.mu.WithLock(task) }

// Write implements Strategy.Write.
func (s *ExclusiveStrategy) Write(task func()) { s.mu.WithLock(task) }

// WriteSync implements Strategy.WriteSync.
func (s *ExclusiveStrategy) WriteSync(task func()) { s.mu.WithLock(task) }

// ReaderWriterStrategy takes the shared mode for reads and the exclusive
// mode for writes: concurrent reads, exclusive writes.
type ReaderWriterStrategy struct {
	rw *lock.RWMutex
}

// NewReaderWriter returns a reader/writer strategy.
func NewReaderWriter() *ReaderWriterStrategy {
	return &ReaderWriterStrategy{rw: &lock.RWMutex{}}
}

// Read implements Strategy.Read.
func (s *ReaderWriterStrategy) Read(task func()) { s.rw.WithRLock(task) }

// Write implements Strategy.Write.
func (s *ReaderWriterStrategy) Write(task func()) { s.rw.WithLock(task) }

// WriteSync implements Strategy.WriteSync.
func (s *ReaderWriterStrategy) WriteSync(task func()) { s.rw.WithLock(task) }

// AdaptiveStrategy has ExclusiveStrategy semantics over an UnfairMutex,
// trading fairness for lower overhead on short critical sections.
type AdaptiveStrategy struct {
	mu *lock.UnfairMutex
}

// NewAdaptive returns an adaptive-lock strategy.
func NewAdaptive() *AdaptiveStrategy {
	return &AdaptiveStrategy{mu: lock.NewUnfair()}
}

// Read implements Strategy.Read.
func (s *AdaptiveStrategy) Read(task func()) { s.mu.WithLock(task) }

// Write implements Strategy.Write.
func (s *AdaptiveStrategy) Write(task func()) { s.mu.WithLock(task) }

// WriteSync implements Strategy.WriteSync.
func (s *AdaptiveStrategy) WriteSync(task func()) { s.mu.WithLock(task) }
