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

package guard

// Guarded owns one value and the strategy protecting it. There is no access
// path to the value outside a strategy-mediated critical section.
//
// An error returned by an access body crosses back to the caller only after
// the critical section has been exited; no lock is ever left held on a
// failing body.
type Guarded[T any] struct {
	s     Strategy
	value T
}

// New returns a guarded value using the given strategy.
func New[T any](value T, s Strategy) *Guarded[T] {
	return &Guarded[T]{s: s, value: value}
}

// NewValue returns a guarded value using the adaptive strategy, the default
// for simple wrapped-property use.
func NewValue[T any](value T) *Guarded[T] {
	return New(value, NewAdaptive())
}

// NewShared returns a guarded value using the barrier strategy, the default
// for general-purpose shared state. Note that the two constructors default
// differently on purpose: NewShared writes are asynchronous.
//
// The barrier strategy owns a dispatcher goroutine; the caller must Close the
// value when done with it.
func NewShared[T any](value T) *Guarded[T] {
	return New(value, NewBarrier())
}

// Close releases whatever the strategy owns. For BarrierStrategy this stops
// the dispatcher goroutine; lock-based strategies own nothing and Close is a
// no-op. Closing twice is a no-op. Using a barrier-backed value after Close
// panics.
func (g *Guarded[T]) Close() {
	if c, ok := g.s.(interface{ Close() }); ok {
		c.Close()
	}
}

// Load returns the current value. It is a full read under the strategy.
func (g *Guarded[T]) Load() T {
	var v T
	g.s.Read(func() { v = g.value })
	return v
}

// Store replaces the whole value. It is a full write under the strategy;
// with BarrierStrategy it returns before the store is applied.
func (g *Guarded[T]) Store(v T) {
	g.s.Write(func() { g.value = v })
}

// ReadAccess runs body against the current value under read protection and
// returns body's error, after the critical section has been exited.
func (g *Guarded[T]) ReadAccess(body func(T) error) error {
	var err error
	g.s.Read(func() { err = body(g.value) })
	return err
}

// WriteAccess runs body against the value under exclusive protection and
// returns body's error, after the critical section has been exited. The
// write is synchronous under every strategy.
func (g *Guarded[T]) WriteAccess(body func(*T) error) error {
	var err error
	g.s.WriteSync(func() { err = body(&g.value) })
	return err
}

// Read runs body against the current value under read protection and
// returns its result. Result-returning access lives at package level because
// methods cannot introduce type parameters.
func Read[T, R any](g *Guarded[T], body func(T) (R, error)) (R, error) {
	var (
		res R
		err error
	)
	g.s.Read(func() { res, err = body(g.value) })
	return res, err
}

// Write runs body against the value under exclusive protection, blocking
// until it has run, and returns its result.
func Write[T, R any](g *Guarded[T], body func(*T) (R, error)) (R, error) {
	var (
		res R
		err error
	)
	g.s.WriteSync(func() { res, err = body(&g.value) })
	return res, err
}
