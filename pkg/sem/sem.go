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

// Package sem provides a named or anonymous counting semaphore. On Linux the
// count lives in a shared-memory file and the semaphore is usable across
// processes, like a POSIX named semaphore; elsewhere a process-local backend
// provides the same surface.
package sem

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

// OpenFlag controls semaphore creation.
type OpenFlag int

const (
	// OpenCreate creates the named semaphore if it does not exist.
	OpenCreate OpenFlag = 1 << iota

	// OpenExclusive makes creation fail if the name already exists.
	OpenExclusive
)

// DefaultFlags is create-if-absent, fail-if-already-exists.
const DefaultFlags = OpenCreate | OpenExclusive

// Mode holds the permission bits applied to the semaphore's backing resource
// at creation. The values match the POSIX file permission bits.
type Mode uint32

const (
	ModeUserRead   Mode = 0o400
	ModeUserWrite  Mode = 0o200
	ModeGroupRead  Mode = 0o040
	ModeGroupWrite Mode = 0o020
	ModeOtherRead  Mode = 0o004
	ModeOtherWrite Mode = 0o002
)

// DefaultMode grants read/write to the owner only.
const DefaultMode = ModeUserRead | ModeUserWrite

type config struct {
	name  string
	flags OpenFlag
	mode  Mode
}

// Option configures semaphore construction.
type Option func(*config)

// WithName names the semaphore explicitly, making it reachable from other
// openers under the same name. Without it, a process-unique name is
// generated and the backing resource is unlinked on Close.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithFlags overrides DefaultFlags.
func WithFlags(flags OpenFlag) Option {
	return func(c *config) { c.flags = flags }
}

// WithMode overrides DefaultMode.
func WithMode(mode Mode) Option {
	return func(c *config) { c.mode = mode }
}

// semBackend is the platform implementation behind a Semaphore.
type semBackend interface {
	wait()
	tryWait() bool
	waitFor(d time.Duration) bool
	signal()
	close(unlink bool)
}

// Semaphore is a counting semaphore. The count is never negative: Wait
// blocks while it is zero and decrements it, Signal increments it and wakes
// one blocked waiter. No upper bound is enforced.
type Semaphore struct {
	name      string
	anonymous bool
	impl      semBackend
	closed    atomic.Bool
}

// anonSeq distinguishes anonymous semaphores created by this process.
var anonSeq atomic.Uint64

func anonymousName() string {
	return fmt.Sprintf("go-lock.sem.%d.%d", os.Getpid(), anonSeq.Add(1))
}

// MustNew creates a semaphore with the given initial count. Construction
// failure (name collision under OpenExclusive, permission denied) panics:
// there is no recoverable construction path.
func MustNew(initial uint, opts ...Option) *Semaphore {
	cfg := config{flags: DefaultFlags, mode: DefaultMode}
	for _, opt := range opts {
		opt(&cfg)
	}
	anonymous := cfg.name == ""
	if anonymous {
		cfg.name = anonymousName()
	}
	impl, err := openBackend(cfg, uint32(initial))
	if err != nil {
		panic(fmt.Sprintf("sem: creating semaphore %q: %v", cfg.name, err))
	}
	return &Semaphore{name: cfg.name, anonymous: anonymous, impl: impl}
}

// Name returns the semaphore's name, generated or explicit.
func (s *Semaphore) Name() string {
	return s.name
}

func (s *Semaphore) check(op string) {
	if s.closed.Load() {
		panic("sem: " + op + " on closed semaphore")
	}
}

// Wait blocks until the count is greater than zero, then decrements it.
func (s *Semaphore) Wait() {
	s.check("Wait")
	s.impl.wait()
}

// TryWait decrements the count and returns true only if it was already
// greater than zero; otherwise it returns false without blocking.
func (s *Semaphore) TryWait() bool {
	s.check("TryWait")
	return s.impl.tryWait()
}

// WaitFor is Wait with a relative timeout. It reports whether the decrement
// happened before the timeout elapsed.
func (s *Semaphore) WaitFor(d time.Duration) bool {
	s.check("WaitFor")
	return s.impl.waitFor(d)
}

// Signal increments the count and wakes one blocked waiter, if any.
func (s *Semaphore) Signal() {
	s.check("Signal")
	s.impl.signal()
}

// Close releases the handle. For anonymous semaphores the underlying named
// resource is unlinked as well, so no OS-level name leaks. Closing twice is
// a no-op; any other operation after Close panics.
//
// Close must not race in-flight operations: the caller must order it after
// every Wait, TryWait, WaitFor and Signal on the handle. A racing operation
// may fault on the released mapping instead of panicking cleanly.
func (s *Semaphore) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.impl.close(s.anonymous)
}

// Unlink removes the named resource backing a named semaphore, like
// sem_unlink(3). Existing handles keep working; the name becomes available
// for reuse.
func Unlink(name string) error {
	return unlinkBackend(name)
}
