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

//go:build !linux

package sem

import (
	"io/fs"
	"sync"
	"time"

	"github.com/ezoushen/go-lock/pkg/lock"
)

// Without a shared-memory futex facility the semaphore is process-local: a
// registry keyed by name, with the count guarded by this module's own mutex
// and condition variable. Permission bits have no process-local meaning and
// are accepted but ignored.
var registry = struct {
	mu   sync.Mutex
	sems map[string]*localSem
}{sems: make(map[string]*localSem)}

type localSem struct {
	mu    *lock.Mutex
	cond  *lock.Cond
	count uint32
	refs  int
}

// localHandle is one opener's view of a registry entry.
type localHandle struct {
	name string
	sem  *localSem
}

func openBackend(cfg config, initial uint32) (semBackend, error) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if existing, ok := registry.sems[cfg.name]; ok {
		if cfg.flags&OpenExclusive != 0 {
			return nil, fs.ErrExist
		}
		existing.refs++
		return &localHandle{name: cfg.name, sem: existing}, nil
	}
	if cfg.flags&OpenCreate == 0 {
		return nil, fs.ErrNotExist
	}
	s := &localSem{
		mu:    lock.New(lock.Default),
		cond:  lock.NewCond(),
		count: initial,
		refs:  1,
	}
	registry.sems[cfg.name] = s
	return &localHandle{name: cfg.name, sem: s}, nil
}

func unlinkBackend(name string) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.sems[name]; !ok {
		return fs.ErrNotExist
	}
	delete(registry.sems, name)
	return nil
}

func (h *localHandle) wait() {
	s := h.sem
	s.mu.Lock()
	for s.count == 0 {
		s.cond.Wait(s.mu)
	}
	s.count--
	s.mu.Unlock()
}

func (h *localHandle) tryWait() bool {
	s := h.sem
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 {
		return false
	}
	s.count--
	return true
}

func (h *localHandle) waitFor(d time.Duration) bool {
	s := h.sem
	deadline := time.Now().Add(d)
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.count == 0 {
		if s.cond.WaitUntil(s.mu, deadline) == lock.WaitTimeout {
			if s.count > 0 {
				break
			}
			return false
		}
	}
	s.count--
	return true
}

func (h *localHandle) signal() {
	s := h.sem
	s.mu.Lock()
	s.count++
	s.cond.Signal()
	s.mu.Unlock()
}

func (h *localHandle) close(unlink bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	h.sem.refs--
	if unlink {
		// The registry may hold a newer semaphore under this name if it was
		// unlinked and recreated; only remove our own.
		if cur, ok := registry.sems[h.name]; ok && cur == h.sem {
			delete(registry.sems, h.name)
		}
	}
}
