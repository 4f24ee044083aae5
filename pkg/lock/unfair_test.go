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
	"testing"
	"time"
)

// unfairBackends returns every backend buildable on this platform, plus the
// constructed UnfairMutex itself, so the same contract is checked against
// each.
func unfairBackends() map[string]unfairBackend {
	backends := map[string]unfairBackend{
		"spin":     newSpinMutex(),
		"selected": NewUnfair().impl,
	}
	for name, b := range platformBackends() {
		backends[name] = b
	}
	return backends
}

func TestUnfairLockUnlock(t *testing.T) {
	for name, m := range unfairBackends() {
		m.lock()

		ch := make(chan struct{}, 1)
		go func() {
			m.lock()
			ch <- struct{}{}
			m.unlock()
			ch <- struct{}{}
		}()

		select {
		case <-ch:
			t.Fatalf("%s: lock succeeded on locked mutex", name)
		case <-time.After(100 * time.Millisecond):
		}

		m.unlock()

		select {
		case <-ch:
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("%s: lock failed to acquire released mutex", name)
		}
		<-ch
	}
}

func TestUnfairTryLock(t *testing.T) {
	for name, m := range unfairBackends() {
		if !m.tryLock() {
			t.Fatalf("%s: tryLock failed on unlocked mutex", name)
		}
		if m.tryLock() {
			t.Fatalf("%s: tryLock succeeded on locked mutex", name)
		}
		m.unlock()
		if !m.tryLock() {
			t.Fatalf("%s: tryLock failed after unlock", name)
		}
		m.unlock()
	}
}

func TestUnfairStress(t *testing.T) {
	const (
		workers = 10
		iters   = 1000
	)
	for name, m := range unfairBackends() {
		counter := 0
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < iters; j++ {
					m.lock()
					counter++
					m.unlock()
				}
			}()
		}
		wg.Wait()

		if want := workers * iters; counter != want {
			t.Errorf("%s: counter = %d, want %d", name, counter, want)
		}
	}
}

func TestUnfairMutexSurface(t *testing.T) {
	m := NewUnfair()
	m.Lock()
	if m.TryLock() {
		t.Fatalf("TryLock succeeded on held unfair mutex")
	}
	m.Unlock()

	released := false
	func() {
		defer func() { _ = recover() }()
		m.WithLock(func() { panic("boom") })
	}()
	m.WithLock(func() { released = true })
	if !released {
		t.Fatalf("unfair mutex not released after panicking body")
	}
}
