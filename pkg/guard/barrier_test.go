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

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarrierWriteDoesNotBlockCaller(t *testing.T) {
	s := NewBarrier()
	defer s.Close()

	// Occupy the dispatcher with a slow read so the write cannot have run
	// by the time Write returns.
	started := make(chan struct{})
	release := make(chan struct{})
	go s.Read(func() {
		close(started)
		<-release
	})
	<-started

	ran := make(chan struct{})
	done := make(chan struct{})
	go func() {
		s.Write(func() { close(ran) })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Write blocked on a busy dispatcher")
	}
	select {
	case <-ran:
		t.Fatalf("barrier write ran while a read held the dispatcher")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatalf("barrier write never ran after reads drained")
	}
}

func TestBarrierWriteVisibleToLaterRead(t *testing.T) {
	s := NewBarrier()
	defer s.Close()

	value := 0
	s.Write(func() { value = 42 })

	// Submitted after the write, so FIFO admission guarantees it observes
	// the write even though Write returned immediately.
	var got int
	s.Read(func() { got = value })
	assert.Equal(t, 42, got)
}

func TestBarrierExcludesReads(t *testing.T) {
	s := NewBarrier()
	defer s.Close()

	inBarrier := false
	violated := false
	var wg sync.WaitGroup
	readBatch := func() {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Read(func() {
					if inBarrier {
						violated = true
					}
				})
			}()
		}
	}

	readBatch()
	s.WriteSync(func() {
		inBarrier = true
		time.Sleep(10 * time.Millisecond)
		inBarrier = false
	})
	readBatch()

	// All submissions must land before Close; the final barrier then orders
	// the check behind every admitted read.
	wg.Wait()
	s.WriteSync(func() {})
	require.False(t, violated, "a read ran inside a barrier section")
}

func TestBarrierWriteSyncPropagatesPanic(t *testing.T) {
	s := NewBarrier()
	defer s.Close()

	assert.Panics(t, func() {
		s.WriteSync(func() { panic("boom") })
	})

	// The dispatcher must survive a panicking synchronous task.
	ok := make(chan struct{})
	s.WriteSync(func() { close(ok) })
	select {
	case <-ok:
	case <-time.After(time.Second):
		t.Fatalf("dispatcher dead after panicking WriteSync")
	}
}

func TestBarrierCloseIdempotent(t *testing.T) {
	s := NewBarrier()
	s.WriteSync(func() {})
	s.Close()
	s.Close()

	assert.Panics(t, func() { s.WriteSync(func() {}) })
}
