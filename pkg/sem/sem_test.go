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

package sem

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialCount(t *testing.T) {
	const initial = 3
	s := MustNew(initial)
	defer s.Close()

	for i := 0; i < initial; i++ {
		require.True(t, s.TryWait(), "TryWait %d of %d failed", i+1, initial)
	}
	require.False(t, s.TryWait(), "TryWait succeeded past the initial count")

	s.Signal()
	require.True(t, s.TryWait(), "TryWait failed after Signal")
	require.False(t, s.TryWait(), "one Signal admitted more than one TryWait")
}

func TestWaitBlocksUntilSignal(t *testing.T) {
	s := MustNew(0)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("Wait returned on a zero-count semaphore")
	case <-time.After(100 * time.Millisecond):
	}

	s.Signal()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Wait did not return after Signal")
	}
}

func TestWaitForTimeout(t *testing.T) {
	s := MustNew(0)
	defer s.Close()

	start := time.Now()
	assert.False(t, s.WaitFor(100*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	go func() {
		time.Sleep(50 * time.Millisecond)
		s.Signal()
	}()
	assert.True(t, s.WaitFor(time.Second))
}

func TestAnonymousNamesUnique(t *testing.T) {
	a := MustNew(0)
	defer a.Close()
	b := MustNew(0)
	defer b.Close()

	assert.NotEqual(t, a.Name(), b.Name())
	assert.Contains(t, a.Name(), fmt.Sprintf("%d", os.Getpid()))
}

func TestNamedAttach(t *testing.T) {
	name := fmt.Sprintf("go-lock.test.%d.%d", os.Getpid(), time.Now().UnixNano())

	a := MustNew(1, WithName(name))
	defer func() {
		a.Close()
		require.NoError(t, Unlink(name))
	}()

	// A second opener without OpenExclusive attaches to the same count.
	b := MustNew(0, WithName(name), WithFlags(OpenCreate))
	defer b.Close()

	require.True(t, b.TryWait(), "attached handle does not see the shared count")
	require.False(t, a.TryWait(), "count was not shared between handles")

	b.Signal()
	require.True(t, a.TryWait())
}

func TestExclusiveCollisionIsFatal(t *testing.T) {
	name := fmt.Sprintf("go-lock.test.%d.%d", os.Getpid(), time.Now().UnixNano())

	s := MustNew(0, WithName(name))
	defer func() {
		s.Close()
		require.NoError(t, Unlink(name))
	}()

	assert.Panics(t, func() { MustNew(0, WithName(name)) })
}

func TestUseAfterClosePanics(t *testing.T) {
	s := MustNew(1)
	s.Close()
	s.Close() // double Close is a no-op

	assert.Panics(t, func() { s.Wait() })
	assert.Panics(t, func() { s.TryWait() })
	assert.Panics(t, func() { s.Signal() })
}

func TestManyWaitersManySignals(t *testing.T) {
	const n = 8
	s := MustNew(0)
	defer s.Close()

	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func() {
			s.Wait()
			done <- struct{}{}
		}()
	}

	for i := 0; i < n; i++ {
		s.Signal()
	}
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("only %d of %d waiters released", i, n)
		}
	}
	assert.False(t, s.TryWait(), "count left over after balanced signal/wait")
}
