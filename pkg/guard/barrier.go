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
)

// submitBuffer bounds how far fire-and-forget writes may run ahead of the
// drainer before submission starts blocking.
const submitBuffer = 64

// BarrierStrategy runs reads concurrently on a shared dispatcher and writes
// with barrier semantics relative to everything else submitted to it. Write
// returns without waiting for the task to run; its effect becomes visible in
// submission order, so a Read submitted afterwards still observes it.
//
// The dispatcher owns one goroutine for the strategy's lifetime; Close stops
// it. Using the strategy after Close panics. A panic inside a fire-and-forget
// write has no caller to propagate to and crashes the process, like a panic
// on any unsupervised goroutine.
type BarrierStrategy struct {
	d *dispatcher
}

// NewBarrier returns a concurrent-reads, barrier-writes strategy.
func NewBarrier() *BarrierStrategy {
	return &BarrierStrategy{d: newDispatcher()}
}

// Read implements Strategy.Read. Reads admitted between two barriers run
// concurrently with each other on their callers' goroutines.
func (s *BarrierStrategy) Read(task func()) { s.d.read(task) }

// Write implements Strategy.Write. The task is queued and the caller returns
// immediately.
func (s *BarrierStrategy) Write(task func()) { s.d.writeAsync(task) }

// WriteSync implements Strategy.WriteSync.
func (s *BarrierStrategy) WriteSync(task func()) { s.d.writeSync(task) }

// Close stops the dispatcher goroutine after all previously submitted tasks
// have run. Closing twice is a no-op.
func (s *BarrierStrategy) Close() { s.d.close() }

// barrierTask is one unit of submitted work. Synchronous tasks carry a start
// channel the drainer closes to admit the caller, which then runs the body
// itself; fire-and-forget writes carry the body instead and run on the
// drainer.
type barrierTask struct {
	barrier  bool
	fn       func()
	start    chan struct{}
	finished chan struct{}
}

// dispatcher serializes admission FIFO: reads are admitted immediately and
// tracked until they leave; a barrier waits for every admitted read to leave,
// runs alone, and only then is the next task considered. The admit-then-drain
// shape keeps readers non-blocking with respect to each other while giving
// writers exclusivity against all scheduled work.
type dispatcher struct {
	tasks chan *barrierTask

	// readers tracks admitted reads still inside their critical section.
	// Only the drainer adds and waits, so Add never races Wait.
	readers sync.WaitGroup

	closeOnce sync.Once
}

func newDispatcher() *dispatcher {
	d := &dispatcher{tasks: make(chan *barrierTask, submitBuffer)}
	go d.drain()
	return d
}

func (d *dispatcher) drain() {
	for t := range d.tasks {
		if !t.barrier {
			d.readers.Add(1)
			close(t.start)
			continue
		}
		d.readers.Wait()
		if t.fn != nil {
			t.fn()
			continue
		}
		close(t.start)
		<-t.finished
	}
}

func (d *dispatcher) read(fn func()) {
	t := &barrierTask{start: make(chan struct{})}
	d.tasks <- t
	<-t.start
	defer d.readers.Done()
	fn()
}

func (d *dispatcher) writeAsync(fn func()) {
	d.tasks <- &barrierTask{barrier: true, fn: fn}
}

func (d *dispatcher) writeSync(fn func()) {
	t := &barrierTask{
		barrier:  true,
		start:    make(chan struct{}),
		finished: make(chan struct{}),
	}
	d.tasks <- t
	<-t.start
	defer close(t.finished)
	fn()
}

func (d *dispatcher) close() {
	d.closeOnce.Do(func() { close(d.tasks) })
}
