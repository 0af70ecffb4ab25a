// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package worker runs display-list replays and GPU resource teardown on one
// background goroutine.
//
// Operations are executed in FIFO order. Queued operations can be removed in
// bulk by canvas identity before they run; an operation that is already
// running always completes. Pixel readback is the one synchronous path: the
// owner schedules a PixelReader and blocks in Wait.
package worker

import (
	"errors"
	"sync"

	"github.com/gogpu/canvas2d/internal/logging"
)

var (
	// ErrClosed is returned for operations scheduled after Close.
	ErrClosed = errors.New("worker: closed")
	// ErrCanceled is returned by PixelReader.Wait when the read was purged.
	ErrCanceled = errors.New("worker: operation canceled")
	// ErrTimeout is returned by PixelReader.Wait when the timeout elapses.
	ErrTimeout = errors.New("worker: readback timed out")
)

// Policy controls wakeup batching.
type Policy struct {
	// Defer skips the wakeup when an operation is scheduled while another
	// one is still queued: the worker drains until the queue is empty, so
	// the pending wakeup covers the whole batch. Deferred mode clears once
	// the queue drains.
	Defer bool
}

// Stats are cumulative worker counters.
type Stats struct {
	Scheduled uint64 // operations accepted by Schedule
	Run       uint64 // operations executed
	Failed    uint64 // executed operations that returned an error
	Discarded uint64 // operations purged or rejected without running
	Signals   uint64 // wakeups sent by Schedule
	Batches   uint64 // drain passes of the worker loop
}

// Option configures a Worker.
type Option func(*Worker)

// WithPolicy sets the batching policy.
func WithPolicy(p Policy) Option {
	return func(w *Worker) { w.policy = p }
}

// Worker is a single background goroutine with a FIFO operation queue.
//
// Thread safety: Worker is safe for concurrent use. Schedule and
// RemoveByIdentity share one lock, so a removal never races with an
// insertion.
type Worker struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []Operation
	deferred bool
	closed   bool
	policy   Policy
	stats    Stats

	// done is closed when the goroutine exits.
	done chan struct{}
}

// New starts a worker goroutine.
func New(opts ...Option) *Worker {
	w := &Worker{done: make(chan struct{})}
	for _, opt := range opts {
		opt(w)
	}
	w.cond = sync.NewCond(&w.mu)
	go w.loop()
	return w
}

// Schedule appends op to the queue. It returns false and discards op when
// the worker is closed.
func (w *Worker) Schedule(op Operation) bool {
	if op == nil {
		return false
	}
	w.mu.Lock()
	if w.closed {
		w.stats.Discarded++
		w.mu.Unlock()
		op.Discard()
		return false
	}
	w.queue = append(w.queue, op)
	w.stats.Scheduled++
	if w.policy.Defer && len(w.queue) > 1 {
		w.deferred = true
	}
	signal := !w.deferred
	if signal {
		w.stats.Signals++
	}
	w.mu.Unlock()

	logging.Logger().Debug("worker: scheduled", "id", op.ID(), "kind", op.Kind())
	if signal {
		w.cond.Signal()
	}
	return true
}

// RemoveByIdentity removes every queued operation for id and discards it.
// It returns the number of operations removed. An operation that is
// currently running is not affected.
func (w *Worker) RemoveByIdentity(id int) int {
	w.mu.Lock()
	var removed []Operation
	kept := w.queue[:0]
	for _, op := range w.queue {
		if op.ID() == id {
			removed = append(removed, op)
			continue
		}
		kept = append(kept, op)
	}
	clear(w.queue[len(kept):])
	w.queue = kept
	if len(w.queue) == 0 {
		w.deferred = false
	}
	w.stats.Discarded += uint64(len(removed))
	w.mu.Unlock()

	for _, op := range removed {
		op.Discard()
	}
	if len(removed) > 0 {
		logging.Logger().Debug("worker: purged", "id", id, "count", len(removed))
	}
	return len(removed)
}

// Pending returns the number of queued operations for id.
func (w *Worker) Pending(id int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, op := range w.queue {
		if op.ID() == id {
			n++
		}
	}
	return n
}

// Len returns the number of queued operations.
func (w *Worker) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Stats returns a copy of the counters.
func (w *Worker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Policy returns the batching policy.
func (w *Worker) Policy() Policy { return w.policy }

// Close stops the worker. Operations still queued are discarded; the one
// currently running completes first. Close waits for the goroutine to exit
// and is safe to call more than once.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	rest := w.queue
	w.queue = nil
	w.deferred = false
	w.stats.Discarded += uint64(len(rest))
	w.mu.Unlock()
	w.cond.Broadcast()

	for _, op := range rest {
		op.Discard()
	}
	<-w.done
}

// loop is the worker goroutine.
func (w *Worker) loop() {
	defer close(w.done)
	for {
		w.mu.Lock()
		for !w.closed && len(w.queue) == 0 {
			w.cond.Wait()
		}
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.stats.Batches++
		w.mu.Unlock()

		w.drain()
	}
}

// drain runs queued operations one at a time until the queue is empty.
// The lock is held only while popping.
func (w *Worker) drain() {
	for {
		w.mu.Lock()
		if w.closed || len(w.queue) == 0 {
			w.deferred = false
			w.mu.Unlock()
			return
		}
		op := w.queue[0]
		w.queue[0] = nil
		w.queue = w.queue[1:]
		w.mu.Unlock()

		err := op.Run()

		w.mu.Lock()
		w.stats.Run++
		if err != nil {
			w.stats.Failed++
		}
		w.mu.Unlock()
		if err != nil {
			logging.Logger().Warn("worker: operation failed",
				"id", op.ID(), "kind", op.Kind(), "err", err)
		}
	}
}
