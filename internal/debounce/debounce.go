// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package debounce provides trailing-edge debouncing.
//
// A Debouncer collapses a burst of calls into one call of its action, made
// once the wait duration passes with no further calls. Only the arguments of
// the most recent call are used. There is no leading edge.
//
// Keyed runs an independent Debouncer per key, so bursts on one key never
// cancel the pending call of another.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays an action until calls stop arriving for a wait period.
// It is safe for concurrent use. At most one timer is live at a time.
type Debouncer[T any] struct {
	mu     sync.Mutex
	wait   time.Duration
	action func(T)

	timer   *time.Timer
	pending bool
	arg     T
	gen     uint64 // bumped on every schedule, flush and cancel
}

// New returns a Debouncer that runs action after wait.
func New[T any](wait time.Duration, action func(T)) *Debouncer[T] {
	return &Debouncer[T]{wait: wait, action: action}
}

// Call schedules the action with arg, replacing any pending call and
// restarting the wait from now.
func (d *Debouncer[T]) Call(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.arg = arg
	d.pending = true
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

// fire runs the action if no later Call, Flush or Cancel superseded gen.
// A timer that lost the race against Stop lands here and is discarded.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	arg := d.take()
	d.mu.Unlock()

	d.action(arg)
}

// take clears the pending state and returns its argument. Caller holds mu.
func (d *Debouncer[T]) take() T {
	arg := d.arg
	var zero T
	d.arg = zero
	d.pending = false
	d.timer = nil
	return arg
}

// Flush runs the pending action now on the calling goroutine.
// It reports whether there was anything to run.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	arg := d.take()
	d.mu.Unlock()

	d.action(arg)
	return true
}

// Cancel drops the pending action, if any, and reports whether one was dropped.
func (d *Debouncer[T]) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pending {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.take()
	return true
}

// Pending reports whether an action is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
