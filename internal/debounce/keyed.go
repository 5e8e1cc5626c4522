// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package debounce

import (
	"sync"
	"time"
)

// Keyed holds one Debouncer per key. Calls on different keys are independent.
type Keyed[K comparable, T any] struct {
	mu     sync.Mutex
	wait   time.Duration
	action func(K, T)
	timers map[K]*Debouncer[T]
}

// NewKeyed returns a Keyed debouncer that runs action(key, arg) after wait.
func NewKeyed[K comparable, T any](wait time.Duration, action func(K, T)) *Keyed[K, T] {
	return &Keyed[K, T]{
		wait:   wait,
		action: action,
		timers: make(map[K]*Debouncer[T]),
	}
}

// Call schedules action(key, arg), superseding any pending call for key only.
func (k *Keyed[K, T]) Call(key K, arg T) {
	k.get(key).Call(arg)
}

func (k *Keyed[K, T]) get(key K) *Debouncer[T] {
	k.mu.Lock()
	defer k.mu.Unlock()

	d, ok := k.timers[key]
	if !ok {
		d = New(k.wait, func(arg T) { k.action(key, arg) })
		k.timers[key] = d
	}
	return d
}

func (k *Keyed[K, T]) snapshot() []*Debouncer[T] {
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make([]*Debouncer[T], 0, len(k.timers))
	for _, d := range k.timers {
		out = append(out, d)
	}
	return out
}

// Flush runs every pending action concurrently and waits for them to return.
// It returns how many ran.
func (k *Keyed[K, T]) Flush() int {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		n  int
	)
	for _, d := range k.snapshot() {
		wg.Add(1)
		go func(d *Debouncer[T]) {
			defer wg.Done()
			if d.Flush() {
				mu.Lock()
				n++
				mu.Unlock()
			}
		}(d)
	}
	wg.Wait()
	return n
}

// Cancel drops every pending action and forgets all keys.
// It returns how many were dropped.
func (k *Keyed[K, T]) Cancel() int {
	k.mu.Lock()
	timers := k.timers
	k.timers = make(map[K]*Debouncer[T])
	k.mu.Unlock()

	n := 0
	for _, d := range timers {
		if d.Cancel() {
			n++
		}
	}
	return n
}

// Pending returns the number of keys with a scheduled action.
func (k *Keyed[K, T]) Pending() int {
	n := 0
	for _, d := range k.snapshot() {
		if d.Pending() {
			n++
		}
	}
	return n
}
