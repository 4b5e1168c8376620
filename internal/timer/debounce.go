// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package timer

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers per key into one callback that runs
// delay after the last trigger.
type Debouncer struct {
	clock Clock
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*debounced
}

type debounced struct {
	timer Timer
	gen   uint64
}

func NewDebouncer(clock Clock, delay time.Duration) *Debouncer {
	return &Debouncer{clock: Or(clock), delay: delay, pending: map[string]*debounced{}}
}

// Trigger (re)arms key. Only the f from the latest trigger runs.
func (d *Debouncer) Trigger(key string, f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.pending[key]
	if ok {
		entry.timer.Stop()
	} else {
		entry = &debounced{}
		d.pending[key] = entry
	}
	entry.gen++
	gen := entry.gen
	entry.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		cur, ok := d.pending[key]
		if !ok || cur.gen != gen {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()
		f()
	})
}

// Cancel drops a pending key and reports whether one was armed.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.pending[key]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(d.pending, key)
	return true
}

// CancelAll drops every pending key.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, entry := range d.pending {
		entry.timer.Stop()
		delete(d.pending, key)
	}
}

func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
