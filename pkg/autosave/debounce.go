// Package autosave runs an action once the user has stopped typing.
package autosave

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period after the last change before saving.
const DefaultDelay = 4000 * time.Millisecond

// Debouncer runs an action after a quiet period. Every Trigger restarts the
// wait; the action runs once per burst of triggers and never concurrently
// with itself.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending bool
	stopped bool

	// seq identifies the current schedule so stale timers do nothing.
	seq uint64

	run    sync.Mutex
	action func()
}

// New creates a Debouncer. A non-positive delay selects DefaultDelay.
func New(delay time.Duration, action func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, action: action}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger records an event and restarts the quiet period.
// It does nothing after Stop.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = true
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if !d.pending || d.seq != seq || d.stopped {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	d.invoke()
}

func (d *Debouncer) invoke() {
	if d.action == nil {
		return
	}
	d.run.Lock()
	defer d.run.Unlock()
	d.action()
}

// Flush runs a pending action now instead of waiting.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	pending := d.pending && !d.stopped
	d.pending = false
	d.mu.Unlock()

	if pending {
		d.invoke()
	}
}

// Pending reports whether an action is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels any pending action and ignores later triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
	d.stopped = true
}
