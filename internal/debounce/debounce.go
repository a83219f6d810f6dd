// Package debounce delays a rapidly changing value until it settles.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used when none is configured.
const DefaultDelay = 800 * time.Millisecond

// Debouncer emits the most recent pushed value once no newer value has
// arrived for the quiet period. Emissions are delivered on C; if the
// consumer lags, an unread emission is replaced by the newer one.
type Debouncer[T any] struct {
	delay time.Duration
	out   chan T

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	stopped bool
}

// New creates a debouncer with the given quiet period.
func New[T any](delay time.Duration) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, out: make(chan T, 1)}
}

// C delivers settled values. It is closed by Stop.
func (d *Debouncer[T]) C() <-chan T { return d.out }

// Delay returns the quiet period.
func (d *Debouncer[T]) Delay() time.Duration { return d.delay }

// Push records a new value and restarts the quiet period.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() { d.emit(seq, v) })
}

// emit delivers v unless a newer push or Stop happened after it was scheduled.
// A timer that already fired cannot be stopped, so the sequence check is what
// keeps emissions monotonic.
func (d *Debouncer[T]) emit(seq uint64, v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || seq != d.seq {
		return
	}
	select {
	case <-d.out:
	default:
	}
	d.out <- v
}

// Stop cancels any pending emission and closes C. It is safe to call twice.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.out)
}
