package debounce

import (
	"sync"
	"time"
)

// Debouncer delays fn until calls have stopped arriving for the configured
// delay, then invokes it once with the most recent argument. A delay of zero
// or less runs fn on every call, on the caller's goroutine.
//
// Deliveries never go backwards: a value is dropped when a later call has
// already been delivered. fn must not call back into the Debouncer.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	latest  T
	seq     uint64
	pending bool
	stopped bool

	deliverMu sync.Mutex
	delivered uint64
}

func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		fn:    fn,
	}
}

// Call records v and restarts the quiet period.
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.seq++
	d.latest = v

	if d.delay <= 0 {
		seq := d.seq
		d.pending = false
		d.mu.Unlock()
		d.deliver(seq, v)
		return
	}

	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
	d.mu.Unlock()
}

// Flush runs a pending call immediately on the caller's goroutine.
func (d *Debouncer[T]) Flush() {
	d.fire()
}

// Stop drops any pending call; later calls are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	v, seq := d.latest, d.seq
	d.pending = false
	d.mu.Unlock()

	d.deliver(seq, v)
}

func (d *Debouncer[T]) deliver(seq uint64, v T) {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	if seq <= d.delivered {
		return
	}
	d.delivered = seq
	d.fn(v)
}
