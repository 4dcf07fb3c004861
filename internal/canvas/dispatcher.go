package canvas

import (
	"context"
	"sync/atomic"

	"github.com/halvard/skein/internal/apperr"
)

type job struct {
	fn   func(Accessor) error
	done chan error
}

// Dispatcher serializes canvas mutations onto one dedicated goroutine, the
// single-writer actor. Callers enqueue a mutation and await its completion;
// once a job is dispatched it is never cancelled, and abandoning the await
// does not roll back a mutation already applied.
type Dispatcher struct {
	acc Accessor

	jobs    chan job
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewDispatcher starts the writer goroutine for the given accessor.
func NewDispatcher(acc Accessor) *Dispatcher {
	d := &Dispatcher{
		acc:     acc,
		jobs:    make(chan job),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.stopped)
	for {
		select {
		case <-d.stopCh:
			return
		case j := <-d.jobs:
			// done is buffered, so an abandoned caller never blocks the
			// writer loop.
			j.done <- j.fn(d.acc)
		}
	}
}

// Do enqueues a mutation and waits for its completion signal. If ctx expires
// before the job is picked up, the job is not run; if it expires after, the
// job still completes on the writer goroutine.
func (d *Dispatcher) Do(ctx context.Context, fn func(Accessor) error) error {
	j := job{fn: fn, done: make(chan error, 1)}

	select {
	case d.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		return apperr.Validation("canvas dispatcher is closed")
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reader returns the accessor for snapshot reads, which may run off the
// writer goroutine.
func (d *Dispatcher) Reader() Accessor { return d.acc }

// Close stops the writer goroutine. Queued but undelivered jobs are dropped.
func (d *Dispatcher) Close() {
	if d.closed.CompareAndSwap(false, true) {
		close(d.stopCh)
	}
	<-d.stopped
}
