package workers

import (
	"context"
	"errors"
	"sync/atomic"
)

// DefaultSize is the number of slots used when a Pool is built with size < 1.
const DefaultSize = 10

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("workers: pool closed")

// Pool is a fixed-size admission gate for concurrent work.
type Pool struct {
	size      int
	semaphore chan struct{}
	inFlight  atomic.Int64
	completed atomic.Int64
	closed    chan struct{}
	closeOnce atomic.Bool
}

// NewPool creates a pool with the given number of slots.
func NewPool(size int) *Pool {
	if size < 1 {
		size = DefaultSize
	}
	return &Pool{
		size:      size,
		semaphore: make(chan struct{}, size),
		closed:    make(chan struct{}),
	}
}

// Do waits for a free slot and then runs fn. It returns ctx.Err() if the
// context ends before a slot is acquired, in which case fn never runs.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	select {
	case <-p.closed:
		return ErrClosed
	default:
	}

	select {
	case p.semaphore <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closed:
		return ErrClosed
	}
	defer func() { <-p.semaphore }()

	p.inFlight.Add(1)
	defer func() {
		p.inFlight.Add(-1)
		p.completed.Add(1)
	}()

	fn()
	return nil
}

// Close stops admitting new work. Work already admitted is unaffected.
func (p *Pool) Close() {
	if p.closeOnce.CompareAndSwap(false, true) {
		close(p.closed)
	}
}

// Capacity returns the number of slots.
func (p *Pool) Capacity() int {
	return p.size
}

// InFlight returns how many functions are currently running.
func (p *Pool) InFlight() int {
	return int(p.inFlight.Load())
}

// Completed returns how many admitted functions have returned.
func (p *Pool) Completed() int64 {
	return p.completed.Load()
}
