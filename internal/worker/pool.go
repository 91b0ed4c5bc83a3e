// Package worker provides a bounded pool for CPU-bound pipeline stages so
// they never stall request intake.
package worker

import (
	"context"
	"runtime"
)

// Pool bounds the number of concurrently executing CPU-bound tasks using a
// channel semaphore. Acquisition is context-aware: a cancelled request
// abandons its slot wait instead of queueing forever.
type Pool struct {
	slots chan struct{}
}

// New creates a Pool with the given number of slots. Non-positive sizes
// default to the available CPU parallelism.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Size returns the pool's slot count.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// Do runs fn once a slot is free, blocking the caller (not the pool) until
// then. Returns ctx.Err() if the context is cancelled while waiting.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.slots }()
	return fn()
}
