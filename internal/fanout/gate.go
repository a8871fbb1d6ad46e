// Package fanout provides the concurrency primitives used by the
// collection orchestrator: a counting admission gate, a retry wrapper
// with linear backoff, and an all-settled fan-out helper.
package fanout

import (
	"context"
)

const defaultMaxConcurrent = 5

// Gate admits at most a fixed number of concurrent tasks. Callers block
// in Acquire until a slot frees.
type Gate struct {
	slots chan struct{}
}

// NewGate creates a Gate with the given capacity. Non-positive values
// fall back to the default of 5.
func NewGate(maxConcurrent int) *Gate {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Gate{slots: make(chan struct{}, maxConcurrent)}
}

// Acquire blocks until a slot is free or the context is canceled. On
// success it returns a release function that must be called exactly once.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	select {
	case g.slots <- struct{}{}:
		return func() { <-g.slots }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Capacity returns the configured slot count.
func (g *Gate) Capacity() int {
	return cap(g.slots)
}

// InFlight returns the number of currently held slots.
func (g *Gate) InFlight() int {
	return len(g.slots)
}
