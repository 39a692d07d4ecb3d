package grid

import (
	"context"
	"sync"
)

// Gate is a reusable barrier. While closed, Wait blocks; Open releases every
// waiter at once by closing the current channel. Closing again installs a
// fresh channel for the next round.
type Gate struct {
	mu     sync.Mutex
	closed bool
	open   chan struct{}
}

// NewGate returns a gate in the closed state.
func NewGate() *Gate {
	return &Gate{closed: true, open: make(chan struct{})}
}

// Close makes subsequent Wait calls block until Open.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.open = make(chan struct{})
}

// Open releases all current and future waiters until the next Close.
func (g *Gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		return
	}
	g.closed = false
	close(g.open)
}

// IsClosed reports whether the gate is currently closed.
func (g *Gate) IsClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Wait blocks until the gate is open or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	if !g.closed {
		g.mu.Unlock()
		return nil
	}
	ch := g.open
	g.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
