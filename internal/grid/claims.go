package grid

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/quartz"
)

// ClaimQueue is the bounded FIFO of players waiting for a verdict.
// Capacity equals the number of players; since a player has at most one
// outstanding claim, Enqueue never has to wait.
type ClaimQueue struct {
	ch    chan int
	clock quartz.Clock
}

// NewClaimQueue creates a queue for the given number of players.
func NewClaimQueue(players int, clock quartz.Clock) *ClaimQueue {
	return &ClaimQueue{
		ch:    make(chan int, players),
		clock: clock,
	}
}

// Enqueue appends a claim without blocking.
func (q *ClaimQueue) Enqueue(player int) error {
	select {
	case q.ch <- player:
		return nil
	default:
		return fmt.Errorf("%w: player %d", ErrClaimQueueFull, player)
	}
}

// Dequeue returns the oldest claim, waiting at most wait for one to arrive.
// A non-positive wait blocks until a claim arrives or ctx is done.
func (q *ClaimQueue) Dequeue(ctx context.Context, wait time.Duration) (int, bool) {
	select {
	case player := <-q.ch:
		return player, true
	default:
	}

	if wait <= 0 {
		select {
		case player := <-q.ch:
			return player, true
		case <-ctx.Done():
			return 0, false
		}
	}

	timer := q.clock.NewTimer(wait, "claims", "dequeue")
	defer timer.Stop()

	select {
	case player := <-q.ch:
		return player, true
	case <-timer.C:
		return 0, false
	case <-ctx.Done():
		return 0, false
	}
}

// TryDequeue returns the oldest claim if one is pending.
func (q *ClaimQueue) TryDequeue() (int, bool) {
	select {
	case player := <-q.ch:
		return player, true
	default:
		return 0, false
	}
}

// Len returns the number of pending claims.
func (q *ClaimQueue) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *ClaimQueue) Cap() int {
	return cap(q.ch)
}
