package grid

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimQueueCapacity(t *testing.T) {
	t.Parallel()
	q := NewClaimQueue(2, quartz.NewReal())
	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(0))
	require.ErrorIs(t, q.Enqueue(1), ErrClaimQueueFull)
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 2, q.Cap())
}

func TestClaimQueueDequeueTimesOut(t *testing.T) {
	t.Parallel()
	q := NewClaimQueue(1, quartz.NewReal())

	start := time.Now()
	_, ok := q.Dequeue(context.Background(), 20*time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestClaimQueueDequeueWakesOnEnqueue(t *testing.T) {
	t.Parallel()
	q := NewClaimQueue(1, quartz.NewReal())

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = q.Enqueue(0)
	}()

	player, ok := q.Dequeue(context.Background(), 5*time.Second)
	require.True(t, ok)
	assert.Equal(t, 0, player)
}

func TestClaimQueueDequeueCancelled(t *testing.T) {
	t.Parallel()
	q := NewClaimQueue(1, quartz.NewReal())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool)
	go func() {
		_, ok := q.Dequeue(ctx, 0)
		done <- ok
	}()

	cancel()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not observe cancellation")
	}
}

func TestGate(t *testing.T) {
	t.Parallel()
	g := NewGate()
	assert.True(t, g.IsClosed())

	released := make(chan error, 2)
	for range 2 {
		go func() { released <- g.Wait(context.Background()) }()
	}

	select {
	case <-released:
		t.Fatal("waiter passed a closed gate")
	case <-time.After(20 * time.Millisecond):
	}

	g.Open()
	for range 2 {
		select {
		case err := <-released:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("waiter not released")
		}
	}

	// Re-closing installs a fresh barrier; open is idempotent.
	g.Close()
	g.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, g.Wait(ctx), context.DeadlineExceeded)
	g.Open()
	g.Open()
	require.NoError(t, g.Wait(context.Background()))
}
