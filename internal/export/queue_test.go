package export

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_HandoffInOrder(t *testing.T) {
	var q queue
	require.NoError(t, q.acquire(context.Background(), func() {}))
	assert.True(t, q.busy())

	order := make(chan int, 3)
	for i := 1; i <= 3; i++ {
		go func(n int) {
			if err := q.acquire(context.Background(), func() {}); err == nil {
				order <- n
				q.release()
			}
		}(i)
		require.Eventually(t, func() bool { return q.pending() == i }, time.Second, time.Millisecond)
	}

	q.release()
	for want := 1; want <= 3; want++ {
		assert.Equal(t, want, <-order)
	}
	require.Eventually(t, func() bool { return !q.busy() }, time.Second, time.Millisecond)
}

func TestQueue_CancelledWaiterLeaves(t *testing.T) {
	var q queue
	require.NoError(t, q.acquire(context.Background(), func() {}))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error)
	go func() { errc <- q.acquire(ctx, func() {}) }()
	require.Eventually(t, func() bool { return q.pending() == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
	assert.Equal(t, 0, q.pending())

	q.release()
	assert.False(t, q.busy())
}

func TestQueue_AbortTargetsSlotHolder(t *testing.T) {
	var q queue
	assert.False(t, q.abort())

	var first, second atomic.Int32
	require.NoError(t, q.acquire(context.Background(), func() { first.Add(1) }))

	// Abort lands as soon as the slot is owned.
	assert.True(t, q.abort())
	assert.Equal(t, int32(1), first.Load())

	acquired := make(chan struct{})
	go func() {
		if err := q.acquire(context.Background(), func() { second.Add(1) }); err == nil {
			close(acquired)
		}
	}()
	require.Eventually(t, func() bool { return q.pending() == 1 }, time.Second, time.Millisecond)

	// The handoff moves the abort target along with the slot.
	q.release()
	assert.True(t, q.abort())
	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(1), second.Load())

	<-acquired
	q.release()
	assert.False(t, q.abort())
	assert.Equal(t, int32(1), second.Load())
}
