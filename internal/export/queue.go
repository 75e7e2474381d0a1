package export

import (
	"context"
	"sync"
)

// ticket is a waiting caller and the cancel func that aborts its run.
type ticket struct {
	turn   chan struct{}
	cancel context.CancelFunc
}

// queue lets one export run at a time. Waiters are served in arrival order;
// the slot and its abort target are handed to the next waiter under one lock.
type queue struct {
	mu      sync.Mutex
	active  bool
	cancel  context.CancelFunc
	waiters []*ticket
}

// acquire blocks until the caller owns the slot or ctx is done. Once the
// caller owns the slot, abort calls cancel. A caller cancelled while waiting
// leaves the line without disturbing the others.
func (q *queue) acquire(ctx context.Context, cancel context.CancelFunc) error {
	q.mu.Lock()
	if !q.active {
		q.active = true
		q.cancel = cancel
		q.mu.Unlock()
		return nil
	}
	t := &ticket{turn: make(chan struct{}), cancel: cancel}
	q.waiters = append(q.waiters, t)
	q.mu.Unlock()

	select {
	case <-t.turn:
		return nil
	case <-ctx.Done():
	}

	q.mu.Lock()
	for i, w := range q.waiters {
		if w == t {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			q.mu.Unlock()
			return ctx.Err()
		}
	}
	q.mu.Unlock()

	// The slot was handed over as ctx ended; pass it on.
	q.release()
	return ctx.Err()
}

func (q *queue) release() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiters) == 0 {
		q.active = false
		q.cancel = nil
		return
	}
	next := q.waiters[0]
	q.waiters = q.waiters[1:]
	q.cancel = next.cancel
	close(next.turn)
}

// abort cancels whoever holds the slot and reports whether anyone did.
func (q *queue) abort() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cancel == nil {
		return false
	}
	q.cancel()
	return true
}

func (q *queue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}

func (q *queue) busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}
