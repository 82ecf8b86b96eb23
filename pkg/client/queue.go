package client

import (
	"context"
	"sync"

	"github.com/devicehive/hive-go/pkg/model"
	"github.com/devicehive/hive-go/pkg/subscription"
)

// BoundedQueue is a fixed-capacity FIFO queue safe for concurrent use.
// Producers never block: Put fails fast with ErrQueueFull so the sweep
// loop can retry on its next pass instead of stalling.
type BoundedQueue[T any] struct {
	mu     sync.Mutex
	items  chan T
	closed bool
}

// NewBoundedQueue creates a queue holding at most capacity items.
func NewBoundedQueue[T any](capacity int) *BoundedQueue[T] {
	return &BoundedQueue[T]{
		items: make(chan T, capacity),
	}
}

// Put enqueues an item without blocking.
// Returns ErrQueueFull when the queue is at capacity and ErrQueueClosed
// after Close.
func (q *BoundedQueue[T]) Put(ctx context.Context, item T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return subscription.ErrQueueClosed
	}

	select {
	case q.items <- item:
		return nil
	default:
		return subscription.ErrQueueFull
	}
}

// Take dequeues the next item, blocking until one is available, the
// context is cancelled, or the queue is closed and drained.
func (q *BoundedQueue[T]) Take(ctx context.Context) (T, error) {
	var zero T
	select {
	case item, ok := <-q.items:
		if !ok {
			return zero, subscription.ErrQueueClosed
		}
		return item, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Len returns the number of queued items.
func (q *BoundedQueue[T]) Len() int {
	return len(q.items)
}

// Close marks the queue closed. Queued items remain takeable; further
// Put calls fail with ErrQueueClosed. Close is idempotent.
func (q *BoundedQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.items)
}

// Compile-time interface satisfaction check.
var _ subscription.CommandQueue = (*BoundedQueue[*model.DeviceCommand])(nil)
