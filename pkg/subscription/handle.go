package subscription

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// TaskState represents the observable state of a watch task.
type TaskState uint8

const (
	// TaskPending indicates the task has not finished.
	TaskPending TaskState = iota

	// TaskCompleted indicates the task finished on its own, whether
	// normally or with an error. A completed task carries no further
	// meaning for its owner; the next subscribe call treats the entry
	// as no longer live.
	TaskCompleted

	// TaskCancelled indicates the task was cancelled by its owner.
	TaskCancelled
)

// String returns the state name.
func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "PENDING"
	case TaskCompleted:
		return "COMPLETED"
	case TaskCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// WatchTask performs one blocking long-poll cycle. It must honor ctx
// cancellation. Resubmission after completion is the caller's concern.
type WatchTask func(ctx context.Context) error

// Handle is the owner's reference to an asynchronous watch task. It is
// created by Pool.Submit and owned exclusively by the registry entry
// that stored it.
type Handle struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state TaskState
}

// newHandle creates a pending handle wrapping the given cancel func.
func newHandle(cancel context.CancelFunc) *Handle {
	return &Handle{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID returns the unique handle identifier.
func (h *Handle) ID() string {
	return h.id
}

// State returns the current task state.
func (h *Handle) State() TaskState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Live reports whether the task is still pending.
func (h *Handle) Live() bool {
	return h.State() == TaskPending
}

// Done returns a channel closed when the task has terminated.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Cancel requests cooperative cancellation. Cancelling a handle that
// has already completed or been cancelled is a no-op.
func (h *Handle) Cancel() {
	h.mu.Lock()
	if h.state != TaskPending {
		h.mu.Unlock()
		return
	}
	h.state = TaskCancelled
	h.mu.Unlock()

	h.cancel()
}

// complete marks the task as finished. An earlier cancellation wins:
// a cancelled task that subsequently returns stays cancelled.
func (h *Handle) complete() {
	h.mu.Lock()
	if h.state == TaskPending {
		h.state = TaskCompleted
	}
	h.mu.Unlock()

	close(h.done)
}
