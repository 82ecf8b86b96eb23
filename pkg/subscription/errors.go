package subscription

import "errors"

// Subscription errors.
var (
	ErrPoolClosed      = errors.New("worker pool closed")
	ErrShutdownTimeout = errors.New("worker pool did not terminate")
	ErrQueueFull       = errors.New("delivery queue full")
	ErrQueueClosed     = errors.New("delivery queue closed")
)
