package subscription

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPoolSize is the default number of concurrently running watch
// tasks.
const DefaultPoolSize = 8

// Pool executes watch tasks with bounded parallelism. Tasks submitted
// beyond the bound wait for a slot; the wait is cancellable.
type Pool struct {
	slots chan struct{}
	wg    sync.WaitGroup

	// accepting is cleared when shutdown begins; submissions are
	// rejected from then on.
	accepting atomic.Bool

	// ctx is the root context of every task; cancel force-cancels
	// all remaining tasks during shutdown.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool creates a pool running at most size tasks in parallel.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		slots:  make(chan struct{}, size),
		ctx:    ctx,
		cancel: cancel,
	}
	p.accepting.Store(true)
	return p
}

// Submit schedules a watch task and returns its handle. The task runs
// once a pool slot is free. Returns ErrPoolClosed after shutdown has
// begun.
func (p *Pool) Submit(task WatchTask) (*Handle, error) {
	if !p.accepting.Load() {
		return nil, ErrPoolClosed
	}

	ctx, cancel := context.WithCancel(p.ctx)
	h := newHandle(cancel)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer h.complete()
		defer cancel()

		// Wait for a slot; cancellation while queued skips execution.
		select {
		case p.slots <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-p.slots }()

		_ = task(ctx)
	}()

	return h, nil
}

// Shutdown stops accepting tasks, waits up to grace for in-flight tasks
// to finish, then force-cancels remainders and waits up to grace again.
// Returns ErrShutdownTimeout if tasks are still running after both
// phases; remaining tasks are abandoned.
func (p *Pool) Shutdown(grace time.Duration) error {
	p.accepting.Store(false)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-time.After(grace):
	}

	p.cancel()

	select {
	case <-done:
		return nil
	case <-time.After(grace):
		return ErrShutdownTimeout
	}
}
