package subscription

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsTask(t *testing.T) {
	p := NewPool(2)
	defer p.Shutdown(time.Second)

	ran := make(chan struct{})
	h, err := p.Submit(func(ctx context.Context) error {
		close(ran)
		return nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("handle not completed")
	}
	if h.State() != TaskCompleted {
		t.Errorf("State() = %v, want COMPLETED", h.State())
	}
}

func TestPoolBoundsParallelism(t *testing.T) {
	p := NewPool(2)
	defer p.Shutdown(time.Second)

	var running atomic.Int32
	var peak atomic.Int32
	release := make(chan struct{})

	for i := 0; i < 6; i++ {
		_, err := p.Submit(func(ctx context.Context) error {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			defer running.Add(-1)

			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	time.Sleep(50 * time.Millisecond)
	close(release)

	if got := peak.Load(); got > 2 {
		t.Errorf("peak parallelism = %d, want <= 2", got)
	}
}

func TestPoolRejectsAfterShutdown(t *testing.T) {
	p := NewPool(1)
	if err := p.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	_, err := p.Submit(func(ctx context.Context) error { return nil })
	if err != ErrPoolClosed {
		t.Errorf("Submit after shutdown: err = %v, want ErrPoolClosed", err)
	}
}

func TestPoolShutdownForceCancels(t *testing.T) {
	p := NewPool(1)

	started := make(chan struct{})
	h, err := p.Submit(func(ctx context.Context) error {
		close(started)
		<-ctx.Done() // runs until force-cancelled
		return ctx.Err()
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started

	// First grace period elapses, second phase cancels the task.
	if err := p.Shutdown(50 * time.Millisecond); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("task not terminated by forced shutdown")
	}
}

func TestPoolCancelWhileQueued(t *testing.T) {
	p := NewPool(1)
	defer p.Shutdown(time.Second)

	release := make(chan struct{})
	blocker, err := p.Submit(func(ctx context.Context) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var ran atomic.Bool
	queued, err := p.Submit(func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	queued.Cancel()
	close(release)

	select {
	case <-queued.Done():
	case <-time.After(time.Second):
		t.Fatal("queued task handle not terminated")
	}
	if ran.Load() {
		t.Error("cancelled queued task still ran")
	}
	if queued.State() != TaskCancelled {
		t.Errorf("State() = %v, want CANCELLED", queued.State())
	}

	<-blocker.Done()
}
