package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/devicehive/hive-go/pkg/subscription"
)

func TestBoundedQueueFIFO(t *testing.T) {
	q := NewBoundedQueue[int](4)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := q.Put(ctx, i); err != nil {
			t.Fatalf("Put(%d) failed: %v", i, err)
		}
	}
	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3", q.Len())
	}

	for i := 1; i <= 3; i++ {
		got, err := q.Take(ctx)
		if err != nil {
			t.Fatalf("Take failed: %v", err)
		}
		if got != i {
			t.Errorf("Take = %d, want %d", got, i)
		}
	}
}

func TestBoundedQueueFull(t *testing.T) {
	q := NewBoundedQueue[int](1)
	ctx := context.Background()

	if err := q.Put(ctx, 1); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := q.Put(ctx, 2); !errors.Is(err, subscription.ErrQueueFull) {
		t.Errorf("Put on full queue = %v, want ErrQueueFull", err)
	}

	// Draining makes room again
	if _, err := q.Take(ctx); err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if err := q.Put(ctx, 3); err != nil {
		t.Errorf("Put after drain failed: %v", err)
	}
}

func TestBoundedQueueClose(t *testing.T) {
	q := NewBoundedQueue[int](4)
	ctx := context.Background()

	q.Put(ctx, 1)
	q.Put(ctx, 2)
	q.Close()
	q.Close() // Idempotent

	if err := q.Put(ctx, 3); !errors.Is(err, subscription.ErrQueueClosed) {
		t.Errorf("Put after Close = %v, want ErrQueueClosed", err)
	}

	// Queued items remain takeable after close
	for want := 1; want <= 2; want++ {
		got, err := q.Take(ctx)
		if err != nil {
			t.Fatalf("Take failed: %v", err)
		}
		if got != want {
			t.Errorf("Take = %d, want %d", got, want)
		}
	}

	if _, err := q.Take(ctx); !errors.Is(err, subscription.ErrQueueClosed) {
		t.Errorf("Take on drained closed queue = %v, want ErrQueueClosed", err)
	}
}

func TestBoundedQueueTakeBlocksUntilPut(t *testing.T) {
	q := NewBoundedQueue[string](1)

	done := make(chan string, 1)
	go func() {
		v, err := q.Take(context.Background())
		if err != nil {
			done <- ""
			return
		}
		done <- v
	}()

	time.Sleep(20 * time.Millisecond)
	if err := q.Put(context.Background(), "hello"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	select {
	case v := <-done:
		if v != "hello" {
			t.Errorf("Take = %q, want %q", v, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("Take did not return after Put")
	}
}

func TestBoundedQueueTakeContextCancel(t *testing.T) {
	q := NewBoundedQueue[int](1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := q.Take(ctx)
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Take = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Take did not return after context cancel")
	}
}

func TestBoundedQueueConcurrent(t *testing.T) {
	q := NewBoundedQueue[int](256)
	ctx := context.Background()

	const producers = 4
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := q.Put(ctx, i); err != nil {
					t.Errorf("Put failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	q.Close()

	count := 0
	for {
		if _, err := q.Take(ctx); err != nil {
			break
		}
		count++
	}
	if count != producers*perProducer {
		t.Errorf("took %d items, want %d", count, producers*perProducer)
	}
}
