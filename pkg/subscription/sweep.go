package subscription

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// UpdateSweeper is the pull-based alternative to watch tasks for
// command-update subscriptions. Each sweep issues one status check per
// outstanding command and delivers terminal results to the queue.
//
// Delivery is best-effort: a failed status check or a full queue leaves
// the entry in place to be retried on the next sweep. Nothing is
// dropped from the bookkeeping until its result has been handed off.
type UpdateSweeper struct {
	coord   *Coordinator
	checker StatusChecker
	queue   CommandQueue
	logger  *slog.Logger

	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewUpdateSweeper creates a sweeper over coord's command-update
// bookkeeping. interval drives the optional periodic sweep started by
// Start; RunOnce may be called regardless. logger may be nil.
func NewUpdateSweeper(coord *Coordinator, checker StatusChecker, queue CommandQueue, interval time.Duration, logger *slog.Logger) *UpdateSweeper {
	return &UpdateSweeper{
		coord:    coord,
		checker:  checker,
		queue:    queue,
		logger:   logger,
		interval: interval,
	}
}

// RunOnce performs one sweep and returns the number of delivered
// updates.
func (s *UpdateSweeper) RunOnce(ctx context.Context) int {
	delivered := 0

	for commandID, target := range s.coord.CommandUpdates() {
		if ctx.Err() != nil {
			return delivered
		}

		cmd, err := s.checker.CommandStatus(ctx, commandPath(target, commandID))
		if err != nil {
			s.debug("command status check failed", "target", target, "commandId", commandID, "err", err)
			continue
		}
		if !cmd.Terminal() {
			continue
		}

		if err := s.queue.Put(ctx, cmd); err != nil {
			s.debug("unable to deliver command update", "commandId", commandID, "err", err)
			continue
		}

		s.coord.RemoveCommandUpdate(commandID)
		delivered++
	}

	return delivered
}

// Start begins periodic sweeping. A non-positive interval disables the
// loop; RunOnce remains available. Starting a running sweeper is a
// no-op.
func (s *UpdateSweeper) Start() {
	if s.interval <= 0 {
		return
	}
	if s.running.Swap(true) {
		return
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.wg.Add(1)
	go s.loop()
}

// Stop stops periodic sweeping and waits for an in-flight sweep to
// finish. Stopping a stopped sweeper is a no-op.
func (s *UpdateSweeper) Stop() {
	if !s.running.Swap(false) {
		return
	}

	s.cancel()
	s.wg.Wait()
}

func (s *UpdateSweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(s.ctx)
		}
	}
}

func (s *UpdateSweeper) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
