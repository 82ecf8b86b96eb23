package subscription

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultReapInterval is the default period between staleness sweeps.
const DefaultReapInterval = 30 * time.Minute

// Reaper periodically evicts watermark entries whose targets have no
// remaining pair in their ledger, bounding memory growth from stale
// associations. The loop is tied to Stop, not to process lifetime.
type Reaper struct {
	interval time.Duration
	ledgers  []*Ledger
	logger   *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewReaper creates a reaper sweeping the given ledgers every interval.
// A non-positive interval selects DefaultReapInterval. logger may be
// nil.
func NewReaper(interval time.Duration, logger *slog.Logger, ledgers ...*Ledger) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &Reaper{
		interval: interval,
		ledgers:  ledgers,
		logger:   logger,
	}
}

// Start begins the periodic sweep. Starting a running reaper is a
// no-op.
func (r *Reaper) Start() {
	if r.running.Swap(true) {
		return
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.wg.Add(1)
	go r.loop()
}

// Stop stops the periodic sweep and waits for an in-flight pass to
// finish. Stopping a stopped reaper is a no-op.
func (r *Reaper) Stop() {
	if !r.running.Swap(false) {
		return
	}

	r.cancel()
	r.wg.Wait()
}

// RunOnce performs one sweep over all ledgers and returns the number
// of evicted watermark entries.
func (r *Reaper) RunOnce() int {
	evicted := 0
	for _, l := range r.ledgers {
		evicted += l.reap()
	}
	if evicted > 0 && r.logger != nil {
		r.logger.Debug("evicted stale watermarks", "count", evicted)
	}
	return evicted
}

func (r *Reaper) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce()
		}
	}
}
