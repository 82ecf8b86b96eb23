package subscription

import (
	"sync"
	"time"
)

// Ledger records subscription intent made over the duplex channel so it
// can be replayed after reconnection. It holds the (target, name) pair
// set plus a per-target watermark: the timestamp of the last observed
// event for that target, used as the resume point on replay.
//
// One ledger instance tracks one concern (commands or notifications).
// A single exclusive lock guards both structures; the reaper's
// scan-and-evict pass runs entirely under it so a racing Record can
// never lose a freshly established watermark.
type Ledger struct {
	mu         sync.Mutex
	pairs      map[Pair]struct{}
	watermarks map[string]time.Time
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		pairs:      make(map[Pair]struct{}),
		watermarks: make(map[string]time.Time),
	}
}

// Record adds (target, name) pairs for each named filter, defaulting to
// the sentinel target when no targets are given. With no names a single
// wildcard pair is recorded per target instead.
//
// For named subscriptions a watermark is established per target: since
// if non-zero, otherwise the current time. First write wins; an
// existing watermark is never touched here.
func (l *Ledger) Record(since time.Time, names []string, targets ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, target := range orSentinel(targets) {
		if len(names) == 0 {
			l.pairs[Pair{Target: target}] = struct{}{}
			continue
		}

		for _, name := range names {
			l.pairs[Pair{Target: target, Name: name}] = struct{}{}
		}

		if _, ok := l.watermarks[target]; !ok {
			ts := since
			if ts.IsZero() {
				ts = time.Now()
			}
			l.watermarks[target] = ts
		}
	}
}

// Remove deletes the corresponding pairs so they are not replayed on
// reconnect. With no names the wildcard pair is removed per target.
// Watermarks are not touched; eviction is the reaper's job.
func (l *Ledger) Remove(names []string, targets ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, target := range orSentinel(targets) {
		if len(names) == 0 {
			delete(l.pairs, Pair{Target: target})
			continue
		}
		for _, name := range names {
			delete(l.pairs, Pair{Target: target, Name: name})
		}
	}
}

// UpdateWatermark advances the watermark for target. The update is
// monotonic: a timestamp not strictly later than the stored one is
// ignored. A target with no stored watermark accepts any timestamp.
func (l *Ledger) UpdateWatermark(target string, ts time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.watermarks[target]
	if !ok || ts.After(current) {
		l.watermarks[target] = ts
	}
}

// Watermark returns the stored watermark for target.
func (l *Ledger) Watermark(target string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts, ok := l.watermarks[target]
	return ts, ok
}

// Pairs returns a snapshot of the subscription pair set. Callers use
// the snapshot to issue replay calls without holding the ledger lock.
func (l *Ledger) Pairs() []Pair {
	l.mu.Lock()
	defer l.mu.Unlock()

	pairs := make([]Pair, 0, len(l.pairs))
	for p := range l.pairs {
		pairs = append(pairs, p)
	}
	return pairs
}

// Contains reports whether the pair is recorded.
func (l *Ledger) Contains(p Pair) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.pairs[p]
	return ok
}

// PairCount returns the number of recorded pairs.
func (l *Ledger) PairCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pairs)
}

// WatermarkCount returns the number of stored watermarks.
func (l *Ledger) WatermarkCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.watermarks)
}

// reap evicts watermarks for targets no longer referenced by any pair.
// The whole scan runs under the ledger lock. Returns the number of
// evicted entries.
func (l *Ledger) reap() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	referenced := make(map[string]struct{}, len(l.pairs))
	for p := range l.pairs {
		referenced[p.Target] = struct{}{}
	}

	evicted := 0
	for target := range l.watermarks {
		if _, ok := referenced[target]; !ok {
			delete(l.watermarks, target)
			evicted++
		}
	}
	return evicted
}
