package subscription

import (
	"log/slog"
	"sync"

	"github.com/devicehive/hive-go/pkg/model"
)

// Coordinator replays duplex subscription intent after the persistent
// channel reconnects, and keeps the duplex command-update bookkeeping
// consumed by the UpdateSweeper.
//
// The caller's role is passed explicitly: user and access-key
// principals resubscribe per recorded (target, name) pair, carrying
// that target's watermark as the resume point; a device principal
// issues one undifferentiated subscribe for its own commands.
type Coordinator struct {
	commands      *Ledger
	notifications *Ledger
	duplex        DuplexTransport
	logger        *slog.Logger

	updatesMu sync.Mutex
	updates   map[int64]string // commandID -> target
}

// NewCoordinator creates a coordinator replaying the given ledgers
// against duplex. logger may be nil.
func NewCoordinator(duplex DuplexTransport, commands, notifications *Ledger, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		commands:      commands,
		notifications: notifications,
		duplex:        duplex,
		logger:        logger,
		updates:       make(map[int64]string),
	}
}

// ResubscribeAll replays all recorded duplex subscriptions. Safe to
// invoke from a connection-established callback: ledger snapshots are
// taken first and every transport call runs without a ledger lock held.
// An empty ledger is a no-op.
func (c *Coordinator) ResubscribeAll(p model.Principal) {
	c.ResubscribeCommands(p)
	c.ResubscribeNotifications(p)
}

// ResubscribeCommands replays recorded command subscriptions.
func (c *Coordinator) ResubscribeCommands(p model.Principal) {
	pairs := c.commands.Pairs()
	if len(pairs) == 0 {
		return
	}

	switch {
	case p.IsClient():
		for _, pair := range pairs {
			ts, _ := c.commands.Watermark(pair.Target)
			if err := c.duplex.SubscribeCommands(ts, pairNames(pair), pair.Target); err != nil {
				c.debug("command resubscribe failed", "target", pair.Target, "name", pair.Name, "err", err)
			}
		}
	case p.IsDevice():
		// A device has exactly one implicit target: itself.
		ts, _ := c.commands.Watermark(p.DeviceID)
		if err := c.duplex.SubscribeOwnCommands(ts); err != nil {
			c.debug("own-command resubscribe failed", "device", p.DeviceID, "err", err)
		}
	}
}

// ResubscribeNotifications replays recorded notification
// subscriptions. Only client principals subscribe for notifications;
// a device principal emits them and has nothing to replay.
func (c *Coordinator) ResubscribeNotifications(p model.Principal) {
	if !p.IsClient() {
		return
	}

	for _, pair := range c.notifications.Pairs() {
		ts, _ := c.notifications.Watermark(pair.Target)
		if err := c.duplex.SubscribeNotifications(ts, pairNames(pair), pair.Target); err != nil {
			c.debug("notification resubscribe failed", "target", pair.Target, "name", pair.Name, "err", err)
		}
	}
}

// RecordCommandUpdate registers interest in one command's terminal
// update over the duplex channel.
func (c *Coordinator) RecordCommandUpdate(commandID int64, target string) {
	c.updatesMu.Lock()
	defer c.updatesMu.Unlock()
	c.updates[commandID] = target
}

// RemoveCommandUpdate drops the registered interest, typically once the
// update has been delivered.
func (c *Coordinator) RemoveCommandUpdate(commandID int64) {
	c.updatesMu.Lock()
	defer c.updatesMu.Unlock()
	delete(c.updates, commandID)
}

// CommandUpdates returns a snapshot of outstanding command-update
// subscriptions (commandID -> target).
func (c *Coordinator) CommandUpdates() map[int64]string {
	c.updatesMu.Lock()
	defer c.updatesMu.Unlock()

	snapshot := make(map[int64]string, len(c.updates))
	for id, target := range c.updates {
		snapshot[id] = target
	}
	return snapshot
}

// pairNames converts a ledger pair to the names argument of a duplex
// subscribe: nil for the wildcard marker, a single-element set
// otherwise.
func pairNames(p Pair) []string {
	if p.Name == "" {
		return nil
	}
	return []string{p.Name}
}

func (c *Coordinator) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
