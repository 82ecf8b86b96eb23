package client

import (
	"context"
	"errors"
	"time"

	"github.com/devicehive/hive-go/pkg/connection"
	"github.com/devicehive/hive-go/pkg/log"
	"github.com/devicehive/hive-go/pkg/model"
	"github.com/devicehive/hive-go/pkg/subscription"
)

var (
	// ErrMissingPoller is returned when no long-polling transport is provided.
	ErrMissingPoller = errors.New("poller transport is required")
	// ErrMissingDuplex is returned when no duplex transport is provided.
	ErrMissingDuplex = errors.New("duplex transport is required")
)

// Dependencies holds the pluggable transports a Client is built around.
type Dependencies struct {
	// Poller issues long-polling requests. Required.
	Poller subscription.Transport

	// Duplex issues subscribe frames on the duplex channel. Required.
	Duplex subscription.DuplexTransport

	// Connect establishes the duplex channel. Optional; when nil the
	// Client never opens a channel and Start skips the connect step.
	Connect connection.ConnectFunc

	// Checker fetches command state for the update sweep. Optional;
	// when nil the sweep loop is disabled.
	Checker subscription.StatusChecker
}

// Client tracks watch registrations across both transports and keeps
// them alive across duplex-channel reconnects.
type Client struct {
	cfg       Config
	principal model.Principal

	registry      *subscription.Registry
	commands      *subscription.Ledger
	notifications *subscription.Ledger
	coordinator   *subscription.Coordinator
	reaper        *subscription.Reaper
	sweeper       *subscription.UpdateSweeper
	channel       *connection.Manager
	updates       *BoundedQueue[*model.DeviceCommand]
}

// New creates a Client for the given principal.
func New(cfg Config, principal model.Principal, deps Dependencies) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Poller == nil {
		return nil, ErrMissingPoller
	}
	if deps.Duplex == nil {
		return nil, ErrMissingDuplex
	}

	c := &Client{
		cfg:           cfg,
		principal:     principal,
		commands:      subscription.NewLedger(),
		notifications: subscription.NewLedger(),
		updates:       NewBoundedQueue[*model.DeviceCommand](cfg.QueueCapacity),
	}

	pool := subscription.NewPool(cfg.PoolSize)
	c.registry = subscription.NewRegistry(pool, deps.Poller, cfg.Logger)
	c.registry.SetPollWait(cfg.PollWait)
	c.coordinator = subscription.NewCoordinator(deps.Duplex, c.commands, c.notifications, cfg.Logger)
	c.reaper = subscription.NewReaper(cfg.ReapInterval, cfg.Logger, c.commands, c.notifications)

	if deps.Checker != nil {
		c.sweeper = subscription.NewUpdateSweeper(c.coordinator, deps.Checker, c.updates, cfg.SweepInterval, cfg.Logger)
	}

	connectFn := deps.Connect
	if connectFn == nil {
		connectFn = func(ctx context.Context) error { return nil }
	}
	c.channel = connection.NewManager(connectFn)
	c.channel.SetAutoReconnect(cfg.AutoReconnect)
	c.channel.OnConnected(func(connectionID string) {
		c.coordinator.ResubscribeAll(c.principal)
		c.trace(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: connectionID,
			Category:     log.CategorySubscription,
			Subscription: &log.SubscriptionEvent{
				Action: log.ActionResubscribe,
				Kind:   log.KindCommand,
			},
		})
	})
	c.channel.OnStateChange(func(old, new connection.State) {
		c.trace(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: c.channel.ConnectionID(),
			Category:     log.CategoryState,
			StateChange: &log.StateChangeEvent{
				OldState: old.String(),
				NewState: new.String(),
			},
		})
	})

	return c, nil
}

// Start opens the duplex channel and starts the background loops.
// A channel connect failure is returned but does not prevent the
// long-polling side from working; the reconnect loop keeps trying
// when auto-reconnect is enabled.
func (c *Client) Start(ctx context.Context) error {
	c.reaper.Start()
	if c.sweeper != nil {
		c.sweeper.Start()
	}
	c.channel.StartReconnectLoop()

	return c.channel.Connect(ctx)
}

// Shutdown stops the background loops, closes the duplex channel, and
// winds down all live watch tasks.
func (c *Client) Shutdown() {
	if c.sweeper != nil {
		c.sweeper.Stop()
	}
	c.reaper.Stop()
	c.channel.Close()
	c.registry.Shutdown(c.cfg.ShutdownGrace)
	c.updates.Close()
}

// WatchCommands starts long-polling for commands directed at the given
// devices. No devices means the server-wide wildcard.
func (c *Client) WatchCommands(since time.Time, names []string, deviceIDs ...string) {
	c.registry.SubscribeCommands(c.cfg.Headers, since, names, deviceIDs...)
	c.traceSubscription(log.ActionSubscribe, log.KindCommand, names, deviceIDs)
}

// StopCommands cancels the long-polling command watch for the given devices.
func (c *Client) StopCommands(names []string, deviceIDs ...string) {
	c.registry.UnsubscribeCommands(names, deviceIDs...)
	c.traceSubscription(log.ActionUnsubscribe, log.KindCommand, names, deviceIDs)
}

// WatchNotifications starts long-polling for notifications from the given
// devices. No devices means the server-wide wildcard.
func (c *Client) WatchNotifications(since time.Time, names []string, deviceIDs ...string) {
	c.registry.SubscribeNotifications(c.cfg.Headers, since, names, deviceIDs...)
	c.traceSubscription(log.ActionSubscribe, log.KindNotification, names, deviceIDs)
}

// StopNotifications cancels the long-polling notification watch for the
// given devices.
func (c *Client) StopNotifications(names []string, deviceIDs ...string) {
	c.registry.UnsubscribeNotifications(names, deviceIDs...)
	c.traceSubscription(log.ActionUnsubscribe, log.KindNotification, names, deviceIDs)
}

// WatchCommandResult starts long-polling for the result of a single command.
func (c *Client) WatchCommandResult(deviceID string, commandID int64) {
	c.registry.SubscribeCommandUpdate(deviceID, commandID)
	c.trace(log.Event{
		Timestamp: time.Now(),
		Category:  log.CategorySubscription,
		DeviceID:  deviceID,
		Subscription: &log.SubscriptionEvent{
			Action:    log.ActionSubscribe,
			Kind:      log.KindCommandUpdate,
			Target:    deviceID,
			CommandID: &commandID,
		},
	})
}

// StopCommandResult cancels the long-polling result watch for a command.
func (c *Client) StopCommandResult(commandID int64) {
	c.registry.UnsubscribeCommandUpdate(commandID)
	c.trace(log.Event{
		Timestamp: time.Now(),
		Category:  log.CategorySubscription,
		Subscription: &log.SubscriptionEvent{
			Action:    log.ActionUnsubscribe,
			Kind:      log.KindCommandUpdate,
			CommandID: &commandID,
		},
	})
}

// RecordCommandSubscription records a duplex-channel command subscription
// so it survives reconnects.
func (c *Client) RecordCommandSubscription(since time.Time, names []string, deviceIDs ...string) {
	c.commands.Record(since, names, deviceIDs...)
	c.traceSubscription(log.ActionSubscribe, log.KindCommand, names, deviceIDs)
}

// RemoveCommandSubscription forgets a duplex-channel command subscription.
func (c *Client) RemoveCommandSubscription(names []string, deviceIDs ...string) {
	c.commands.Remove(names, deviceIDs...)
	c.traceSubscription(log.ActionUnsubscribe, log.KindCommand, names, deviceIDs)
}

// RecordNotificationSubscription records a duplex-channel notification
// subscription so it survives reconnects.
func (c *Client) RecordNotificationSubscription(since time.Time, names []string, deviceIDs ...string) {
	c.notifications.Record(since, names, deviceIDs...)
	c.traceSubscription(log.ActionSubscribe, log.KindNotification, names, deviceIDs)
}

// RemoveNotificationSubscription forgets a duplex-channel notification
// subscription.
func (c *Client) RemoveNotificationSubscription(names []string, deviceIDs ...string) {
	c.notifications.Remove(names, deviceIDs...)
	c.traceSubscription(log.ActionUnsubscribe, log.KindNotification, names, deviceIDs)
}

// TrackCommandResult registers a sent command for the update sweep.
func (c *Client) TrackCommandResult(deviceID string, commandID int64) {
	c.coordinator.RecordCommandUpdate(commandID, deviceID)
}

// NoteCommandDelivered advances the command watermark for the command's
// device and traces the delivery. Call it for every command received on
// the duplex channel.
func (c *Client) NoteCommandDelivered(cmd *model.DeviceCommand) {
	if cmd == nil {
		return
	}
	c.commands.UpdateWatermark(cmd.DeviceID, cmd.Timestamp)
	c.traceDelivery(log.KindCommand, cmd.ID, cmd.Command, cmd.DeviceID)
}

// NoteNotificationDelivered advances the notification watermark for the
// notification's device and traces the delivery.
func (c *Client) NoteNotificationDelivered(n *model.DeviceNotification) {
	if n == nil {
		return
	}
	c.notifications.UpdateWatermark(n.DeviceID, n.Timestamp)
	c.traceDelivery(log.KindNotification, n.ID, n.Notification, n.DeviceID)
}

// CommandResults returns the queue command results are delivered on.
func (c *Client) CommandResults() *BoundedQueue[*model.DeviceCommand] {
	return c.updates
}

// Registry exposes the long-polling registry for direct control.
func (c *Client) Registry() *subscription.Registry {
	return c.registry
}

// Channel exposes the duplex channel manager.
func (c *Client) Channel() *connection.Manager {
	return c.channel
}

// Coordinator exposes the duplex resubscription coordinator.
func (c *Client) Coordinator() *subscription.Coordinator {
	return c.coordinator
}

func (c *Client) trace(event log.Event) {
	if c.cfg.EventLogger == nil {
		return
	}
	c.cfg.EventLogger.Log(event)
}

func (c *Client) traceSubscription(action log.SubscriptionAction, kind log.SubscriptionKind, names, deviceIDs []string) {
	if c.cfg.EventLogger == nil {
		return
	}
	target := subscription.TargetAll
	if len(deviceIDs) == 1 {
		target = deviceIDs[0]
	}
	c.cfg.EventLogger.Log(log.Event{
		Timestamp: time.Now(),
		Category:  log.CategorySubscription,
		Subscription: &log.SubscriptionEvent{
			Action: action,
			Kind:   kind,
			Target: target,
			Names:  names,
		},
	})
}

func (c *Client) traceDelivery(kind log.SubscriptionKind, itemID int64, name, deviceID string) {
	if c.cfg.EventLogger == nil {
		return
	}
	c.cfg.EventLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.channel.ConnectionID(),
		Category:     log.CategoryDelivery,
		DeviceID:     deviceID,
		Delivery: &log.DeliveryEvent{
			Kind:   kind,
			ItemID: itemID,
			Name:   name,
		},
	})
}
