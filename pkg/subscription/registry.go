package subscription

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultShutdownGrace bounds each phase of the two-phase shutdown.
const DefaultShutdownGrace = 5 * time.Second

// Registry owns the long-poll subscriptions: it maps subscription keys
// to the handles of their in-flight watch tasks and enforces at most
// one live task per key.
//
// Each concern (commands, notifications, command updates) has its own
// map and its own exclusive lock. Locks guard map mutation only; watch
// tasks run on the pool, never under a lock.
type Registry struct {
	pool      *Pool
	transport Transport
	logger    *slog.Logger
	pollWait  time.Duration

	commandsMu sync.Mutex
	commands   map[Key]*Handle

	notificationsMu sync.Mutex
	notifications   map[Key]*Handle

	updatesMu sync.Mutex
	updates   map[UpdateKey]*Handle
}

// NewRegistry creates a registry submitting watch tasks for transport
// to pool. logger may be nil.
func NewRegistry(pool *Pool, transport Transport, logger *slog.Logger) *Registry {
	return &Registry{
		pool:          pool,
		transport:     transport,
		logger:        logger,
		commands:      make(map[Key]*Handle),
		notifications: make(map[Key]*Handle),
		updates:       make(map[UpdateKey]*Handle),
	}
}

// SetPollWait sets the server-side wait hint stamped on every poll
// request. Configure before the registry is shared between goroutines.
func (r *Registry) SetPollWait(wait time.Duration) {
	r.pollWait = wait
}

// SubscribeCommands starts command watch tasks. With no targets, one
// task scoped to all devices is started under the sentinel key. With
// targets, each (target, names) key is checked independently: keys
// with a live task are left untouched, the rest get a fresh task.
// The call is idempotent per key and never errors for live entries.
func (r *Registry) SubscribeCommands(headers map[string]string, since time.Time, names []string, targets ...string) {
	r.commandsMu.Lock()
	defer r.commandsMu.Unlock()

	for _, target := range orSentinel(targets) {
		r.watchLocked(r.commands, NewKey(target, names), PollRequest{
			Path:    commandPollPath(target),
			Headers: headers,
			Names:   names,
			Target:  target,
			Since:   since,
			Wait:    r.pollWait,
			Kind:    KindCommand,
		})
	}
}

// SubscribeNotifications starts notification watch tasks with the same
// key semantics as SubscribeCommands.
func (r *Registry) SubscribeNotifications(headers map[string]string, since time.Time, names []string, targets ...string) {
	r.notificationsMu.Lock()
	defer r.notificationsMu.Unlock()

	for _, target := range orSentinel(targets) {
		r.watchLocked(r.notifications, NewKey(target, names), PollRequest{
			Path:    notificationPollPath(target),
			Headers: headers,
			Names:   names,
			Target:  target,
			Since:   since,
			Wait:    r.pollWait,
			Kind:    KindNotification,
		})
	}
}

// UnsubscribeCommands removes command subscriptions for the given keys
// and best-effort-cancels their tasks. With no targets, only the
// sentinel key is removed; per-device subscriptions are untouched.
// Unsubscribing an absent key is a no-op.
func (r *Registry) UnsubscribeCommands(names []string, targets ...string) {
	r.commandsMu.Lock()
	defer r.commandsMu.Unlock()

	for _, target := range orSentinel(targets) {
		r.dropLocked(r.commands, NewKey(target, names))
	}
}

// UnsubscribeNotifications removes notification subscriptions with the
// same key semantics as UnsubscribeCommands.
func (r *Registry) UnsubscribeNotifications(names []string, targets ...string) {
	r.notificationsMu.Lock()
	defer r.notificationsMu.Unlock()

	for _, target := range orSentinel(targets) {
		r.dropLocked(r.notifications, NewKey(target, names))
	}
}

// SubscribeCommandUpdate starts a one-shot watch for the terminal
// update of one command. Follows the same check-then-start rule as the
// other concerns, keyed by (target, commandID).
func (r *Registry) SubscribeCommandUpdate(target string, commandID int64) {
	r.updatesMu.Lock()
	defer r.updatesMu.Unlock()

	key := UpdateKey{Target: target, CommandID: commandID}
	if h := r.updates[key]; h != nil && h.Live() {
		return
	}

	req := PollRequest{
		Path:   commandUpdatePollPath(target, commandID),
		Target: target,
		Wait:   r.pollWait,
		Kind:   KindCommandUpdate,
	}
	h, err := r.pool.Submit(func(ctx context.Context) error { return r.transport.Poll(ctx, req) })
	if err != nil {
		r.debug("watch task rejected", "target", target, "commandId", commandID, "err", err)
		return
	}

	r.updates[key] = h
	r.debug("command update subscription added", "target", target, "commandId", commandID, "handle", h.ID())
}

// UnsubscribeCommandUpdate removes every command-update subscription
// for the given command, cancelling tasks still pending.
func (r *Registry) UnsubscribeCommandUpdate(commandID int64) {
	r.updatesMu.Lock()
	defer r.updatesMu.Unlock()

	for key, h := range r.updates {
		if key.CommandID != commandID {
			continue
		}
		delete(r.updates, key)
		if h != nil && h.Live() {
			h.Cancel()
			r.debug("command update task cancelled", "target", key.Target, "commandId", commandID)
		}
	}
}

// Shutdown stops accepting watch tasks and drains the pool in two
// phases bounded by grace. Failure to terminate is logged, not
// surfaced: remaining tasks are abandoned. Safe to call concurrently
// with in-flight subscribe/unsubscribe calls; late submissions are
// rejected by the pool and tolerated by the subscribe paths.
func (r *Registry) Shutdown(grace time.Duration) {
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}
	if err := r.pool.Shutdown(grace); err != nil {
		r.debug("watch pool did not terminate", "err", err)
	}
}

// CommandSubscriptionCount returns the number of stored command
// subscription entries.
func (r *Registry) CommandSubscriptionCount() int {
	r.commandsMu.Lock()
	defer r.commandsMu.Unlock()
	return len(r.commands)
}

// NotificationSubscriptionCount returns the number of stored
// notification subscription entries.
func (r *Registry) NotificationSubscriptionCount() int {
	r.notificationsMu.Lock()
	defer r.notificationsMu.Unlock()
	return len(r.notifications)
}

// UpdateSubscriptionCount returns the number of stored command-update
// subscription entries.
func (r *Registry) UpdateSubscriptionCount() int {
	r.updatesMu.Lock()
	defer r.updatesMu.Unlock()
	return len(r.updates)
}

// watchLocked applies the check-then-start rule for one key. Caller
// holds the concern's lock.
func (r *Registry) watchLocked(m map[Key]*Handle, key Key, req PollRequest) {
	if h := m[key]; h != nil && h.Live() {
		return
	}

	h, err := r.pool.Submit(func(ctx context.Context) error { return r.transport.Poll(ctx, req) })
	if err != nil {
		r.debug("watch task rejected", "target", key.Target, "kind", req.Kind.String(), "err", err)
		return
	}

	m[key] = h
	r.debug("subscription added", "target", key.Target, "kind", req.Kind.String(), "handle", h.ID())
}

// dropLocked removes one key and cancels its task if still pending.
// Caller holds the concern's lock.
func (r *Registry) dropLocked(m map[Key]*Handle, key Key) {
	h, ok := m[key]
	if !ok {
		return
	}
	delete(m, key)

	if h != nil && h.Live() {
		h.Cancel()
		r.debug("watch task cancelled", "target", key.Target, "handle", h.ID())
	}
}

// orSentinel substitutes the sentinel scope for an absent target list.
func orSentinel(targets []string) []string {
	if len(targets) == 0 {
		return []string{TargetAll}
	}
	return targets
}

// debug logs at debug level when a logger is configured.
func (r *Registry) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
