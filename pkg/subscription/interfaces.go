package subscription

import (
	"context"
	"time"

	"github.com/devicehive/hive-go/pkg/model"
)

// ResultKind identifies what a poll cycle waits for.
type ResultKind uint8

const (
	// KindCommand polls for device commands.
	KindCommand ResultKind = iota

	// KindNotification polls for device notifications.
	KindNotification

	// KindCommandUpdate polls for a single command's terminal update.
	KindCommandUpdate
)

// String returns the kind name.
func (k ResultKind) String() string {
	switch k {
	case KindCommand:
		return "COMMAND"
	case KindNotification:
		return "NOTIFICATION"
	case KindCommandUpdate:
		return "COMMAND_UPDATE"
	default:
		return "UNKNOWN"
	}
}

// PollRequest describes one long-poll cycle. The path is an opaque hub
// endpoint; serialization and deserialization belong to the transport.
type PollRequest struct {
	// Path is the hub poll endpoint.
	Path string

	// Headers select the sample of results the hub should return.
	Headers map[string]string

	// Names filters by command/notification name. Empty means all.
	Names []string

	// Target is the device scope, or TargetAll.
	Target string

	// Since is the watermark to resume from. Zero means "from now".
	Since time.Time

	// Wait is the server-side wait hint for the poll window. Zero lets
	// the hub apply its default.
	Wait time.Duration

	// Kind identifies what the cycle waits for.
	Kind ResultKind
}

// Transport performs long-poll round trips against the hub. The core
// never holds a lock across a Poll call.
type Transport interface {
	// Poll performs one blocking long-poll cycle: it returns when data
	// has arrived and been delivered, when the poll window elapses, or
	// when ctx is cancelled. Transient failures are the transport's
	// concern; the core only observes that the cycle finished.
	Poll(ctx context.Context, req PollRequest) error
}

// DuplexTransport issues subscribe commands over the persistent
// channel. Calls are fire-and-forget from the core's perspective;
// errors are logged, never retried by the core.
type DuplexTransport interface {
	// SubscribeCommands subscribes for commands addressed to target,
	// resuming from since. Empty names means all commands.
	SubscribeCommands(since time.Time, names []string, target string) error

	// SubscribeOwnCommands subscribes a device principal for commands
	// addressed to itself, resuming from since.
	SubscribeOwnCommands(since time.Time) error

	// SubscribeNotifications subscribes for notifications from target,
	// resuming from since. Empty names means all notifications.
	SubscribeNotifications(since time.Time, names []string, target string) error
}

// StatusChecker performs one synchronous command status request.
type StatusChecker interface {
	// CommandStatus fetches the command at the given hub path.
	CommandStatus(ctx context.Context, path string) (*model.DeviceCommand, error)
}

// CommandQueue accepts delivered command results. Put may block until
// ctx is cancelled or fail when the queue is full; both are tolerated
// by callers, which leave state in place for retry.
type CommandQueue interface {
	Put(ctx context.Context, cmd *model.DeviceCommand) error
}
