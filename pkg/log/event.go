package log

import (
	"time"
)

// Event represents a trace event captured by the subscription machinery.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the duplex-channel session during which the
	// event occurred (UUID). Empty for long-polling events.
	ConnectionID string `cbor:"2,keyasint,omitempty"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// DeviceID is the device the event relates to, when known.
	DeviceID string `cbor:"4,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Subscription *SubscriptionEvent `cbor:"5,keyasint,omitempty"` // Registration lifecycle
	Delivery     *DeliveryEvent     `cbor:"6,keyasint,omitempty"` // Received items
	StateChange  *StateChangeEvent  `cbor:"7,keyasint,omitempty"` // Channel state
	Error        *ErrorEventData    `cbor:"8,keyasint,omitempty"` // Errors at any layer
}

// Category classifies the event type.
type Category uint8

const (
	// CategorySubscription indicates a registration lifecycle event.
	CategorySubscription Category = 0
	// CategoryDelivery indicates a delivered command or notification.
	CategoryDelivery Category = 1
	// CategoryState indicates a channel state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategorySubscription:
		return "SUBSCRIPTION"
	case CategoryDelivery:
		return "DELIVERY"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SubscriptionEvent captures a registration lifecycle transition.
type SubscriptionEvent struct {
	// Action performed on the registration.
	Action SubscriptionAction `cbor:"1,keyasint"`

	// Kind of items the registration covers.
	Kind SubscriptionKind `cbor:"2,keyasint"`

	// Target device ID, or "*" for the wildcard.
	Target string `cbor:"3,keyasint,omitempty"`

	// Names the registration filters on (empty means all).
	Names []string `cbor:"4,keyasint,omitempty"`

	// CommandID is set for command-update registrations.
	CommandID *int64 `cbor:"5,keyasint,omitempty"`
}

// SubscriptionAction indicates what happened to a registration.
type SubscriptionAction uint8

const (
	// ActionSubscribe indicates a registration was added.
	ActionSubscribe SubscriptionAction = 0
	// ActionUnsubscribe indicates a registration was removed.
	ActionUnsubscribe SubscriptionAction = 1
	// ActionResubscribe indicates a registration was replayed after reconnect.
	ActionResubscribe SubscriptionAction = 2
	// ActionReap indicates a registration was evicted by the reaper.
	ActionReap SubscriptionAction = 3
)

// String returns the action name.
func (a SubscriptionAction) String() string {
	switch a {
	case ActionSubscribe:
		return "SUBSCRIBE"
	case ActionUnsubscribe:
		return "UNSUBSCRIBE"
	case ActionResubscribe:
		return "RESUBSCRIBE"
	case ActionReap:
		return "REAP"
	default:
		return "UNKNOWN"
	}
}

// SubscriptionKind indicates what a registration watches.
type SubscriptionKind uint8

const (
	// KindCommand indicates a device-command registration.
	KindCommand SubscriptionKind = 0
	// KindNotification indicates a device-notification registration.
	KindNotification SubscriptionKind = 1
	// KindCommandUpdate indicates a command-result registration.
	KindCommandUpdate SubscriptionKind = 2
)

// String returns the kind name.
func (k SubscriptionKind) String() string {
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

// DeliveryEvent captures a command or notification handed to the application.
type DeliveryEvent struct {
	// Kind of the delivered item.
	Kind SubscriptionKind `cbor:"1,keyasint"`

	// ItemID is the server-assigned identifier of the item.
	ItemID int64 `cbor:"2,keyasint"`

	// Name is the command or notification name.
	Name string `cbor:"3,keyasint,omitempty"`

	// ItemTimestamp is the server-side timestamp of the item.
	ItemTimestamp time.Time `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures duplex-channel lifecycle transitions.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Code is the error code (if applicable).
	Code *int `cbor:"2,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
