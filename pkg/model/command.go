package model

import "time"

// DeviceCommand represents a command sent to a device through the hub.
type DeviceCommand struct {
	// ID is the hub-assigned command identifier.
	ID int64

	// DeviceID identifies the device the command is addressed to.
	DeviceID string

	// Command is the command name.
	Command string

	// Parameters holds command parameters, if any.
	Parameters map[string]any

	// Timestamp is the hub-assigned creation time.
	Timestamp time.Time

	// Lifetime is the number of seconds the command stays valid.
	Lifetime int

	// Status is the execution status reported by the device.
	// Empty until the device has processed the command.
	Status string

	// Result holds the execution result reported by the device.
	Result any
}

// Terminal reports whether the command has reached a terminal state.
// The hub leaves Status empty until the device reports an outcome.
func (c *DeviceCommand) Terminal() bool {
	return c != nil && c.Status != ""
}
