package model

import "time"

// DeviceNotification represents a notification emitted by a device.
type DeviceNotification struct {
	// ID is the hub-assigned notification identifier.
	ID int64

	// DeviceID identifies the device that emitted the notification.
	DeviceID string

	// Notification is the notification name.
	Notification string

	// Parameters holds notification parameters, if any.
	Parameters map[string]any

	// Timestamp is the hub-assigned creation time.
	Timestamp time.Time
}
