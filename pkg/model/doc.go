// Package model defines the value types exchanged with a device hub:
// device commands, device notifications, and the principal under which
// the client authenticates.
//
// These are pure data types. Serialization to and from the wire belongs
// to the transport layer, not to this package.
package model
