// Package connection manages the lifecycle of the persistent duplex
// channel to the device hub.
//
// This package handles:
//   - Exponential backoff for reconnection attempts
//   - Jitter to prevent thundering herd
//   - Channel state tracking
//   - Automatic reconnection on channel loss
//
// # Reconnection Strategy
//
// When the channel is lost, the client uses exponential backoff:
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s, 32s
//  3. Maximum delay: 60 seconds
//  4. Continue at 60s until successful
//  5. Reset to 1s on successful reconnection
//
// # Jitter
//
// To prevent thundering herd when multiple clients reconnect:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// # Resubscription
//
// Each established session is assigned a fresh connection ID, and the
// OnConnected callback fires with it. The subscription coordinator
// hooks this callback to replay the duplex ledger; the callback runs
// without any manager lock held so the coordinator may call back into
// the manager.
package connection
