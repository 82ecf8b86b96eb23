// Package subscription tracks, deduplicates, and cancels the client's
// long-running watch operations against a device hub.
//
// Two transports are supported through collaborator interfaces:
//
//   - Long polling: the Registry starts one Watch task per subscription
//     key on a bounded worker Pool. Each task performs exactly one poll
//     cycle; resubmission on completion belongs to the caller, not the
//     task. The Registry guarantees at most one live task per key under
//     concurrent subscribe/unsubscribe calls.
//
//   - Duplex channel: the Ledger records subscription intent (target,
//     filter name, watermark) so the Coordinator can replay it against
//     the DuplexTransport after the channel reconnects. Delivery resumes
//     from the last observed watermark per target.
//
// The Reaper periodically evicts watermark entries whose targets no
// longer appear in any ledger pair, bounding memory growth. The
// UpdateSweeper polls outstanding command-update subscriptions and
// delivers terminal results to a bounded queue.
//
// # Locking
//
// Each concern (commands, notifications, command updates) has its own
// exclusive lock. Locks guard map mutation only and are never held
// across a blocking network call. Structural removal always takes the
// exclusive lock; shared access is reserved for pure lookups.
//
// # Lifecycle
//
// Long-poll subscriptions do not survive Registry shutdown. Duplex
// subscriptions survive connection loss by design: the ledger holds the
// intent until an explicit unsubscribe removes it.
package subscription
