// Package client assembles the hive subscription machinery into a single
// facade.
//
// A Client owns both subscription families: the long-polling registry
// (dedicated watch task per target/names key) and the duplex-channel
// bookkeeping (ledgers, resubscription coordinator, command-update sweeper).
// It also owns the duplex channel lifecycle via connection.Manager and
// replays the ledgers whenever a new channel session is established.
//
// Transports are pluggable: callers provide a subscription.Transport for
// long-polling, a subscription.DuplexTransport plus connection.ConnectFunc
// for the duplex channel, and a subscription.StatusChecker for the
// command-update sweep.
package client
