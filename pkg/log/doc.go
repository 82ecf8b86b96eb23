// Package log provides structured event tracing for the hive client.
//
// This package defines the Logger interface and Event types for capturing
// subscription lifecycle events, deliveries, channel state changes, and
// errors. It is separate from operational logging (slog) - the event trace
// provides a complete machine-readable record for debugging and analysis.
//
// # Basic Usage
//
// Applications configure tracing by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/hive/client.hlog")
//
//	// Both: use MultiLogger
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    log.NewFileLogger("/var/log/hive/client.hlog"),
//	)
//
// # Event Types
//
// Events cover four categories:
//   - Subscription: registration lifecycle (SubscriptionEvent)
//   - Delivery: commands and notifications handed to the application (DeliveryEvent)
//   - State: duplex-channel transitions (StateChangeEvent)
//   - Error: failures at any layer (ErrorEventData)
//
// # File Format
//
// Log files are a CBOR event stream with .hlog extension. Reader provides
// streaming access with optional filtering.
package log
