// Package commands implements the hive-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/devicehive/hive-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Category *log.Category
	ConnID   string
	DeviceID string
}

// RunView reads the log file and writes a human-readable rendering to w.
func RunView(path string, filter ViewFilter, w io.Writer) error {
	f := log.Filter{
		ConnectionID: filter.ConnID,
		DeviceID:     filter.DeviceID,
		Category:     filter.Category,
	}

	reader, err := log.NewFilteredReader(path, f)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	connID := shortenConnID(event.ConnectionID)

	var typeLabel string
	switch {
	case event.Subscription != nil:
		typeLabel = event.Subscription.Action.String()
	case event.Delivery != nil:
		typeLabel = event.Delivery.Kind.String()
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [conn:%s] %s %s\n", ts, connID, event.Category.String(), typeLabel)

	if event.DeviceID != "" {
		fmt.Fprintf(w, "  Device: %s\n", event.DeviceID)
	}

	switch {
	case event.Subscription != nil:
		formatSubscriptionDetails(w, event.Subscription)
	case event.Delivery != nil:
		formatDeliveryDetails(w, event.Delivery)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatSubscriptionDetails(w io.Writer, sub *log.SubscriptionEvent) {
	fmt.Fprintf(w, "  Kind: %s\n", sub.Kind.String())
	if sub.Target != "" {
		fmt.Fprintf(w, "  Target: %s\n", sub.Target)
	}
	if len(sub.Names) > 0 {
		fmt.Fprintf(w, "  Names: %s\n", strings.Join(sub.Names, ", "))
	}
	if sub.CommandID != nil {
		fmt.Fprintf(w, "  CommandID: %d\n", *sub.CommandID)
	}
}

func formatDeliveryDetails(w io.Writer, d *log.DeliveryEvent) {
	fmt.Fprintf(w, "  ItemID: %d\n", d.ItemID)
	if d.Name != "" {
		fmt.Fprintf(w, "  Name: %s\n", d.Name)
	}
	if !d.ItemTimestamp.IsZero() {
		fmt.Fprintf(w, "  ItemTime: %s\n", d.ItemTimestamp.UTC().Format("2006-01-02T15:04:05.000000Z"))
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  Transition: %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  State: %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *e.Code)
	}
	if e.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", e.Context)
	}
}

// ParseCategoryFlag parses a category name from a CLI flag.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "subscription":
		return log.CategorySubscription, nil
	case "delivery":
		return log.CategoryDelivery, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q (supported: subscription, delivery, state, error)", s)
	}
}
