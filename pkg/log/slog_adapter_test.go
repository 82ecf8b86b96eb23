package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestSlog() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), &buf
}

func TestSlogAdapterSubscriptionEvent(t *testing.T) {
	logger, buf := newTestSlog()
	adapter := NewSlogAdapter(logger)

	adapter.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-1",
		Category:     CategorySubscription,
		Subscription: &SubscriptionEvent{
			Action: ActionSubscribe,
			Kind:   KindNotification,
			Target: "lamp-4",
			Names:  []string{"brightness"},
		},
	})

	out := buf.String()
	for _, want := range []string{"SUBSCRIPTION", "SUBSCRIBE", "NOTIFICATION", "lamp-4", "conn-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogAdapterDeliveryEvent(t *testing.T) {
	logger, buf := newTestSlog()
	adapter := NewSlogAdapter(logger)

	adapter.Log(Event{
		Timestamp: time.Now(),
		Category:  CategoryDelivery,
		DeviceID:  "lamp-4",
		Delivery:  &DeliveryEvent{Kind: KindCommand, ItemID: 77, Name: "switch-on"},
	})

	out := buf.String()
	for _, want := range []string{"DELIVERY", "item_id=77", "switch-on", "lamp-4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogAdapterStateAndError(t *testing.T) {
	logger, buf := newTestSlog()
	adapter := NewSlogAdapter(logger)

	adapter.Log(Event{
		Timestamp:   time.Now(),
		Category:    CategoryState,
		StateChange: &StateChangeEvent{OldState: "connected", NewState: "reconnecting", Reason: "channel lost"},
	})

	code := 401
	adapter.Log(Event{
		Timestamp: time.Now(),
		Category:  CategoryError,
		Error:     &ErrorEventData{Message: "unauthorized", Code: &code, Context: "poll"},
	})

	out := buf.String()
	for _, want := range []string{"reconnecting", "channel lost", "unauthorized", "error_code=401"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}
