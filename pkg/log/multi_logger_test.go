package log

import (
	"testing"
	"time"
)

type captureLogger struct {
	events []Event
}

func (c *captureLogger) Log(event Event) {
	c.events = append(c.events, event)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &captureLogger{}
	b := &captureLogger{}
	multi := NewMultiLogger(a, b)

	event := Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-1",
		Category:     CategorySubscription,
	}
	multi.Log(event)

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("fan-out counts: a=%d b=%d, want 1 each", len(a.events), len(b.events))
	}
	if a.events[0].ConnectionID != "conn-1" {
		t.Errorf("first logger got ConnectionID %q", a.events[0].ConnectionID)
	}
}

func TestMultiLoggerPreservesOrder(t *testing.T) {
	c := &captureLogger{}
	multi := NewMultiLogger(c)

	for i := int64(0); i < 5; i++ {
		multi.Log(Event{
			Category: CategoryDelivery,
			Delivery: &DeliveryEvent{Kind: KindCommand, ItemID: i},
		})
	}

	if len(c.events) != 5 {
		t.Fatalf("got %d events, want 5", len(c.events))
	}
	for i, e := range c.events {
		if e.Delivery.ItemID != int64(i) {
			t.Errorf("event %d has ItemID %d", i, e.Delivery.ItemID)
		}
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	multi := NewMultiLogger()
	multi.Log(Event{Timestamp: time.Now()}) // must not panic
}
