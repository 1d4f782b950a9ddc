package events_test

import (
	"errors"
	"testing"

	"tracedb/internal/events"
)

// TestPublishBroadcastsToEverySubscriber checks a published event reaches
// every currently-registered handler.
func TestPublishBroadcastsToEverySubscriber(t *testing.T) {
	bus := events.New()
	var got1, got2 events.Kind
	bus.Subscribe(func(e events.Event) { got1 = e.Kind })
	bus.Subscribe(func(e events.Event) { got2 = e.Kind })

	bus.Publish(events.NewInvalidated())

	if got1 != events.Invalidated || got2 != events.Invalidated {
		t.Fatalf("expected both subscribers to observe Invalidated, got %v and %v", got1, got2)
	}
}

// TestUnsubscribeStopsDelivery checks the returned unsubscribe function
// removes the handler.
func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := events.New()
	calls := 0
	unsub := bus.Subscribe(func(e events.Event) { calls++ })
	bus.Publish(events.NewSourcesChanged())
	unsub()
	bus.Publish(events.NewSourcesChanged())
	if calls != 1 {
		t.Fatalf("expected exactly 1 delivery before unsubscribe, got %d", calls)
	}
}

// TestPublishWithNoSubscribersIsNoOp checks the zero-subscriber case does
// not panic or block.
func TestPublishWithNoSubscribersIsNoOp(t *testing.T) {
	bus := events.New()
	bus.Publish(events.NewSourceError(errors.New("boom")))
}

// TestNewSourceErrorCarriesErr checks the error payload round-trips.
func TestNewSourceErrorCarriesErr(t *testing.T) {
	err := errors.New("boom")
	e := events.NewSourceError(err)
	if e.Kind != events.SourceError || e.Err != err {
		t.Fatalf("expected SourceError event to carry the original error")
	}
}
