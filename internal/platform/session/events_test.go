package session

import (
	"testing"
	"time"
)

func TestBroadcaster_DeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	sub1 := b.Subscribe()
	sub2 := b.Subscribe()
	defer sub1.Unsubscribe()
	defer sub2.Unsubscribe()

	b.Publish(Event{Kind: EventSignedIn, Session: &Session{}})

	for i, sub := range []*Subscription{sub1, sub2} {
		select {
		case evt := <-sub.C:
			if evt.Kind != EventSignedIn {
				t.Errorf("subscriber %d: kind = %v, want signed_in", i, evt.Kind)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: no event received", i)
		}
	}
}

func TestBroadcaster_UnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe()
	sub.Unsubscribe()

	// Channel must be closed after unsubscribe.
	if _, ok := <-sub.C; ok {
		t.Error("expected closed channel after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	b.Publish(Event{Kind: EventSignedOut})
}

func TestBroadcaster_UnsubscribeIsIdempotent(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe()
	sub.Unsubscribe()
	sub.Unsubscribe()
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe()
	defer sub.Unsubscribe()

	// Overfill the buffered channel; Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			b.Publish(Event{Kind: EventTokenRefreshed})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestEventKind_String(t *testing.T) {
	tests := []struct {
		kind EventKind
		want string
	}{
		{EventSignedIn, "signed_in"},
		{EventSignedOut, "signed_out"},
		{EventTokenRefreshed, "token_refreshed"},
		{EventKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
