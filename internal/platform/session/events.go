package session

import "sync"

// EventKind tags the auth event variants.
type EventKind int

const (
	EventSignedIn EventKind = iota
	EventSignedOut
	EventTokenRefreshed
)

func (k EventKind) String() string {
	switch k {
	case EventSignedIn:
		return "signed_in"
	case EventSignedOut:
		return "signed_out"
	case EventTokenRefreshed:
		return "token_refreshed"
	default:
		return "unknown"
	}
}

// Event is an auth state change notification. Session is set for SignedIn and
// TokenRefreshed; it is nil for SignedOut.
type Event struct {
	Kind    EventKind
	Session *Session
}

// Subscription is a handle to an auth event stream. Events arrive on C until
// Unsubscribe is called, after which C is closed.
type Subscription struct {
	C      chan Event
	cancel func()
	once   sync.Once
}

// Unsubscribe detaches the subscription and closes its channel.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// Broadcaster fans auth events out to subscribers. Delivery is best-effort:
// a subscriber that is not draining its channel misses events rather than
// blocking the publisher.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new listener and returns its handle.
func (b *Broadcaster) Subscribe() *Subscription {
	sub := &Subscription{C: make(chan Event, 8)}
	sub.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[sub]; ok {
			delete(b.subs, sub)
			close(sub.C)
		}
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish delivers an event to every current subscriber.
func (b *Broadcaster) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		select {
		case sub.C <- evt:
		default:
		}
	}
}

// Close detaches all subscribers.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
