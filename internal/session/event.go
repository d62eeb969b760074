package session

import "sync"

// EventType classifies session lifecycle events.
type EventType int

const (
	EventLogin  EventType = iota // a login call succeeded
	EventLogout                  // a logout completed
)

// Event signals that session state changed. The profile is advisory:
// the store can briefly disagree with the event, so consumers re-read
// the store instead of trusting the payload.
type Event struct {
	Type    EventType
	Profile Profile
}

// Subscription identifies a registered handler so it can be removed.
type Subscription int

// Bus is a synchronous, in-process publish/subscribe channel for session
// events. Delivery is best-effort and at-most-once: a publish with no
// subscribers is lost, and nothing is replayed. Handlers run in
// subscription order on the publisher's goroutine.
//
// Bus is instantiable rather than process-global so tests can own
// independent instances.
type Bus struct {
	mu   sync.Mutex
	next Subscription
	subs []busEntry
}

type busEntry struct {
	id Subscription
	fn func(Event)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler and returns a handle for Unsubscribe.
func (b *Bus) Subscribe(fn func(Event)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.subs = append(b.subs, busEntry{id: b.next, fn: fn})
	return b.next
}

// Unsubscribe removes a handler. Unknown handles are ignored.
func (b *Bus) Unsubscribe(id Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.subs {
		if e.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to current subscribers, in subscription
// order. The subscriber list is snapshotted first so handlers may
// subscribe or unsubscribe without deadlocking.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	snapshot := make([]busEntry, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, e := range snapshot {
		e.fn(ev)
	}
}

func (b *Bus) subscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
