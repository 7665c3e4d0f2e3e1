// Package eventbus carries named notifications out of the battle core to
// whoever renders them. Events emitted before a listener is registered are
// buffered and replayed on registration.
package eventbus

import (
	"errors"
	"sync"
)

var ErrListenerRegistered = errors.New("listener already registered")

// Event is one emission. Payload is whatever the emitter attached (card ids,
// card slices), never interpreted by the bus.
type Event struct {
	Topic   string
	Payload []interface{}
}

// Listener receives events in emission order.
type Listener func(Event)

type Bus struct {
	mu       sync.Mutex
	pending  []Event
	listener Listener
	// replaying keeps new emissions queued behind the buffered ones until
	// Register has delivered them all.
	replaying bool
}

func New() *Bus {
	return &Bus{}
}

// Emit delivers the event to the listener, or buffers it until one exists
// and has caught up with the buffer.
func (b *Bus) Emit(topic string, payload ...interface{}) {
	ev := Event{Topic: topic, Payload: payload}
	b.mu.Lock()
	l := b.listener
	if l == nil || b.replaying {
		b.pending = append(b.pending, ev)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	l(ev)
}

// Register installs the single listener and replays everything buffered so
// far. Events emitted during the replay, from the listener itself or from
// another goroutine, are delivered after it in emission order. A second
// registration fails so events are never delivered twice.
func (b *Bus) Register(l Listener) error {
	b.mu.Lock()
	if b.listener != nil {
		b.mu.Unlock()
		return ErrListenerRegistered
	}
	b.listener = l
	b.replaying = true
	b.mu.Unlock()
	for {
		b.mu.Lock()
		batch := b.pending
		b.pending = nil
		if len(batch) == 0 {
			b.replaying = false
			b.mu.Unlock()
			return nil
		}
		b.mu.Unlock()
		for _, ev := range batch {
			l(ev)
		}
	}
}

// Drain returns and clears buffered events. Useful for callers that poll
// instead of registering a listener.
func (b *Bus) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}
