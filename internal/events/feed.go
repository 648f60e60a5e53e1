package events

import (
	"log"
	"sync"
)

// Event is a published event as seen by a Feed.
type Event struct {
	Name    Name
	Payload any
}

// Feed forwards events from a Bus into a buffered channel so that a
// long-lived consumer (an SSE stream) can read them on its own goroutine.
// Events are dropped when the buffer is full.
type Feed struct {
	bus    *Bus
	tokens []Token
	ch     chan Event

	mu     sync.Mutex
	closed bool
}

// NewFeed subscribes to names on bus. Close must be called to unsubscribe.
func NewFeed(bus *Bus, buffer int, names ...Name) *Feed {
	f := &Feed{
		bus: bus,
		ch:  make(chan Event, buffer),
	}
	for _, n := range names {
		name := n
		f.tokens = append(f.tokens, bus.Subscribe(name, func(payload any) error {
			f.deliver(Event{Name: name, Payload: payload})
			return nil
		}))
	}
	return f
}

func (f *Feed) deliver(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- ev:
	default:
		log.Printf("WARN: events: feed buffer full, dropping %q", ev.Name)
	}
}

// C returns the receive channel. It is closed by Close.
func (f *Feed) C() <-chan Event {
	return f.ch
}

// Close unsubscribes from the bus and closes the channel. It is idempotent.
func (f *Feed) Close() {
	for _, tok := range f.tokens {
		f.bus.Unsubscribe(tok)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.ch)
}
