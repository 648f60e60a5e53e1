// Package events is the in-process publish/subscribe bus that couples the
// application state to the view components.
package events

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Name identifies an event channel.
type Name string

const (
	CityChanged     Name = "city:changed"
	WeatherUpdate   Name = "weather:update"
	UnitsChanged    Name = "units:changed"
	HourlyDaySelect Name = "hourly:day-select"
)

// All lists the events exposed to the view layer.
var All = []Name{CityChanged, WeatherUpdate, UnitsChanged, HourlyDaySelect}

// Handler receives the payload of a published event. Payloads are shared
// between subscribers and must be treated as read-only.
type Handler func(payload any) error

// Token identifies a single registration and is used to remove it.
type Token struct {
	ID   uuid.UUID
	Name Name
}

type subscription struct {
	id      uuid.UUID
	handler Handler
}

// Bus is a synchronous, ordered publish/subscribe registry.
// The zero value is not usable; call NewBus.
type Bus struct {
	mu   sync.RWMutex
	subs map[Name][]subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Name][]subscription)}
}

// Subscribe registers handler for name. Registering the same handler twice
// is allowed and results in two invocations per publish.
func (b *Bus) Subscribe(name Name, handler Handler) Token {
	tok := Token{ID: uuid.New(), Name: name}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[name] = append(b.subs[name], subscription{id: tok.ID, handler: handler})
	return tok
}

// Unsubscribe removes a registration. It reports whether the token was found.
func (b *Bus) Unsubscribe(tok Token) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[tok.Name]
	for i, s := range list {
		if s.id != tok.ID {
			continue
		}
		next := make([]subscription, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, tok.Name)
		} else {
			b.subs[tok.Name] = next
		}
		return true
	}
	return false
}

// Len returns the number of handlers registered for name.
func (b *Bus) Len(name Name) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

// Publish invokes every handler registered for name, in registration order,
// on the calling goroutine. A failing or panicking handler does not stop the
// fan-out: failures are logged and returned joined.
func (b *Bus) Publish(name Name, payload any) error {
	b.mu.RLock()
	list := b.subs[name]
	b.mu.RUnlock()

	if len(list) == 0 {
		return nil
	}

	var errs []error
	for _, s := range list {
		if err := invoke(s.handler, payload); err != nil {
			log.Printf("ERROR: events: handler %s for %q failed: %v", s.id, name, err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func invoke(h Handler, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(payload)
}

// ErrPayloadType is returned by typed handlers that receive an unexpected payload.
var ErrPayloadType = errors.New("unexpected payload type")

// Typed adapts a function taking a concrete payload type into a Handler.
func Typed[T any](fn func(T) error) Handler {
	return func(payload any) error {
		v, ok := payload.(T)
		if !ok {
			return fmt.Errorf("%w: got %T", ErrPayloadType, payload)
		}
		return fn(v)
	}
}
