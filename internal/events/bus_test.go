package events

import (
	"errors"
	"testing"
)

func TestPublishInvokesHandlersInRegistrationOrder(t *testing.T) {
	bus := NewBus()

	var calls []int
	for i := 0; i < 3; i++ {
		i := i
		bus.Subscribe(CityChanged, func(payload any) error {
			calls = append(calls, i)
			return nil
		})
	}

	if err := bus.Publish(CityChanged, "Paris"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	for i, got := range calls {
		if got != i {
			t.Fatalf("expected call order [0 1 2], got %v", calls)
		}
	}
}

func TestPublishWithoutHandlersIsNoop(t *testing.T) {
	bus := NewBus()
	if err := bus.Publish(WeatherUpdate, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDuplicateRegistrationDoubleInvokes(t *testing.T) {
	bus := NewBus()

	n := 0
	h := func(any) error { n++; return nil }
	bus.Subscribe(UnitsChanged, h)
	bus.Subscribe(UnitsChanged, h)

	_ = bus.Publish(UnitsChanged, nil)
	if n != 2 {
		t.Fatalf("expected 2 invocations, got %d", n)
	}
}

func TestFailingHandlersDoNotStopFanOut(t *testing.T) {
	bus := NewBus()
	boom := errors.New("boom")

	reached := false
	bus.Subscribe(WeatherUpdate, func(any) error { return boom })
	bus.Subscribe(WeatherUpdate, func(any) error { panic("render failed") })
	bus.Subscribe(WeatherUpdate, func(any) error { reached = true; return nil })

	err := bus.Publish(WeatherUpdate, nil)
	if !reached {
		t.Fatalf("expected last handler to run")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to contain boom, got %v", err)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()

	var a, b int
	tokA := bus.Subscribe(CityChanged, func(any) error { a++; return nil })
	bus.Subscribe(CityChanged, func(any) error { b++; return nil })

	if !bus.Unsubscribe(tokA) {
		t.Fatalf("expected token to be found")
	}
	if bus.Unsubscribe(tokA) {
		t.Fatalf("expected second unsubscribe to report false")
	}

	_ = bus.Publish(CityChanged, nil)
	if a != 0 || b != 1 {
		t.Fatalf("expected a=0 b=1, got a=%d b=%d", a, b)
	}
	if got := bus.Len(CityChanged); got != 1 {
		t.Fatalf("expected 1 handler left, got %d", got)
	}
}

func TestTypedRejectsWrongPayload(t *testing.T) {
	bus := NewBus()

	var got string
	bus.Subscribe(HourlyDaySelect, Typed(func(s string) error {
		got = s
		return nil
	}))

	if err := bus.Publish(HourlyDaySelect, "2024-05-02"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2024-05-02" {
		t.Fatalf("expected payload to be delivered, got %q", got)
	}

	err := bus.Publish(HourlyDaySelect, 42)
	if !errors.Is(err, ErrPayloadType) {
		t.Fatalf("expected ErrPayloadType, got %v", err)
	}
}

func TestFeedForwardsAndUnsubscribes(t *testing.T) {
	bus := NewBus()
	feed := NewFeed(bus, 4, CityChanged, UnitsChanged)

	_ = bus.Publish(CityChanged, "Paris")
	_ = bus.Publish(WeatherUpdate, "ignored")
	_ = bus.Publish(UnitsChanged, "imperial")

	first := <-feed.C()
	second := <-feed.C()
	if first.Name != CityChanged || second.Name != UnitsChanged {
		t.Fatalf("unexpected events: %v, %v", first, second)
	}

	feed.Close()
	feed.Close()

	if bus.Len(CityChanged) != 0 || bus.Len(UnitsChanged) != 0 {
		t.Fatalf("expected feed to unsubscribe on close")
	}
	if _, ok := <-feed.C(); ok {
		t.Fatalf("expected channel to be closed")
	}
}
