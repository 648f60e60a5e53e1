// Package state holds the dashboard's single source of truth: the selected
// city, its coordinates, the last forecast and the unit preferences. Every
// change is announced on the event bus.
package state

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/i474232898/weather-dashboard/internal/events"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// ErrNoCoordinates means no city has been selected yet. SetUnits only logs it.
var ErrNoCoordinates = errors.New("no coordinates set")

// CityChanged is the payload of events.CityChanged.
type CityChanged struct {
	City        string              `json:"city"`
	Coordinates weather.Coordinates `json:"coordinates"`
}

// WeatherUpdate is the payload of events.WeatherUpdate. Data is shared and read-only.
type WeatherUpdate struct {
	City string            `json:"city"`
	Data *weather.Snapshot `json:"data"`
}

// DaySelected is the payload of events.HourlyDaySelect.
type DaySelected struct {
	SelectedDay string `json:"selectedDay"`
}

// AppState is created once at startup and passed to every component that
// needs it. Fields are only mutated through its methods.
type AppState struct {
	bus        *events.Bus
	forecaster weather.Forecaster

	mu     sync.RWMutex
	city   string
	coords *weather.Coordinates
	data   *weather.Snapshot
	units  weather.UnitPreferences

	inflight atomic.Int32
}

// New creates the state with the given initial preferences.
func New(bus *events.Bus, forecaster weather.Forecaster, prefs weather.UnitPreferences) *AppState {
	return &AppState{
		bus:        bus,
		forecaster: forecaster,
		units:      prefs,
	}
}

// Subscribe registers a handler on the state's bus.
func (s *AppState) Subscribe(name events.Name, h events.Handler) events.Token {
	return s.bus.Subscribe(name, h)
}

// Unsubscribe removes a registration made with Subscribe.
func (s *AppState) Unsubscribe(tok events.Token) bool {
	return s.bus.Unsubscribe(tok)
}

// Publish fans payload out to the handlers of name.
func (s *AppState) Publish(name events.Name, payload any) error {
	return s.bus.Publish(name, payload)
}

// SetCity replaces the city and coordinates and publishes events.CityChanged.
// It does not fetch.
func (s *AppState) SetCity(name string, coords weather.Coordinates) {
	s.mu.Lock()
	s.city = name
	c := coords
	s.coords = &c
	s.mu.Unlock()

	_ = s.bus.Publish(events.CityChanged, CityChanged{City: name, Coordinates: coords})
}

// SetWeatherData replaces the snapshot and publishes events.WeatherUpdate.
func (s *AppState) SetWeatherData(snap *weather.Snapshot) {
	s.setWeatherData(snap)
}

// setWeatherData returns the payload it published.
func (s *AppState) setWeatherData(snap *weather.Snapshot) WeatherUpdate {
	s.mu.Lock()
	s.data = snap
	update := WeatherUpdate{City: s.city, Data: snap}
	s.mu.Unlock()

	_ = s.bus.Publish(events.WeatherUpdate, update)
	return update
}

// SetUnits merges patch into the preferences and publishes events.UnitsChanged
// before any network call. With a city selected it re-fetches the forecast
// in the merged units and publishes events.WeatherUpdate (twice, see below).
// A failed fetch is returned; the unit change is not rolled back and the
// previous snapshot stays in place.
func (s *AppState) SetUnits(ctx context.Context, patch weather.UnitsPatch) error {
	s.mu.Lock()
	s.units = patch.Merge(s.units)
	prefs := s.units
	coords := s.coords
	s.mu.Unlock()

	_ = s.bus.Publish(events.UnitsChanged, prefs)

	if coords == nil {
		log.Printf("WARN: state: %v; cannot update weather", ErrNoCoordinates)
		return nil
	}

	snap, err := s.fetch(ctx, *coords, prefs.Units())
	if err != nil {
		return fmt.Errorf("refresh after units change: %w", err)
	}

	update := s.setWeatherData(snap)

	// weather:update goes out a second time with the same payload.
	_ = s.bus.Publish(events.WeatherUpdate, update)
	return nil
}

// LoadCity selects a city and loads its forecast in the current units.
// events.CityChanged is published even if the fetch fails.
func (s *AppState) LoadCity(ctx context.Context, name string, coords weather.Coordinates) error {
	s.SetCity(name, coords)

	snap, err := s.fetch(ctx, coords, s.Units())
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	s.SetWeatherData(snap)
	return nil
}

// Refresh re-fetches the forecast for the selected city.
func (s *AppState) Refresh(ctx context.Context) error {
	s.mu.RLock()
	coords := s.coords
	units := s.units.Units()
	s.mu.RUnlock()

	if coords == nil {
		return ErrNoCoordinates
	}

	snap, err := s.fetch(ctx, *coords, units)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	s.SetWeatherData(snap)
	return nil
}

func (s *AppState) fetch(ctx context.Context, coords weather.Coordinates, units weather.Units) (*weather.Snapshot, error) {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	log.Printf("DEBUG: state: fetching forecast for %s via %s (%+v)", coords, s.forecaster.Name(), units)
	return s.forecaster.Fetch(ctx, coords, units)
}

// Refreshing reports whether a forecast fetch is in flight.
func (s *AppState) Refreshing() bool {
	return s.inflight.Load() > 0
}

// WeatherData returns the last snapshot, or nil if none was loaded.
func (s *AppState) WeatherData() *weather.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Units returns the three measurement dimensions of the preferences.
func (s *AppState) Units() weather.Units {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.units.Units()
}

// SystemUnits returns the aggregate metric/imperial label.
func (s *AppState) SystemUnits() weather.System {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.units.System
}

// Preferences returns a copy of the full preferences.
func (s *AppState) Preferences() weather.UnitPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.units
}

// City returns the selected city and its coordinates.
func (s *AppState) City() (string, weather.Coordinates, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.coords == nil {
		return "", weather.Coordinates{}, false
	}
	return s.city, *s.coords, true
}
