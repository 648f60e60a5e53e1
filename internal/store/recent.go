package store

import (
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/events"
	"github.com/i474232898/weather-dashboard/internal/state"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// RecentCity is a city the user selected, with the time of the last selection.
type RecentCity struct {
	Name        string              `json:"name"`
	Coordinates weather.Coordinates `json:"coordinates"`
	SelectedAt  time.Time           `json:"selectedAt"`
}

// RecentCities is a concurrency-safe, in-memory list of recently selected
// cities, newest first.
type RecentCities struct {
	mu sync.RWMutex

	entries []RecentCity

	// retention configuration
	maxEntries int           // max number of cities kept
	maxAge     time.Duration // optional max age of an entry

	now func() time.Time
}

// NewRecentCities creates an empty list with optional limits.
// If maxEntries is <= 0, it is treated as unlimited.
func NewRecentCities(maxEntries int, maxAge time.Duration) *RecentCities {
	return &RecentCities{
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Track subscribes the list to city:changed on sub.
func (r *RecentCities) Track(sub interface {
	Subscribe(name events.Name, h events.Handler) events.Token
}) events.Token {
	return sub.Subscribe(events.CityChanged, events.Typed(func(c state.CityChanged) error {
		r.Add(c.City, c.Coordinates)
		return nil
	}))
}

// Add records a selection. A city already in the list is moved to the front.
func (r *RecentCities) Add(name string, coords weather.Coordinates) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]RecentCity, 0, len(r.entries)+1)
	next = append(next, RecentCity{Name: name, Coordinates: coords, SelectedAt: now})
	for _, e := range r.entries {
		if e.Name == name && e.Coordinates == coords {
			continue
		}
		next = append(next, e)
	}

	// Enforce retention by count.
	if r.maxEntries > 0 && len(next) > r.maxEntries {
		next = next[:r.maxEntries]
	}
	r.entries = r.prune(next, now)
}

// List returns the retained cities, newest first.
func (r *RecentCities) List() []RecentCity {
	now := r.now()

	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RecentCity(nil), r.prune(r.entries, now)...)
}

// prune drops entries older than maxAge. Entries are newest first, so the
// first expired one ends the list.
func (r *RecentCities) prune(entries []RecentCity, now time.Time) []RecentCity {
	if r.maxAge <= 0 {
		return entries
	}
	cutoff := now.Add(-r.maxAge)
	for i, e := range entries {
		if e.SelectedAt.Before(cutoff) {
			return entries[:i]
		}
	}
	return entries
}
