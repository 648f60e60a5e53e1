package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	ErrEmptyQuery = errors.New("please enter a city name")
	// ErrStaleSearch is returned when a newer search started before this one finished.
	ErrStaleSearch = errors.New("search superseded by a newer query")
)

// NoResultsMessage is shown when the geocoder finds nothing.
const NoResultsMessage = "No search result found!"

// CityLoader selects a city and loads its forecast.
type CityLoader interface {
	LoadCity(ctx context.Context, name string, coords weather.Coordinates) error
}

type Suggestion struct {
	Label string  `json:"label"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// Search resolves free-text queries into city suggestions. Only the
// latest query's results are delivered.
type Search struct {
	geocoder weather.Geocoder
	loader   CityLoader
	seq      atomic.Uint64
}

func NewSearch(g weather.Geocoder, loader CityLoader) *Search {
	return &Search{geocoder: g, loader: loader}
}

// Search looks up query. It returns weather.ErrNotFound when nothing matched
// and ErrStaleSearch when a later call has started in the meantime.
func (s *Search) Search(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	id := s.seq.Add(1)
	found, err := s.geocoder.FindCities(ctx, query)
	if s.seq.Load() != id {
		return nil, ErrStaleSearch
	}
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(found))
	for _, c := range found {
		out = append(out, Suggestion{
			Label: c.Label(),
			Name:  c.DisplayName(),
			Lat:   c.Coordinates.Latitude,
			Lon:   c.Coordinates.Longitude,
		})
	}
	return out, nil
}

// Choose selects a suggestion and loads its forecast.
func (s *Search) Choose(ctx context.Context, name string, coords weather.Coordinates) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyQuery
	}
	if err := s.loader.LoadCity(ctx, name, coords); err != nil {
		return fmt.Errorf("choose %s: %w", name, err)
	}
	return nil
}
