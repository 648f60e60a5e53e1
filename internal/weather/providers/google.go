package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// geocoder keeps its API key in a package variable.
var googleKeyMu sync.Mutex

// GoogleGeocoder implements weather.Geocoder with the Google Geocoding API.
// Google resolves a query to a single best match; country and state come
// from a reverse lookup of that point.
type GoogleGeocoder struct {
	name    string
	apiKey  string
	circuit *gobreaker.CircuitBreaker
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		name:    "google",
		apiKey:  apiKey,
		circuit: newBreaker("google-geocoding"),
	}
}

func (p *GoogleGeocoder) Name() string {
	return p.name
}

func (p *GoogleGeocoder) FindCities(ctx context.Context, query string) ([]weather.CityCandidate, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: google geocoding api key is not configured", weather.ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := p.circuit.Execute(func() (interface{}, error) {
		googleKeyMu.Lock()
		defer googleKeyMu.Unlock()
		geocoder.ApiKey = p.apiKey

		loc, err := geocoder.Geocoding(geocoder.Address{City: query})
		if err != nil {
			return nil, err
		}

		candidate := weather.CityCandidate{
			Name:        query,
			Coordinates: weather.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude},
		}
		addresses, err := geocoder.GeocodingReverse(loc)
		if err == nil && len(addresses) > 0 {
			a := addresses[0]
			if a.City != "" {
				candidate.Name = a.City
			}
			candidate.State = a.State
			candidate.Country = a.Country
		}
		return candidate, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", weather.ErrNotFound, p.name, err)
	}

	return []weather.CityCandidate{result.(weather.CityCandidate)}, nil
}
