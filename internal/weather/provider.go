package weather

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by geocoders when the upstream reports a failure
// or the result set is empty.
var ErrNotFound = errors.New("city not found")

// MaxCandidates caps the number of geocoding results.
const MaxCandidates = 5

// UpstreamError reports a failed forecast call.
type UpstreamError struct {
	Provider   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: upstream status %d: %v", e.Provider, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: upstream status %d", e.Provider, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Geocoder resolves free-text queries into candidate cities
// (e.g. OpenWeatherMap, Open-Meteo, Google).
type Geocoder interface {
	Name() string
	// FindCities returns at most MaxCandidates results in upstream relevance
	// order, or an error wrapping ErrNotFound.
	FindCities(ctx context.Context, query string) ([]CityCandidate, error)
}

// Forecaster fetches the current/daily/hourly forecast for a point.
type Forecaster interface {
	Name() string
	// Fetch is all-or-nothing; failures are *UpstreamError.
	Fetch(ctx context.Context, coords Coordinates, units Units) (*Snapshot, error)
}
