package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"resty.dev/v3"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultOpenWeatherURL is the OpenWeatherMap API root.
const DefaultOpenWeatherURL = "https://api.openweathermap.org"

// OpenWeatherGeocoder implements weather.Geocoder using OpenWeatherMap's
// direct geocoding API.
type OpenWeatherGeocoder struct {
	name    string
	apiKey  string
	client  *resty.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherGeocoder(baseURL, apiKey string, timeout time.Duration) *OpenWeatherGeocoder {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	return &OpenWeatherGeocoder{
		name:   "openweathermap",
		apiKey: apiKey,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		circuit: newBreaker("openweather-geocoding"),
	}
}

func (p *OpenWeatherGeocoder) Name() string {
	return p.name
}

type openWeatherPlace struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

func (p *OpenWeatherGeocoder) FindCities(ctx context.Context, query string) ([]weather.CityCandidate, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: openweather api key is not configured", weather.ErrNotFound)
	}

	body, err := p.circuit.Execute(func() (interface{}, error) {
		resp, err := p.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"q":     query,
				"limit": strconv.Itoa(weather.MaxCandidates),
				"appid": p.apiKey,
			}).
			Get("/geo/1.0/direct")
		if err != nil {
			return nil, err
		}
		if !resp.IsSuccess() {
			return nil, &statusError{code: resp.StatusCode()}
		}
		return resp.Bytes(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", weather.ErrNotFound, p.name, err)
	}

	var places []openWeatherPlace
	if err := json.Unmarshal(body.([]byte), &places); err != nil {
		return nil, fmt.Errorf("%w: %s: decode geocoding response: %v", weather.ErrNotFound, p.name, err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("%w: %q", weather.ErrNotFound, query)
	}
	if len(places) > weather.MaxCandidates {
		places = places[:weather.MaxCandidates]
	}

	out := make([]weather.CityCandidate, 0, len(places))
	for _, pl := range places {
		out = append(out, weather.CityCandidate{
			Name:        pl.Name,
			Country:     pl.Country,
			State:       pl.State,
			Coordinates: weather.Coordinates{Latitude: pl.Lat, Longitude: pl.Lon},
		})
	}
	return out, nil
}
