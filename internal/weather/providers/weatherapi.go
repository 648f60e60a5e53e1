package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"resty.dev/v3"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultWeatherAPIURL is the WeatherAPI.com API root.
const DefaultWeatherAPIURL = "https://api.weatherapi.com/v1"

// WeatherAPIGeocoder implements weather.Geocoder with WeatherAPI.com's
// search/autocomplete endpoint.
type WeatherAPIGeocoder struct {
	name    string
	apiKey  string
	client  *resty.Client
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIGeocoder(baseURL, apiKey string, timeout time.Duration) *WeatherAPIGeocoder {
	if baseURL == "" {
		baseURL = DefaultWeatherAPIURL
	}
	return &WeatherAPIGeocoder{
		name:   "weatherapi",
		apiKey: apiKey,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		circuit: newBreaker("weatherapi-geocoding"),
	}
}

func (p *WeatherAPIGeocoder) Name() string {
	return p.name
}

type weatherAPIPlace struct {
	Name    string  `json:"name"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (p *WeatherAPIGeocoder) FindCities(ctx context.Context, query string) ([]weather.CityCandidate, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: weatherapi api key is not configured", weather.ErrNotFound)
	}

	body, err := p.circuit.Execute(func() (interface{}, error) {
		resp, err := p.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"key": p.apiKey,
				"q":   query,
			}).
			Get("/search.json")
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

	var places []weatherAPIPlace
	if err := json.Unmarshal(body.([]byte), &places); err != nil {
		return nil, fmt.Errorf("%w: %s: decode search response: %v", weather.ErrNotFound, p.name, err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("%w: %q", weather.ErrNotFound, query)
	}
	// The endpoint has no limit parameter.
	if len(places) > weather.MaxCandidates {
		places = places[:weather.MaxCandidates]
	}

	out := make([]weather.CityCandidate, 0, len(places))
	for _, pl := range places {
		out = append(out, weather.CityCandidate{
			Name:        pl.Name,
			Country:     pl.Country,
			State:       pl.Region,
			Coordinates: weather.Coordinates{Latitude: pl.Lat, Longitude: pl.Lon},
		})
	}
	return out, nil
}
