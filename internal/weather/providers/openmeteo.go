package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultOpenMeteoForecastURL is the public Open-Meteo forecast endpoint.
const DefaultOpenMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"

const (
	openMeteoDaily   = "temperature_2m_max,temperature_2m_min,weather_code"
	openMeteoCurrent = "temperature_2m,relative_humidity_2m,precipitation,apparent_temperature,wind_speed_10m,weather_code"
	openMeteoHourly  = "temperature_2m,weather_code"
)

// OpenMeteoForecaster implements weather.Forecaster for Open-Meteo.
type OpenMeteoForecaster struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoForecaster creates the forecaster. An empty baseURL selects
// the public endpoint.
func NewOpenMeteoForecaster(client *http.Client, baseURL string) *OpenMeteoForecaster {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoForecastURL
	}
	return &OpenMeteoForecaster{
		name:    "openmeteo",
		baseURL: baseURL,
		client:  client,
		circuit: newBreaker("openmeteo-forecast"),
	}
}

func (p *OpenMeteoForecaster) Name() string {
	return p.name
}

// Fetch requests current, daily and hourly data in one call.
func (p *OpenMeteoForecaster) Fetch(ctx context.Context, coords weather.Coordinates, units weather.Units) (*weather.Snapshot, error) {
	req, err := http.NewRequest(http.MethodGet, p.baseURL+"?"+forecastQuery(coords, units).Encode(), nil)
	if err != nil {
		return nil, &weather.UpstreamError{Provider: p.name, Err: err}
	}

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return nil, &weather.UpstreamError{Provider: p.name, StatusCode: statusOf(err), Err: err}
	}
	defer resp.Body.Close()

	var snap weather.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, &weather.UpstreamError{Provider: p.name, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode forecast: %w", err)}
	}
	if err := snap.Validate(); err != nil {
		return nil, &weather.UpstreamError{Provider: p.name, StatusCode: resp.StatusCode, Err: err}
	}
	return &snap, nil
}

func forecastQuery(coords weather.Coordinates, units weather.Units) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	values.Set("daily", openMeteoDaily)
	values.Set("current", openMeteoCurrent)
	values.Set("hourly", openMeteoHourly)
	values.Set("timezone", "auto")
	values.Set("temperature_unit", string(units.Temperature))
	values.Set("wind_speed_unit", string(units.Wind))
	values.Set("precipitation_unit", string(units.Precipitation))
	return values
}
