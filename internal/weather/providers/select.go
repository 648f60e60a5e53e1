package providers

import (
	"fmt"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// GeocoderSettings carries what the geocoder implementations need.
type GeocoderSettings struct {
	Provider          string
	BaseURL           string
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GoogleAPIKey      string
	Timeout           time.Duration
}

// NewGeocoder builds the geocoder named by s.Provider. An empty name picks
// OpenWeatherMap when its key is set and Open-Meteo otherwise.
func NewGeocoder(s GeocoderSettings) (weather.Geocoder, error) {
	name := s.Provider
	if name == "" {
		name = "openmeteo"
		if s.OpenWeatherAPIKey != "" {
			name = "openweather"
		}
	}

	switch name {
	case "openweather", "openweathermap":
		return NewOpenWeatherGeocoder(s.BaseURL, s.OpenWeatherAPIKey, s.Timeout), nil
	case "openmeteo":
		return NewOpenMeteoGeocoder(s.BaseURL, s.Timeout), nil
	case "weatherapi":
		return NewWeatherAPIGeocoder(s.BaseURL, s.WeatherAPIKey, s.Timeout), nil
	case "google":
		return NewGoogleGeocoder(s.GoogleAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", name)
	}
}
