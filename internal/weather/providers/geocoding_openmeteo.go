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

// DefaultOpenMeteoGeocodingURL is the Open-Meteo geocoding API root.
const DefaultOpenMeteoGeocodingURL = "https://geocoding-api.open-meteo.com"

// OpenMeteoGeocoder implements weather.Geocoder with the keyless
// Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	name    string
	client  *resty.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoGeocoder(baseURL string, timeout time.Duration) *OpenMeteoGeocoder {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoGeocodingURL
	}
	return &OpenMeteoGeocoder{
		name: "openmeteo",
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		circuit: newBreaker("openmeteo-geocoding"),
	}
}

func (p *OpenMeteoGeocoder) Name() string {
	return p.name
}

/* Example result:
{
  "id": 2988507,
  "name": "Paris",
  "latitude": 48.85341,
  "longitude": 2.3488,
  "country_code": "FR",
  "country": "France",
  "admin1": "Île-de-France"
}
*/

type openMeteoPlace struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	CountryCode string  `json:"country_code"`
	Admin1      string  `json:"admin1"`
}

type openMeteoSearchResponse struct {
	Results []openMeteoPlace `json:"results"`
}

func (p *OpenMeteoGeocoder) FindCities(ctx context.Context, query string) ([]weather.CityCandidate, error) {
	body, err := p.circuit.Execute(func() (interface{}, error) {
		resp, err := p.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"name":     query,
				"count":    strconv.Itoa(weather.MaxCandidates),
				"language": "en",
				"format":   "json",
			}).
			Get("/v1/search")
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

	var data openMeteoSearchResponse
	if err := json.Unmarshal(body.([]byte), &data); err != nil {
		return nil, fmt.Errorf("%w: %s: decode geocoding response: %v", weather.ErrNotFound, p.name, err)
	}
	// Open-Meteo omits "results" entirely when nothing matches.
	if len(data.Results) == 0 {
		return nil, fmt.Errorf("%w: %q", weather.ErrNotFound, query)
	}

	places := data.Results
	if len(places) > weather.MaxCandidates {
		places = places[:weather.MaxCandidates]
	}

	out := make([]weather.CityCandidate, 0, len(places))
	for _, pl := range places {
		out = append(out, weather.CityCandidate{
			Name:        pl.Name,
			Country:     pl.CountryCode,
			State:       pl.Admin1,
			Coordinates: weather.Coordinates{Latitude: pl.Latitude, Longitude: pl.Longitude},
		})
	}
	return out, nil
}
