package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const forecastBody = `{
  "latitude": 48.86,
  "longitude": 2.34,
  "timezone": "Europe/Paris",
  "current_units": {"temperature_2m": "°F", "relative_humidity_2m": "%", "precipitation": "inch", "apparent_temperature": "°F", "wind_speed_10m": "mp/h"},
  "current": {"time": "2024-05-01T14:15", "temperature_2m": 64.2, "relative_humidity_2m": 55, "precipitation": 0, "apparent_temperature": 62.8, "wind_speed_10m": 7.4, "weather_code": 2},
  "daily": {"time": ["2024-05-01", "2024-05-02"], "temperature_2m_max": [66.1, 70.3], "temperature_2m_min": [50.2, 52.0], "weather_code": [2, 61]},
  "hourly": {"time": ["2024-05-01T00:00", "2024-05-01T01:00", "2024-05-02T00:00"], "temperature_2m": [52.1, 51.8, 53.0], "weather_code": [1, 1, 3]}
}`

func TestOpenMeteoForecasterFetch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k, v := range r.URL.Query() {
			gotQuery[k] = v[0]
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, forecastBody)
	}))
	defer srv.Close()

	p := NewOpenMeteoForecaster(srv.Client(), srv.URL)
	units := weather.PreferencesFor(weather.SystemImperial).Units()

	snap, err := p.Fetch(context.Background(), weather.Coordinates{Latitude: 48.85, Longitude: 2.35}, units)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"latitude":           "48.85",
		"longitude":          "2.35",
		"daily":              "temperature_2m_max,temperature_2m_min,weather_code",
		"current":            "temperature_2m,relative_humidity_2m,precipitation,apparent_temperature,wind_speed_10m,weather_code",
		"hourly":             "temperature_2m,weather_code",
		"timezone":           "auto",
		"temperature_unit":   "fahrenheit",
		"wind_speed_unit":    "mph",
		"precipitation_unit": "inch",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s: expected %q, got %q", k, v, gotQuery[k])
		}
	}

	if snap.Timezone != "Europe/Paris" || snap.Current.WeatherCode != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if len(snap.Daily.Time) != 2 || len(snap.Hourly.Time) != 3 {
		t.Fatalf("unexpected series lengths: daily=%d hourly=%d", len(snap.Daily.Time), len(snap.Hourly.Time))
	}
	if snap.CurrentUnits.WindSpeed != "mp/h" {
		t.Fatalf("expected current units to be decoded, got %+v", snap.CurrentUnits)
	}
}

func TestOpenMeteoForecasterUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":true,"reason":"bad latitude"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewOpenMeteoForecaster(srv.Client(), srv.URL)
	_, err := p.Fetch(context.Background(), weather.Coordinates{}, weather.DefaultPreferences().Units())

	var ue *weather.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *weather.UpstreamError, got %v", err)
	}
	if ue.StatusCode != http.StatusBadRequest || ue.Provider != "openmeteo" {
		t.Fatalf("unexpected upstream error: %+v", ue)
	}
}

func TestOpenMeteoForecasterCancellationKeepsCircuitClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, forecastBody)
	}))
	defer srv.Close()

	p := NewOpenMeteoForecaster(srv.Client(), srv.URL)
	units := weather.DefaultPreferences().Units()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 8; i++ {
		if _, err := p.Fetch(cancelled, weather.Coordinates{}, units); !errors.Is(err, context.Canceled) {
			t.Fatalf("attempt %d: expected context.Canceled, got %v", i, err)
		}
	}

	if _, err := p.Fetch(context.Background(), weather.Coordinates{}, units); err != nil {
		t.Fatalf("expected the circuit to stay closed, got %v", err)
	}
}

func TestOpenMeteoForecasterOpensCircuitOnUpstreamFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewOpenMeteoForecaster(srv.Client(), srv.URL)
	units := weather.DefaultPreferences().Units()

	for i := 0; i < 5; i++ {
		_, _ = p.Fetch(context.Background(), weather.Coordinates{}, units)
	}
	_, err := p.Fetch(context.Background(), weather.Coordinates{}, units)
	if !errors.Is(err, errCircuitOpen) {
		t.Fatalf("expected circuit breaker open, got %v", err)
	}
	if n := hits.Load(); n != 5 {
		t.Fatalf("expected 5 upstream calls, got %d", n)
	}
}

func TestOpenMeteoForecasterRejectsMisalignedSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"daily":{"time":["2024-05-01"],"temperature_2m_max":[],"temperature_2m_min":[1],"weather_code":[1]}}`)
	}))
	defer srv.Close()

	p := NewOpenMeteoForecaster(srv.Client(), srv.URL)
	_, err := p.Fetch(context.Background(), weather.Coordinates{}, weather.DefaultPreferences().Units())

	var ue *weather.UpstreamError
	if !errors.As(err, &ue) || !strings.Contains(err.Error(), "misaligned") {
		t.Fatalf("expected misaligned upstream error, got %v", err)
	}
}

func TestOpenWeatherGeocoder(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    int
		wantErr error
	}{
		{
			name:   "results are capped and mapped",
			status: http.StatusOK,
			body: `[
				{"name":"Paris","lat":48.85,"lon":2.35,"country":"FR","state":"Ile-de-France"},
				{"name":"Paris","lat":33.66,"lon":-95.55,"country":"US","state":"Texas"},
				{"name":"Paris","lat":38.2,"lon":-84.25,"country":"US","state":"Kentucky"},
				{"name":"Paris","lat":36.3,"lon":-88.33,"country":"US","state":"Tennessee"},
				{"name":"Paris","lat":39.6,"lon":-87.7,"country":"US","state":"Illinois"},
				{"name":"Paris","lat":44.2,"lon":-70.5,"country":"US","state":"Maine"}
			]`,
			want: weather.MaxCandidates,
		},
		{name: "empty result", status: http.StatusOK, body: `[]`, wantErr: weather.ErrNotFound},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"cod":401}`, wantErr: weather.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit, gotKey string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/geo/1.0/direct" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				gotLimit = r.URL.Query().Get("limit")
				gotKey = r.URL.Query().Get("appid")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			g := NewOpenWeatherGeocoder(srv.URL, "secret", time.Second)
			got, err := g.FindCities(context.Background(), "Paris")

			if gotLimit != "5" || gotKey != "secret" {
				t.Fatalf("expected limit=5 and appid=secret, got limit=%q appid=%q", gotLimit, gotKey)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if got != nil {
					t.Fatalf("expected no candidates, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d candidates, got %d", tt.want, len(got))
			}
			if got[0].DisplayName() != "Paris, Ile-de-France" || got[0].Coordinates.Latitude != 48.85 {
				t.Fatalf("unexpected first candidate: %+v", got[0])
			}
		})
	}
}

func TestOpenWeatherGeocoderRequiresKey(t *testing.T) {
	g := NewOpenWeatherGeocoder("http://127.0.0.1:0", "", time.Second)
	if _, err := g.FindCities(context.Background(), "Paris"); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestGoogleGeocoderWithoutNetwork(t *testing.T) {
	_, err := NewGoogleGeocoder("").FindCities(context.Background(), "Paris")
	if !errors.Is(err, weather.ErrNotFound) || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewGoogleGeocoder("key").FindCities(ctx, "Paris")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled before any lookup, got %v", err)
	}
}

func TestOpenMeteoGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("name") == "Nowhere" {
			fmt.Fprint(w, `{"generationtime_ms":0.5}`)
			return
		}
		if r.URL.Query().Get("count") != "5" {
			t.Errorf("expected count=5, got %q", r.URL.Query().Get("count"))
		}
		fmt.Fprint(w, `{"results":[{"name":"Berlin","latitude":52.52,"longitude":13.41,"country_code":"DE","country":"Germany","admin1":"Land Berlin"}]}`)
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(srv.URL, time.Second)

	got, err := g.FindCities(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Label() != "Berlin, Land Berlin, DE" {
		t.Fatalf("unexpected candidates: %+v", got)
	}

	if _, err := g.FindCities(context.Background(), "Nowhere"); !errors.Is(err, weather.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWeatherAPIGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" || r.URL.Query().Get("key") != "k" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":1,"name":"London","region":"City of London, Greater London","country":"United Kingdom","lat":51.52,"lon":-0.11}]`)
	}))
	defer srv.Close()

	got, err := NewWeatherAPIGeocoder(srv.URL, "k", time.Second).FindCities(context.Background(), "London")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Country != "United Kingdom" || got[0].Coordinates.Longitude != -0.11 {
		t.Fatalf("unexpected candidate: %+v", got[0])
	}

	_, err = NewWeatherAPIGeocoder(srv.URL, "wrong", time.Second).FindCities(context.Background(), "London")
	if !errors.Is(err, weather.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewGeocoderSelection(t *testing.T) {
	tests := []struct {
		settings GeocoderSettings
		want     string
		wantErr  bool
	}{
		{settings: GeocoderSettings{}, want: "openmeteo"},
		{settings: GeocoderSettings{OpenWeatherAPIKey: "k"}, want: "openweathermap"},
		{settings: GeocoderSettings{Provider: "weatherapi"}, want: "weatherapi"},
		{settings: GeocoderSettings{Provider: "google"}, want: "google"},
		{settings: GeocoderSettings{Provider: "bing"}, wantErr: true},
	}

	for _, tt := range tests {
		g, err := NewGeocoder(tt.settings)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %+v", tt.settings)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if g.Name() != tt.want {
			t.Fatalf("expected %s, got %s", tt.want, g.Name())
		}
	}
}
