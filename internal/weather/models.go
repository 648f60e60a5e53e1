package weather

import (
	"fmt"
	"strings"
)

// Coordinates is a geographic point. It is replaced wholesale when a new
// city is selected.
type Coordinates struct {
	Latitude  float64 `json:"lat" yaml:"lat" validate:"latitude"`
	Longitude float64 `json:"lon" yaml:"lon" validate:"longitude"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// CityCandidate is a single geocoding search result.
type CityCandidate struct {
	Name        string      `json:"name"`
	Country     string      `json:"country"`
	State       string      `json:"state,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

// DisplayName is the label used for the selected city, e.g. "Paris, Ile-de-France"
// or "Paris, FR" when no state is known.
func (c CityCandidate) DisplayName() string {
	if c.State != "" {
		return c.Name + ", " + c.State
	}
	return c.Name + ", " + c.Country
}

// Label is the full list label, e.g. "Springfield, Illinois, US".
func (c CityCandidate) Label() string {
	parts := []string{c.Name}
	if c.State != "" {
		parts = append(parts, c.State)
	}
	if c.Country != "" {
		parts = append(parts, c.Country)
	}
	return strings.Join(parts, ", ")
}

// Snapshot is the combined current/daily/hourly forecast for one location
// and one unit configuration. Field names follow the Open-Meteo wire format.
type Snapshot struct {
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	Timezone     string       `json:"timezone"`
	Current      Current      `json:"current"`
	CurrentUnits CurrentUnits `json:"current_units"`
	Daily        Daily        `json:"daily"`
	Hourly       Hourly       `json:"hourly"`
}

// Current holds instant readings. Time is local to the location, e.g. "2024-05-01T14:15".
type Current struct {
	Time                string  `json:"time"`
	Temperature         float64 `json:"temperature_2m"`
	RelativeHumidity    float64 `json:"relative_humidity_2m"`
	Precipitation       float64 `json:"precipitation"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	WindSpeed           float64 `json:"wind_speed_10m"`
	WeatherCode         int     `json:"weather_code"`
}

// Date returns the ISO date part of the current reading time.
func (c Current) Date() string {
	date, _, _ := strings.Cut(c.Time, "T")
	return date
}

// CurrentUnits carries the unit labels the upstream used for Current.
type CurrentUnits struct {
	Temperature         string `json:"temperature_2m"`
	RelativeHumidity    string `json:"relative_humidity_2m"`
	Precipitation       string `json:"precipitation"`
	ApparentTemperature string `json:"apparent_temperature"`
	WindSpeed           string `json:"wind_speed_10m"`
}

// Daily holds per-day aggregates as parallel arrays indexed by day.
type Daily struct {
	Time           []string  `json:"time"`
	TemperatureMax []float64 `json:"temperature_2m_max"`
	TemperatureMin []float64 `json:"temperature_2m_min"`
	WeatherCode    []int     `json:"weather_code"`
}

// DailyEntry is one row of Daily.
type DailyEntry struct {
	Date           string  `json:"date"`
	TemperatureMax float64 `json:"temperatureMax"`
	TemperatureMin float64 `json:"temperatureMin"`
	WeatherCode    int     `json:"weatherCode"`
}

// Entries zips the parallel arrays into rows. Validate must have passed.
func (d Daily) Entries() []DailyEntry {
	out := make([]DailyEntry, 0, len(d.Time))
	for i, t := range d.Time {
		out = append(out, DailyEntry{
			Date:           t,
			TemperatureMax: d.TemperatureMax[i],
			TemperatureMin: d.TemperatureMin[i],
			WeatherCode:    d.WeatherCode[i],
		})
	}
	return out
}

// Hourly holds an hourly series spanning several days as parallel arrays.
type Hourly struct {
	Time        []string  `json:"time"`
	Temperature []float64 `json:"temperature_2m"`
	WeatherCode []int     `json:"weather_code"`
}

// HourlyEntry is one row of Hourly.
type HourlyEntry struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	WeatherCode int     `json:"weatherCode"`
}

// Entries zips the parallel arrays into rows. Validate must have passed.
func (h Hourly) Entries() []HourlyEntry {
	out := make([]HourlyEntry, 0, len(h.Time))
	for i, t := range h.Time {
		out = append(out, HourlyEntry{
			Time:        t,
			Temperature: h.Temperature[i],
			WeatherCode: h.WeatherCode[i],
		})
	}
	return out
}

// ForDay returns the entries whose timestamp starts with day ("2006-01-02").
func (h Hourly) ForDay(day string) []HourlyEntry {
	var out []HourlyEntry
	for _, e := range h.Entries() {
		if strings.HasPrefix(e.Time, day) {
			out = append(out, e)
		}
	}
	return out
}

// FirstDay is the date of the first hourly entry, or "" for an empty series.
func (h Hourly) FirstDay() string {
	if len(h.Time) == 0 {
		return ""
	}
	day, _, _ := strings.Cut(h.Time[0], "T")
	return day
}

// Validate checks that the parallel arrays are positionally aligned.
func (s *Snapshot) Validate() error {
	n := len(s.Daily.Time)
	if len(s.Daily.TemperatureMax) != n || len(s.Daily.TemperatureMin) != n || len(s.Daily.WeatherCode) != n {
		return fmt.Errorf("daily series misaligned: time=%d max=%d min=%d code=%d",
			n, len(s.Daily.TemperatureMax), len(s.Daily.TemperatureMin), len(s.Daily.WeatherCode))
	}
	n = len(s.Hourly.Time)
	if len(s.Hourly.Temperature) != n || len(s.Hourly.WeatherCode) != n {
		return fmt.Errorf("hourly series misaligned: time=%d temperature=%d code=%d",
			n, len(s.Hourly.Temperature), len(s.Hourly.WeatherCode))
	}
	return nil
}
