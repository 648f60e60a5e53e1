package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

type AppConfig struct {
	Port string `yaml:"port" validate:"required,numeric"`

	// GeocoderProvider selects the geocoding backend. Empty picks
	// openweathermap when a key is configured and openmeteo otherwise.
	GeocoderProvider  string `yaml:"geocoderProvider" validate:"omitempty,oneof=openweathermap openweather openmeteo weatherapi google"`
	OpenWeatherAPIKey string `yaml:"openWeatherApiKey"`
	WeatherAPIKey     string `yaml:"weatherApiKey"`
	GoogleAPIKey      string `yaml:"googleGeocodingApiKey"`

	ForecastBaseURL  string `yaml:"forecastBaseUrl" validate:"required,url"`
	GeocodingBaseURL string `yaml:"geocodingBaseUrl" validate:"omitempty,url"`

	HTTPTimeout time.Duration `yaml:"httpTimeout" validate:"gt=0"`

	// RefreshInterval controls how often the selected city is re-fetched.
	RefreshInterval time.Duration `yaml:"refreshInterval" validate:"gt=0"`

	// Recent cities retention.
	RecentMax    int           `yaml:"recentMax" validate:"gte=0"`    // 0 = unlimited
	RecentMaxAge time.Duration `yaml:"recentMaxAge" validate:"gte=0"` // 0 = unlimited

	DefaultUnits weather.System `yaml:"defaultUnits" validate:"oneof=metric imperial"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *AppConfig {
	return &AppConfig{
		Port:            "8080",
		ForecastBaseURL: providers.DefaultOpenMeteoForecastURL,
		HTTPTimeout:     10 * time.Second,
		RefreshInterval: 15 * time.Minute,
		RecentMax:       10,
		RecentMaxAge:    24 * time.Hour,
		DefaultUnits:    weather.SystemMetric,
	}
}

// Load reads configuration from the optional YAML file at CONFIG_PATH and
// then from the environment, which takes precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := Defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) loadEnv() error {
	c.Port = getenvDefault("PORT", c.Port)
	c.GeocoderProvider = getenvDefault("GEOCODER_PROVIDER", c.GeocoderProvider)
	c.OpenWeatherAPIKey = getenvDefault("OPENWEATHER_API_KEY", c.OpenWeatherAPIKey)
	c.WeatherAPIKey = getenvDefault("WEATHERAPI_API_KEY", c.WeatherAPIKey)
	c.GoogleAPIKey = getenvDefault("GOOGLE_GEOCODING_API_KEY", c.GoogleAPIKey)
	c.ForecastBaseURL = getenvDefault("FORECAST_BASE_URL", c.ForecastBaseURL)
	c.GeocodingBaseURL = getenvDefault("GEOCODING_BASE_URL", c.GeocodingBaseURL)

	if v := os.Getenv("DEFAULT_UNITS"); v != "" {
		sys, err := weather.ParseSystem(v)
		if err != nil {
			return fmt.Errorf("invalid DEFAULT_UNITS: %w", err)
		}
		c.DefaultUnits = sys
	}

	var err error
	if c.RecentMax, err = getenvInt("RECENT_MAX", c.RecentMax); err != nil {
		return err
	}
	if c.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", c.HTTPTimeout); err != nil {
		return err
	}
	if c.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", c.RefreshInterval); err != nil {
		return err
	}
	if c.RecentMaxAge, err = getenvDuration("RECENT_MAX_AGE", c.RecentMaxAge); err != nil {
		return err
	}
	return nil
}

// Validate checks the configuration against its struct tags.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config field %s: failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Geocoder returns the geocoder settings derived from the configuration.
func (c *AppConfig) Geocoder() providers.GeocoderSettings {
	return providers.GeocoderSettings{
		Provider:          c.GeocoderProvider,
		BaseURL:           c.GeocodingBaseURL,
		OpenWeatherAPIKey: c.OpenWeatherAPIKey,
		WeatherAPIKey:     c.WeatherAPIKey,
		GoogleAPIKey:      c.GoogleAPIKey,
		Timeout:           c.HTTPTimeout,
	}
}

// Preferences returns the initial unit preferences.
func (c *AppConfig) Preferences() weather.UnitPreferences {
	return weather.PreferencesFor(c.DefaultUnits)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
