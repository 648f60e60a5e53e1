package weather

import "fmt"

// System is the aggregate metric/imperial label.
type System string

const (
	SystemMetric   System = "metric"
	SystemImperial System = "imperial"
)

type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "celsius"
	Fahrenheit TemperatureUnit = "fahrenheit"
)

type WindUnit string

const (
	KilometresPerHour WindUnit = "kmh"
	MilesPerHour      WindUnit = "mph"
)

type PrecipitationUnit string

const (
	Millimetres PrecipitationUnit = "mm"
	Inches      PrecipitationUnit = "inch"
)

// Units are the three measurement dimensions sent to the forecast upstream.
type Units struct {
	Temperature   TemperatureUnit   `json:"temperature"`
	Wind          WindUnit          `json:"wind"`
	Precipitation PrecipitationUnit `json:"precipitation"`
}

// UnitPreferences is the user's unit selection. System is a label only: the
// three measurement fields may be changed independently of it.
type UnitPreferences struct {
	System        System            `json:"metricSystem" yaml:"metricSystem"`
	Temperature   TemperatureUnit   `json:"temperatureSystem" yaml:"temperatureSystem"`
	Wind          WindUnit          `json:"windSystem" yaml:"windSystem"`
	Precipitation PrecipitationUnit `json:"precipitationSystem" yaml:"precipitationSystem"`
}

// DefaultPreferences returns the metric defaults.
func DefaultPreferences() UnitPreferences {
	return PreferencesFor(SystemMetric)
}

// PreferencesFor returns the full preference set of a system.
func PreferencesFor(sys System) UnitPreferences {
	if sys == SystemImperial {
		return UnitPreferences{
			System:        SystemImperial,
			Temperature:   Fahrenheit,
			Wind:          MilesPerHour,
			Precipitation: Inches,
		}
	}
	return UnitPreferences{
		System:        SystemMetric,
		Temperature:   Celsius,
		Wind:          KilometresPerHour,
		Precipitation: Millimetres,
	}
}

// ParseSystem accepts "metric" or "imperial".
func ParseSystem(s string) (System, error) {
	switch System(s) {
	case SystemMetric, SystemImperial:
		return System(s), nil
	default:
		return "", fmt.Errorf("unknown unit system %q", s)
	}
}

// Units projects the preferences onto the three measurement dimensions.
func (p UnitPreferences) Units() Units {
	return Units{
		Temperature:   p.Temperature,
		Wind:          p.Wind,
		Precipitation: p.Precipitation,
	}
}

// UnitsPatch is a partial update of UnitPreferences. Nil fields are left as is.
type UnitsPatch struct {
	System        *System            `json:"metricSystem,omitempty" validate:"omitempty,oneof=metric imperial"`
	Temperature   *TemperatureUnit   `json:"temperatureSystem,omitempty" validate:"omitempty,oneof=celsius fahrenheit"`
	Wind          *WindUnit          `json:"windSystem,omitempty" validate:"omitempty,oneof=kmh mph"`
	Precipitation *PrecipitationUnit `json:"precipitationSystem,omitempty" validate:"omitempty,oneof=mm inch"`
}

// Merge applies the patch on top of p (shallow merge).
func (u UnitsPatch) Merge(p UnitPreferences) UnitPreferences {
	if u.System != nil {
		p.System = *u.System
	}
	if u.Temperature != nil {
		p.Temperature = *u.Temperature
	}
	if u.Wind != nil {
		p.Wind = *u.Wind
	}
	if u.Precipitation != nil {
		p.Precipitation = *u.Precipitation
	}
	return p
}

// Empty reports whether the patch changes nothing.
func (u UnitsPatch) Empty() bool {
	return u.System == nil && u.Temperature == nil && u.Wind == nil && u.Precipitation == nil
}

// PatchFor builds a patch that switches every field to the given system.
func PatchFor(sys System) UnitsPatch {
	p := PreferencesFor(sys)
	return UnitsPatch{
		System:        &p.System,
		Temperature:   &p.Temperature,
		Wind:          &p.Wind,
		Precipitation: &p.Precipitation,
	}
}
