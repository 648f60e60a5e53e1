package view

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Open-Meteo returns local times without an offset when timezone=auto.
const (
	localMinuteLayout = "2006-01-02T15:04"
	dateLayout        = "2006-01-02"
)

// Icon returns the icon name for a WMO weather code.
func Icon(code int) string {
	switch weather.ConditionFromCode(code) {
	case weather.ConditionCloudy, weather.ConditionFog:
		return "cloudy"
	case weather.ConditionRain:
		return "rain"
	case weather.ConditionSnow:
		return "snow"
	case weather.ConditionStorm:
		return "storm"
	default:
		return "sunny"
	}
}

func round(v float64) int {
	return int(math.Round(v))
}

func formatLocal(value, layout, out string) string {
	t, err := time.Parse(layout, value)
	if err != nil {
		return value
	}
	return t.Format(out)
}

// longDate renders "2024-05-01T14:15" as "Wednesday, May 1, 2024".
func longDate(value string) string {
	return formatLocal(value, localMinuteLayout, "Monday, Jan 2, 2006")
}

// shortWeekday renders "2024-05-01" as "Wed".
func shortWeekday(date string) string {
	return formatLocal(date, dateLayout, "Mon")
}

// longWeekday renders "2024-05-01" as "Wednesday".
func longWeekday(date string) string {
	return formatLocal(date, dateLayout, "Monday")
}

// hourLabel renders "2024-05-01T14:00" as "2 PM".
func hourLabel(value string) string {
	return formatLocal(value, localMinuteLayout, "3 PM")
}

func withUnit(v float64, unit string, sep string) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + sep + unit
}

func degrees(v float64) string {
	return fmt.Sprintf("%d°", round(v))
}
