package view

import (
	"errors"
	"fmt"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/events"
	"github.com/i474232898/weather-dashboard/internal/state"
)

// ErrUnknownDay is returned when selecting a date that is not in the daily series.
var ErrUnknownDay = errors.New("day not in forecast")

type DayOption struct {
	Date     string `json:"date"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// DayPicker lists the forecast days and announces the day whose hourly
// forecast should be shown.
type DayPicker struct {
	src Source
	tok events.Token

	mu      sync.RWMutex
	options []DayOption
}

func NewDayPicker(src Source) *DayPicker {
	d := &DayPicker{src: src}
	d.tok = src.Subscribe(events.WeatherUpdate, events.Typed(d.onWeatherUpdate))
	return d
}

func (d *DayPicker) Close() {
	d.src.Unsubscribe(d.tok)
}

func (d *DayPicker) onWeatherUpdate(u state.WeatherUpdate) error {
	if u.Data == nil {
		return nil
	}
	today := u.Data.Current.Date()
	opts := make([]DayOption, 0, len(u.Data.Daily.Time))
	for _, date := range u.Data.Daily.Time {
		opts = append(opts, DayOption{
			Date:     date,
			Label:    longWeekday(date),
			Selected: date == today,
		})
	}

	d.mu.Lock()
	d.options = opts
	d.mu.Unlock()
	return nil
}

// Options returns a copy of the current options.
func (d *DayPicker) Options() []DayOption {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]DayOption(nil), d.options...)
}

// Select marks date as selected and publishes hourly:day-select. Handler
// failures are returned but the selection is kept.
func (d *DayPicker) Select(date string) error {
	d.mu.Lock()
	found := false
	next := make([]DayOption, len(d.options))
	for i, o := range d.options {
		o.Selected = o.Date == date
		found = found || o.Selected
		next[i] = o
	}
	if !found {
		d.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownDay, date)
	}
	d.options = next
	d.mu.Unlock()

	return d.src.Publish(events.HourlyDaySelect, state.DaySelected{SelectedDay: date})
}
