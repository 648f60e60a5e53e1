package view

import (
	"sync"

	"github.com/i474232898/weather-dashboard/internal/events"
	"github.com/i474232898/weather-dashboard/internal/state"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Source is the part of the application state the view components read.
type Source interface {
	Subscribe(name events.Name, h events.Handler) events.Token
	Unsubscribe(tok events.Token) bool
	Publish(name events.Name, payload any) error
	WeatherData() *weather.Snapshot
	Refreshing() bool
}

type CurrentView struct {
	Time                string `json:"time"`
	DisplayTime         string `json:"displayTime"`
	Icon                string `json:"icon"`
	Description         string `json:"description"`
	Temperature         string `json:"temperature"`
	ApparentTemperature string `json:"apparentTemperature"`
	Humidity            string `json:"humidity"`
	Wind                string `json:"wind"`
	Precipitation       string `json:"precipitation"`
}

type DailyView struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Icon    string `json:"icon"`
	Max     string `json:"max"`
	Min     string `json:"min"`
}

type HourlyView struct {
	Time        string `json:"time"`
	DisplayTime string `json:"displayTime"`
	Icon        string `json:"icon"`
	Temperature string `json:"temperature"`
}

// PanelView is the rendered state of the weather panel.
type PanelView struct {
	Loading     bool         `json:"loading"`
	City        string       `json:"city"`
	Current     *CurrentView `json:"current,omitempty"`
	Daily       []DailyView  `json:"daily"`
	SelectedDay string       `json:"selectedDay"`
	Hourly      []HourlyView `json:"hourly"`
}

// Panel renders the current, daily and hourly forecast. It re-renders on
// weather:update and re-renders only the hourly list on hourly:day-select.
type Panel struct {
	src    Source
	tokens []events.Token

	mu   sync.RWMutex
	view PanelView
}

// NewPanel creates the panel and subscribes it to src.
func NewPanel(src Source) *Panel {
	p := &Panel{src: src}
	p.tokens = append(p.tokens,
		src.Subscribe(events.WeatherUpdate, events.Typed(p.onWeatherUpdate)),
		src.Subscribe(events.HourlyDaySelect, events.Typed(p.onDaySelect)),
	)
	return p
}

// Close unsubscribes the panel.
func (p *Panel) Close() {
	for _, tok := range p.tokens {
		p.src.Unsubscribe(tok)
	}
}

func (p *Panel) onWeatherUpdate(u state.WeatherUpdate) error {
	if u.Data == nil {
		return nil
	}
	current := renderCurrent(u.Data)
	daily := renderDaily(u.Data.Daily)
	day := u.Data.Hourly.FirstDay()
	hourly := renderHourly(u.Data.Hourly, day)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.view = PanelView{
		City:        u.City,
		Current:     &current,
		Daily:       daily,
		SelectedDay: day,
		Hourly:      hourly,
	}
	return nil
}

func (p *Panel) onDaySelect(d state.DaySelected) error {
	data := p.src.WeatherData()
	if data == nil {
		return nil
	}
	day := d.SelectedDay
	if day == "" {
		day = data.Hourly.FirstDay()
	}
	hourly := renderHourly(data.Hourly, day)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.view.SelectedDay = day
	p.view.Hourly = hourly
	return nil
}

// View returns the last rendered panel. Rendered slices are never modified
// in place, so the copy can be handed out.
func (p *Panel) View() PanelView {
	p.mu.RLock()
	v := p.view
	p.mu.RUnlock()

	v.Loading = p.src.Refreshing()
	return v
}

// Ready reports whether a forecast has been rendered.
func (p *Panel) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.view.Current != nil
}

func renderCurrent(s *weather.Snapshot) CurrentView {
	c, u := s.Current, s.CurrentUnits
	return CurrentView{
		Time:                c.Time,
		DisplayTime:         longDate(c.Time),
		Icon:                Icon(c.WeatherCode),
		Description:         weather.Describe(c.WeatherCode),
		Temperature:         degrees(c.Temperature),
		ApparentTemperature: degrees(c.ApparentTemperature),
		Humidity:            withUnit(c.RelativeHumidity, u.RelativeHumidity, ""),
		Wind:                withUnit(c.WindSpeed, u.WindSpeed, " "),
		Precipitation:       withUnit(c.Precipitation, u.Precipitation, " "),
	}
}

func renderDaily(d weather.Daily) []DailyView {
	entries := d.Entries()
	out := make([]DailyView, 0, len(entries))
	for _, e := range entries {
		out = append(out, DailyView{
			Date:    e.Date,
			Weekday: shortWeekday(e.Date),
			Icon:    Icon(e.WeatherCode),
			Max:     degrees(e.TemperatureMax),
			Min:     degrees(e.TemperatureMin),
		})
	}
	return out
}

func renderHourly(h weather.Hourly, day string) []HourlyView {
	entries := h.ForDay(day)
	out := make([]HourlyView, 0, len(entries))
	for _, e := range entries {
		out = append(out, HourlyView{
			Time:        e.Time,
			DisplayTime: hourLabel(e.Time),
			Icon:        Icon(e.WeatherCode),
			Temperature: degrees(e.Temperature),
		})
	}
	return out
}
