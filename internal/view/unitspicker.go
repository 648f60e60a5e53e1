package view

import (
	"context"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/events"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// UnitsSource is what the units picker needs from the application state.
type UnitsSource interface {
	Subscribe(name events.Name, h events.Handler) events.Token
	Unsubscribe(tok events.Token) bool
	SetUnits(ctx context.Context, patch weather.UnitsPatch) error
	Preferences() weather.UnitPreferences
}

type UnitsView struct {
	weather.UnitPreferences
	// SwitchLabel names the system the toggle switches to.
	SwitchLabel string `json:"switchLabel"`
}

// UnitsPicker edits the unit preferences. It mirrors units:changed so its
// view is up to date even when the change came from elsewhere.
type UnitsPicker struct {
	src UnitsSource
	tok events.Token

	mu    sync.RWMutex
	prefs weather.UnitPreferences
}

func NewUnitsPicker(src UnitsSource) *UnitsPicker {
	u := &UnitsPicker{src: src, prefs: src.Preferences()}
	u.tok = src.Subscribe(events.UnitsChanged, events.Typed(u.onUnitsChanged))
	return u
}

func (u *UnitsPicker) Close() {
	u.src.Unsubscribe(u.tok)
}

func (u *UnitsPicker) onUnitsChanged(p weather.UnitPreferences) error {
	u.mu.Lock()
	u.prefs = p
	u.mu.Unlock()
	return nil
}

// Set forwards a partial change to the state.
func (u *UnitsPicker) Set(ctx context.Context, patch weather.UnitsPatch) error {
	return u.src.SetUnits(ctx, patch)
}

// Toggle switches every dimension to the other measurement system and
// returns the new system. The preferences change even if the re-fetch fails.
func (u *UnitsPicker) Toggle(ctx context.Context) (weather.System, error) {
	next := weather.SystemImperial
	if u.src.Preferences().System == weather.SystemImperial {
		next = weather.SystemMetric
	}
	return next, u.src.SetUnits(ctx, weather.PatchFor(next))
}

func (u *UnitsPicker) View() UnitsView {
	u.mu.RLock()
	p := u.prefs
	u.mu.RUnlock()

	label := "Switch to Imperial"
	if p.System == weather.SystemImperial {
		label = "Switch to Metric"
	}
	return UnitsView{UnitPreferences: p, SwitchLabel: label}
}
