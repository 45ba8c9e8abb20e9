// Package prefs owns the per-profile display preferences: the four unit
// selections and the dashboard theme.
package prefs

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/tempest-display/internal/units"
)

var (
	// ErrInvalid wraps validation failures for preferences and updates.
	ErrInvalid = errors.New("invalid preferences")
	// ErrNotFound is returned by repositories with no stored profile.
	ErrNotFound = errors.New("preferences not found")
)

var validate = validator.New()

// Theme identifies a dashboard visual theme.
type Theme string

const (
	ThemeLiquidGlass     Theme = "liquid-glass"
	ThemeMidnightAurora  Theme = "midnight-aurora"
	ThemeDesertSunset    Theme = "desert-sunset"
	ThemeArcticFrost     Theme = "arctic-frost"
	ThemeNord            Theme = "nord"
	ThemeTokyoNight      Theme = "tokyo-night"
	ThemeCatppuccinMocha Theme = "catppuccin-mocha"
	ThemeTheGrid         Theme = "the-grid"
)

// Themes lists every known theme.
func Themes() []Theme {
	return []Theme{
		ThemeLiquidGlass, ThemeMidnightAurora, ThemeDesertSunset, ThemeArcticFrost,
		ThemeNord, ThemeTokyoNight, ThemeCatppuccinMocha, ThemeTheGrid,
	}
}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	for _, known := range Themes() {
		if t == known {
			return true
		}
	}
	return false
}

// Preferences are the display settings for one profile.
type Preferences struct {
	TemperatureUnit units.TemperatureUnit `json:"temperatureUnit" yaml:"temperatureUnit" validate:"required,oneof=C F"`
	WindUnit        units.WindUnit        `json:"windUnit" yaml:"windUnit" validate:"required,oneof=ms mph kph kts"`
	PressureUnit    units.PressureUnit    `json:"pressureUnit" yaml:"pressureUnit" validate:"required,oneof=mb inHg hPa"`
	RainUnit        units.RainUnit        `json:"rainUnit" yaml:"rainUnit" validate:"required,oneof=mm in"`
	Theme           Theme                 `json:"theme" yaml:"theme" validate:"required,oneof=liquid-glass midnight-aurora desert-sunset arctic-frost nord tokyo-night catppuccin-mocha the-grid"`
}

// Defaults are the preferences of a profile that has never been saved.
func Defaults() Preferences {
	return Preferences{
		TemperatureUnit: units.Fahrenheit,
		WindUnit:        units.MilesPerHour,
		PressureUnit:    units.Millibar,
		RainUnit:        units.Inch,
		Theme:           ThemeNord,
	}
}

// Validate checks every field against its closed set.
func (p Preferences) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Sanitize replaces unknown or empty fields with the matching field of
// fallback, so stored values from older versions never break a display.
func (p Preferences) Sanitize(fallback Preferences) Preferences {
	if !p.TemperatureUnit.Valid() {
		p.TemperatureUnit = fallback.TemperatureUnit
	}
	if !p.WindUnit.Valid() {
		p.WindUnit = fallback.WindUnit
	}
	if !p.PressureUnit.Valid() {
		p.PressureUnit = fallback.PressureUnit
	}
	if !p.RainUnit.Valid() {
		p.RainUnit = fallback.RainUnit
	}
	if !p.Theme.Valid() {
		p.Theme = fallback.Theme
	}
	return p
}

// Update is a partial change; nil fields are left as they are.
type Update struct {
	TemperatureUnit *units.TemperatureUnit `json:"temperatureUnit,omitempty" validate:"omitempty,oneof=C F"`
	WindUnit        *units.WindUnit        `json:"windUnit,omitempty" validate:"omitempty,oneof=ms mph kph kts"`
	PressureUnit    *units.PressureUnit    `json:"pressureUnit,omitempty" validate:"omitempty,oneof=mb inHg hPa"`
	RainUnit        *units.RainUnit        `json:"rainUnit,omitempty" validate:"omitempty,oneof=mm in"`
	Theme           *Theme                 `json:"theme,omitempty" validate:"omitempty,oneof=liquid-glass midnight-aurora desert-sunset arctic-frost nord tokyo-night catppuccin-mocha the-grid"`
}

// Validate checks the fields that are set.
func (u Update) Validate() error {
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Apply returns p with the set fields of u applied.
func (p Preferences) Apply(u Update) Preferences {
	if u.TemperatureUnit != nil {
		p.TemperatureUnit = *u.TemperatureUnit
	}
	if u.WindUnit != nil {
		p.WindUnit = *u.WindUnit
	}
	if u.PressureUnit != nil {
		p.PressureUnit = *u.PressureUnit
	}
	if u.RainUnit != nil {
		p.RainUnit = *u.RainUnit
	}
	if u.Theme != nil {
		p.Theme = *u.Theme
	}
	return p
}
