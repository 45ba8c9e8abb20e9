package units

import (
	"errors"
	"fmt"
)

// ErrUnknownFamily is returned by Measure for an unsupported measurement family.
var ErrUnknownFamily = errors.New("unknown measurement family")

// Family names a measurement family with its own unit selector.
type Family string

const (
	FamilyTemperature Family = "temperature"
	FamilyWind        Family = "wind"
	FamilyPressure    Family = "pressure"
	FamilyRain        Family = "rain"
)

// Reading is a converted value together with its display string.
type Reading struct {
	Family    Family  `json:"family"`
	Canonical float64 `json:"canonical"`
	Unit      string  `json:"unit"`
	Value     float64 `json:"value"`
	Display   string  `json:"display"`
}

// Measure converts and formats a canonical value for the given family and
// unit name. Unknown unit names fall back to the metric base unit.
func Measure(family Family, canonical float64, unit string) (Reading, error) {
	r := Reading{Family: family, Canonical: canonical}

	switch family {
	case FamilyTemperature:
		u := TemperatureUnit(unit)
		if !u.Valid() {
			u = Celsius
		}
		r.Unit, r.Value, r.Display = string(u), ConvertTemperature(canonical, u), FormatTemperature(canonical, u)
	case FamilyWind:
		u := WindUnit(unit)
		if !u.Valid() {
			u = MetersPerSecond
		}
		r.Unit, r.Value, r.Display = string(u), ConvertWindSpeed(canonical, u), FormatWindSpeed(canonical, u)
	case FamilyPressure:
		u := PressureUnit(unit)
		if !u.Valid() {
			u = Millibar
		}
		r.Unit, r.Value, r.Display = string(u), ConvertPressure(canonical, u), FormatPressure(canonical, u)
	case FamilyRain:
		u := RainUnit(unit)
		if !u.Valid() {
			u = Millimeter
		}
		r.Unit, r.Value, r.Display = string(u), ConvertRain(canonical, u), FormatRain(canonical, u)
	default:
		return Reading{}, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	}

	return r, nil
}
