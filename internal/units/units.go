// Package units converts canonical metric measurements into display units
// and formats them for the dashboard.
//
// Every unit type is a closed set of typed string constants. Values outside
// the set are treated as the metric base unit, so a bad preference only ever
// produces a metric reading, never an error.
package units

// TemperatureUnit selects the temperature display unit.
type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "C"
	Fahrenheit TemperatureUnit = "F"
)

// Valid reports whether u is a known temperature unit.
func (u TemperatureUnit) Valid() bool {
	return u == Celsius || u == Fahrenheit
}

// Label is the short display suffix, e.g. "°F".
func (u TemperatureUnit) Label() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// WindUnit selects the wind speed display unit.
type WindUnit string

const (
	MetersPerSecond   WindUnit = "ms"
	MilesPerHour      WindUnit = "mph"
	KilometersPerHour WindUnit = "kph"
	Knots             WindUnit = "kts"
)

// Valid reports whether u is a known wind unit.
func (u WindUnit) Valid() bool {
	switch u {
	case MetersPerSecond, MilesPerHour, KilometersPerHour, Knots:
		return true
	}
	return false
}

// Label is the short display suffix.
func (u WindUnit) Label() string {
	if !u.Valid() {
		return string(MetersPerSecond)
	}
	return string(u)
}

// PressureUnit selects the pressure display unit.
type PressureUnit string

const (
	Millibar        PressureUnit = "mb"
	InchesOfMercury PressureUnit = "inHg"
	Hectopascal     PressureUnit = "hPa"
)

// Valid reports whether u is a known pressure unit.
func (u PressureUnit) Valid() bool {
	switch u {
	case Millibar, InchesOfMercury, Hectopascal:
		return true
	}
	return false
}

// Label is the short display suffix.
func (u PressureUnit) Label() string {
	if !u.Valid() {
		return string(Millibar)
	}
	return string(u)
}

// RainUnit selects the rainfall display unit.
type RainUnit string

const (
	Millimeter RainUnit = "mm"
	Inch       RainUnit = "in"
)

// Valid reports whether u is a known rain unit.
func (u RainUnit) Valid() bool {
	return u == Millimeter || u == Inch
}

// Label is the short display suffix.
func (u RainUnit) Label() string {
	if u == Inch {
		return "in"
	}
	return "mm"
}
