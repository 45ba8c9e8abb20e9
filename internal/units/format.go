package units

import (
	"math"
	"strconv"
)

// FormatTemperature renders a Celsius value rounded to a whole degree,
// e.g. "72°F".
func FormatTemperature(celsius float64, unit TemperatureUnit) string {
	v := ConvertTemperature(celsius, unit)
	// Halves round up, the way the dashboard has always shown them.
	return strconv.Itoa(int(math.Floor(v+0.5))) + unit.Label()
}

// FormatWindSpeed renders a m/s value with one decimal, e.g. "22.4 mph".
func FormatWindSpeed(ms float64, unit WindUnit) string {
	return fixed(ConvertWindSpeed(ms, unit), 1) + " " + unit.Label()
}

// FormatPressure renders a millibar value: two decimals for inHg, one for
// mb and hPa.
func FormatPressure(mb float64, unit PressureUnit) string {
	v := ConvertPressure(mb, unit)
	if unit == InchesOfMercury {
		return fixed(v, 2) + " " + unit.Label()
	}
	return fixed(v, 1) + " " + unit.Label()
}

// FormatRain renders a millimeter value: two decimals for inches, one for mm.
func FormatRain(mm float64, unit RainUnit) string {
	v := ConvertRain(mm, unit)
	if unit == Inch {
		return fixed(v, 2) + " " + unit.Label()
	}
	return fixed(v, 1) + " " + unit.Label()
}

// fixed rounds half away from zero before formatting; strconv alone rounds
// exact halves to even, which would show 1013.25 as 1013.2.
func fixed(v float64, places int) string {
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', places, 64)
}
