package units

const (
	mphPerMS    = 2.23694
	kphPerMS    = 3.6
	knotsPerMS  = 1.94384
	inHgPerMB   = 0.02953
	inchesPerMM = 0.03937
)

// ConvertTemperature converts degrees Celsius to unit.
func ConvertTemperature(celsius float64, unit TemperatureUnit) float64 {
	if unit == Fahrenheit {
		return celsius*9/5 + 32
	}
	return celsius
}

// ConvertWindSpeed converts meters per second to unit.
func ConvertWindSpeed(ms float64, unit WindUnit) float64 {
	switch unit {
	case MilesPerHour:
		return ms * mphPerMS
	case KilometersPerHour:
		return ms * kphPerMS
	case Knots:
		return ms * knotsPerMS
	default:
		return ms
	}
}

// ConvertPressure converts millibar to unit. 1 mb is numerically 1 hPa.
func ConvertPressure(mb float64, unit PressureUnit) float64 {
	if unit == InchesOfMercury {
		return mb * inHgPerMB
	}
	return mb
}

// ConvertRain converts millimeters to unit.
func ConvertRain(mm float64, unit RainUnit) float64 {
	if unit == Inch {
		return mm * inchesPerMM
	}
	return mm
}
