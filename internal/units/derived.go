package units

import (
	"fmt"
	"math"
	"time"

	"github.com/i474232898/tempest-display/internal/weather"
)

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Compass maps a bearing in degrees to a 16-point compass label.
func Compass(deg float64) string {
	i := int(math.Floor(deg/22.5+0.5)) % 16
	if i < 0 {
		i += 16
	}
	return compassPoints[i]
}

// BatteryState is the charge estimate for the station's LTO cell.
type BatteryState struct {
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
}

// Battery estimates charge from cell voltage: about 2.8V full, 2.2V low.
func Battery(volts float64) BatteryState {
	pct := math.Min(100, math.Max(0, (volts-2.2)/0.6*100))
	label := "Good"
	switch {
	case pct < 20:
		label = "Low"
	case pct < 50:
		label = "Fair"
	}
	return BatteryState{Percent: pct, Label: label}
}

// SignalBars returns four bars, 1 for lit and 0 for dark, for a 0-4 strength.
func SignalBars(strength int) [4]int {
	var bars [4]int
	for n := 1; n <= 4; n++ {
		if n <= strength {
			bars[n-1] = 1
		}
	}
	return bars
}

// TimeSince renders the age of an epoch-seconds timestamp relative to now.
func TimeSince(epochSeconds float64, now time.Time) string {
	diff := int64(math.Floor(weather.Timestamp(now) - epochSeconds))
	switch {
	case diff < 60:
		return fmt.Sprintf("%ds ago", diff)
	case diff < 3600:
		return fmt.Sprintf("%dm ago", diff/60)
	default:
		return fmt.Sprintf("%dh ago", diff/3600)
	}
}

// UVLabel is the WHO exposure category for a UV index.
func UVLabel(uv float64) string {
	switch {
	case uv <= 2:
		return "Low"
	case uv <= 5:
		return "Moderate"
	case uv <= 7:
		return "High"
	case uv <= 10:
		return "Very High"
	default:
		return "Extreme"
	}
}

// SolarIntensity buckets solar radiation in W/m².
func SolarIntensity(radiation float64) string {
	switch {
	case radiation == 0:
		return "None"
	case radiation < 200:
		return "Low"
	case radiation < 500:
		return "Moderate"
	case radiation < 800:
		return "High"
	default:
		return "Very High"
	}
}

// Daylight renders the span between sunrise and sunset (epoch seconds),
// e.g. "10h 40m daylight".
func Daylight(sunrise, sunset int64) string {
	total := int64(math.Floor(float64(sunset-sunrise)/60 + 0.5))
	return fmt.Sprintf("%dh %02dm daylight", total/60, total%60)
}

// TrendArrow is the glyph shown next to station pressure.
func TrendArrow(t weather.PressureTrend) string {
	switch t {
	case weather.PressureRising:
		return "↑"
	case weather.PressureFalling:
		return "↓"
	default:
		return "→"
	}
}

// TrendLabel is the human label for a pressure trend.
func TrendLabel(t weather.PressureTrend) string {
	switch t {
	case weather.PressureRising:
		return "Rising"
	case weather.PressureFalling:
		return "Falling"
	default:
		return "Steady"
	}
}

// KilometersToMiles converts a distance for radar range display.
func KilometersToMiles(km float64) float64 {
	return km * 0.621371
}

// LightningDistance renders the average strike distance, or an em dash when
// there were no strikes to measure.
func LightningDistance(count int, km float64) string {
	if count > 0 && km > 0 {
		return fixed(km, 1) + " km"
	}
	return "—"
}
