package dashboard

import (
	"fmt"
	"math"
	"time"

	"github.com/i474232898/tempest-display/internal/prefs"
	"github.com/i474232898/tempest-display/internal/units"
	"github.com/i474232898/tempest-display/internal/weather"
)

// Display is an observation rendered in the selected units.
type Display struct {
	Timestamp float64 `json:"timestamp"`
	Updated   string  `json:"updated"`

	AirTemperature     string `json:"airTemperature"`
	FeelsLike          string `json:"feelsLike"`
	DewPoint           string `json:"dewPoint"`
	WetBulbTemperature string `json:"wetBulbTemperature"`
	HeatIndex          string `json:"heatIndex"`
	WindChill          string `json:"windChill"`
	RelativeHumidity   string `json:"relativeHumidity"`

	WindAvg       string  `json:"windAvg"`
	WindGust      string  `json:"windGust"`
	WindLull      string  `json:"windLull"`
	WindDirection float64 `json:"windDirection"`
	WindCompass   string  `json:"windCompass"`

	StationPressure string `json:"stationPressure"`
	PressureArrow   string `json:"pressureArrow"`
	PressureTrend   string `json:"pressureTrend"`

	RainAccumulated          string `json:"rainAccumulated"`
	LocalDayRainAccumulation string `json:"localDayRainAccumulation"`
	PrecipitationType        string `json:"precipitationType"`

	UVIndex           float64 `json:"uvIndex"`
	UVLabel           string  `json:"uvLabel"`
	SolarRadiation    float64 `json:"solarRadiation"`
	SolarIntensity    string  `json:"solarIntensity"`
	LightningCount    int     `json:"lightningCount"`
	LightningDistance string  `json:"lightningDistance"`

	Battery units.BatteryState `json:"battery"`
	Units   prefs.Preferences  `json:"units"`
}

// Render formats obs for p. now is used for the "updated" age.
func Render(obs weather.Observation, p prefs.Preferences, now time.Time) Display {
	temp := func(c float64) string { return units.FormatTemperature(c, p.TemperatureUnit) }
	wind := func(ms float64) string { return units.FormatWindSpeed(ms, p.WindUnit) }
	rain := func(mm float64) string { return units.FormatRain(mm, p.RainUnit) }

	return Display{
		Timestamp: obs.Timestamp,
		Updated:   units.TimeSince(obs.Timestamp, now),

		AirTemperature:     temp(obs.AirTemperature),
		FeelsLike:          temp(obs.FeelsLike),
		DewPoint:           temp(obs.DewPoint),
		WetBulbTemperature: temp(obs.WetBulbTemperature),
		HeatIndex:          temp(obs.HeatIndex),
		WindChill:          temp(obs.WindChill),
		RelativeHumidity:   fmt.Sprintf("%d%%", int(math.Round(obs.RelativeHumidity))),

		WindAvg:       wind(obs.WindAvg),
		WindGust:      wind(obs.WindGust),
		WindLull:      wind(obs.WindLull),
		WindDirection: obs.WindDirection,
		WindCompass:   units.Compass(obs.WindDirection),

		StationPressure: units.FormatPressure(obs.StationPressure, p.PressureUnit),
		PressureArrow:   units.TrendArrow(obs.PressureTrend),
		PressureTrend:   units.TrendLabel(obs.PressureTrend),

		RainAccumulated:          rain(obs.RainAccumulated),
		LocalDayRainAccumulation: rain(obs.LocalDayRainAccumulation),
		PrecipitationType:        obs.PrecipitationType.String(),

		UVIndex:           obs.UVIndex,
		UVLabel:           units.UVLabel(obs.UVIndex),
		SolarRadiation:    obs.SolarRadiation,
		SolarIntensity:    units.SolarIntensity(obs.SolarRadiation),
		LightningCount:    obs.LightningStrikeCount,
		LightningDistance: units.LightningDistance(obs.LightningStrikeCount, obs.LightningStrikeAvgDistance),

		Battery: units.Battery(obs.Battery),
		Units:   p,
	}
}

// Display renders obs with the service clock.
func (s *Service) Display(obs weather.Observation, p prefs.Preferences) Display {
	return Render(obs, p, s.now())
}
