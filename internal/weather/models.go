package weather

import "time"

// PrecipitationType is the precipitation kind reported by the station.
type PrecipitationType int

const (
	PrecipitationNone        PrecipitationType = 0
	PrecipitationRain        PrecipitationType = 1
	PrecipitationHail        PrecipitationType = 2
	PrecipitationRainAndHail PrecipitationType = 3
)

// Valid reports whether p is one of the known precipitation types.
func (p PrecipitationType) Valid() bool {
	return p >= PrecipitationNone && p <= PrecipitationRainAndHail
}

func (p PrecipitationType) String() string {
	switch p {
	case PrecipitationRain:
		return "rain"
	case PrecipitationHail:
		return "hail"
	case PrecipitationRainAndHail:
		return "rain-and-hail"
	default:
		return "none"
	}
}

// PressureTrend describes the recent direction of station pressure.
type PressureTrend string

const (
	PressureFalling PressureTrend = "falling"
	PressureSteady  PressureTrend = "steady"
	PressureRising  PressureTrend = "rising"
)

// Valid reports whether t is one of the known pressure trends.
func (t PressureTrend) Valid() bool {
	switch t {
	case PressureFalling, PressureSteady, PressureRising:
		return true
	}
	return false
}

// MaxGust is the hard ceiling for simulated gust speed in m/s.
const MaxGust = 30.0

// Observation is a snapshot of station readings in canonical metric units.
// Timestamp is seconds since the Unix epoch.
type Observation struct {
	Timestamp          float64 `json:"timestamp"`
	WindLull           float64 `json:"windLull"`           // m/s
	WindAvg            float64 `json:"windAvg"`            // m/s
	WindGust           float64 `json:"windGust"`           // m/s
	WindDirection      float64 `json:"windDirection"`      // degrees
	WindSampleInterval int     `json:"windSampleInterval"` // seconds
	StationPressure    float64 `json:"stationPressure"`    // mb
	AirTemperature     float64 `json:"airTemperature"`     // °C
	RelativeHumidity   float64 `json:"relativeHumidity"`   // %
	Illuminance        float64 `json:"illuminance"`        // lux
	UVIndex            float64 `json:"uvIndex"`
	SolarRadiation     float64 `json:"solarRadiation"`  // W/m²
	RainAccumulated    float64 `json:"rainAccumulated"` // mm

	PrecipitationType          PrecipitationType `json:"precipitationType"`
	LightningStrikeAvgDistance float64           `json:"lightningStrikeAvgDistance"` // km
	LightningStrikeCount       int               `json:"lightningStrikeCount"`

	Battery                  float64 `json:"battery"`        // volts
	ReportInterval           int     `json:"reportInterval"` // minutes
	LocalDayRainAccumulation float64 `json:"localDayRainAccumulation"`

	FeelsLike          float64       `json:"feelsLike"`
	DewPoint           float64       `json:"dewPoint"`
	WetBulbTemperature float64       `json:"wetBulbTemperature"`
	HeatIndex          float64       `json:"heatIndex"`
	WindChill          float64       `json:"windChill"`
	PressureTrend      PressureTrend `json:"pressureTrend"`
}

// Time returns the observation timestamp as a UTC time.
func (o Observation) Time() time.Time {
	sec := int64(o.Timestamp)
	nsec := int64((o.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// WindOrdered reports whether the wind fields satisfy
// 0 <= lull <= avg <= gust <= MaxGust and 0 <= direction < 360.
func (o Observation) WindOrdered() bool {
	return 0 <= o.WindLull &&
		o.WindLull <= o.WindAvg &&
		o.WindAvg <= o.WindGust &&
		o.WindGust <= MaxGust &&
		0 <= o.WindDirection && o.WindDirection < 360
}

// Timestamp converts t to fractional Unix seconds.
func Timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// StationMeta describes the configured station and its primary device.
type StationMeta struct {
	StationID        int     `json:"station_id"`
	Name             string  `json:"name"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Elevation        float64 `json:"elevation"`
	Timezone         string  `json:"timezone"`
	FirmwareRevision string  `json:"firmware_revision"`
	SerialNumber     string  `json:"serial_number"`
	DeviceID         int     `json:"device_id"`
}

// ForecastDay is one day of the daily forecast. Temperatures are °C,
// sunrise and sunset are Unix seconds.
type ForecastDay struct {
	DayNum            int     `json:"dayNum"`
	MonthNum          int     `json:"monthNum"`
	Conditions        string  `json:"conditions"`
	Icon              string  `json:"icon"`
	AirTempHigh       float64 `json:"airTempHigh"`
	AirTempLow        float64 `json:"airTempLow"`
	PrecipProbability float64 `json:"precipProbability"`
	PrecipType        string  `json:"precipType"`
	Sunrise           int64   `json:"sunrise"`
	Sunset            int64   `json:"sunset"`
}

// HourlyForecast is one hour of the hourly forecast in canonical units.
type HourlyForecast struct {
	Timestamp         int64   `json:"timestamp"`
	Conditions        string  `json:"conditions"`
	Icon              string  `json:"icon"`
	AirTemperature    float64 `json:"airTemperature"`
	FeelsLike         float64 `json:"feelsLike"`
	RelativeHumidity  float64 `json:"relativeHumidity"`
	WindAvg           float64 `json:"windAvg"`
	WindDirection     float64 `json:"windDirection"`
	WindGust          float64 `json:"windGust"`
	PrecipProbability float64 `json:"precipProbability"`
	UVIndex           float64 `json:"uvIndex"`
}

// StationStatus is the health of the station hardware.
type StationStatus struct {
	IsOnline        bool    `json:"isOnline"`
	LastReport      float64 `json:"lastReport"`
	BatteryLevel    float64 `json:"batteryLevel"`
	SignalStrength  int     `json:"signalStrength"` // 0-4
	FirmwareVersion string  `json:"firmwareVersion"`
}

// TempRecord is a high/low temperature pair for a period.
type TempRecord struct {
	High     float64 `json:"high"`
	HighDate string  `json:"highDate"`
	Low      float64 `json:"low"`
	LowDate  string  `json:"lowDate"`
}

// Almanac holds historical extremes and astronomical data for the station.
type Almanac struct {
	Today            TempRecord `json:"today"`
	Week             TempRecord `json:"week"`
	Month            TempRecord `json:"month"`
	Year             TempRecord `json:"year"`
	Sunrise          int64      `json:"sunrise"`
	Sunset           int64      `json:"sunset"`
	MoonPhase        float64    `json:"moonPhase"` // 0-1, 0 = new, 0.5 = full
	MoonPhaseName    string     `json:"moonPhaseName"`
	MoonIllumination float64    `json:"moonIllumination"` // 0-1
}
