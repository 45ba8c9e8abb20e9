package tempest

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/tempest-display/internal/feed"
	"github.com/i474232898/tempest-display/internal/weather"
)

const stubTimezone = "America/Los_Angeles"

// StubStation is the canned station served by StubClient.
var StubStation = weather.StationMeta{
	StationID:        12345,
	Name:             "Shoreline Weather Station",
	Latitude:         47.7559,
	Longitude:        -122.3417,
	Elevation:        61,
	Timezone:         stubTimezone,
	FirmwareRevision: "v1.7.2",
	SerialNumber:     "ST-00012345",
	DeviceID:         67890,
}

// StubObservation is the canned current observation; Timestamp is filled on
// each request.
var StubObservation = weather.Observation{
	WindLull:                   1.2,
	WindAvg:                    3.8,
	WindGust:                   7.4,
	WindDirection:              212, // SSW
	WindSampleInterval:         6,
	StationPressure:            1018.4,
	AirTemperature:             7.8,
	RelativeHumidity:           82,
	Illuminance:                8200,
	UVIndex:                    1.1,
	SolarRadiation:             94,
	RainAccumulated:            1.8,
	PrecipitationType:          weather.PrecipitationRain,
	LightningStrikeAvgDistance: 0,
	LightningStrikeCount:       0,
	Battery:                    2.61,
	ReportInterval:             1,
	LocalDayRainAccumulation:   4.2,
	FeelsLike:                  4.9,
	DewPoint:                   4.7,
	WetBulbTemperature:         6.1,
	HeatIndex:                  7.8,
	WindChill:                  4.9,
	PressureTrend:              weather.PressureSteady,
}

type stubDay struct {
	day, month        int
	conditions, icon  string
	high, low, precip float64
	sunriseH, sunsetH int64 // hours relative to now
}

var stubDays = []stubDay{
	{18, 2, "Rainy", "rainy", 9.2, 5.8, 90, -5, 5},
	{19, 2, "Cloudy", "cloudy", 10.1, 6.2, 65, 19, 29},
	{20, 2, "Partly Cloudy", "partly-cloudy-day", 11.4, 5.1, 30, 43, 53},
	{21, 2, "Mostly Sunny", "clear-day", 12.8, 4.4, 10, 67, 77},
	{22, 2, "Rainy", "rainy", 8.9, 5.6, 85, 91, 101},
	{23, 2, "Cloudy", "cloudy", 9.6, 5.3, 55, 115, 125},
	{24, 2, "Rainy", "rainy", 8.3, 4.9, 80, 139, 149},
}

// StubOption configures a StubClient.
type StubOption func(*StubClient)

// WithStubClock injects the clock used for relative timestamps.
func WithStubClock(now func() time.Time) StubOption {
	return func(c *StubClient) { c.now = now }
}

// WithStubSource injects randomness for the hourly forecast. Feed sessions
// draw from their own sources; use WithFeedOptions to override those.
func WithStubSource(src feed.Source) StubOption {
	return func(c *StubClient) { c.src = src }
}

// WithFeedOptions passes options through to every feed session.
func WithFeedOptions(opts ...feed.Option) StubOption {
	return func(c *StubClient) { c.feedOpts = append(c.feedOpts, opts...) }
}

// WithStubLogger sets the logger.
func WithStubLogger(log logrus.FieldLogger) StubOption {
	return func(c *StubClient) { c.log = log }
}

// StubClient serves the canned Shoreline station for any id.
type StubClient struct {
	now      func() time.Time
	srcMu    sync.Mutex
	src      feed.Source
	feedOpts []feed.Option
	log      logrus.FieldLogger
	meta     weather.StationMeta
}

var _ Client = (*StubClient)(nil)

// NewStubClient returns a stub client for meta, usually StubStation.
func NewStubClient(meta weather.StationMeta, opts ...StubOption) *StubClient {
	c := &StubClient{
		now:  time.Now,
		src:  feed.NewSeededSource(uint64(time.Now().UnixNano())),
		log:  logrus.StandardLogger(),
		meta: meta,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *StubClient) StationMeta(ctx context.Context, _ int) (weather.StationMeta, error) {
	if err := ctx.Err(); err != nil {
		return weather.StationMeta{}, err
	}
	return c.meta, nil
}

func (c *StubClient) CurrentObservation(ctx context.Context, _ int) (weather.Observation, error) {
	if err := ctx.Err(); err != nil {
		return weather.Observation{}, err
	}
	obs := StubObservation
	obs.Timestamp = weather.Timestamp(c.now())
	return obs, nil
}

func (c *StubClient) Forecast(ctx context.Context, _ int) ([]weather.ForecastDay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := c.now().Unix()
	days := make([]weather.ForecastDay, 0, len(stubDays))
	for _, d := range stubDays {
		days = append(days, weather.ForecastDay{
			DayNum:            d.day,
			MonthNum:          d.month,
			Conditions:        d.conditions,
			Icon:              d.icon,
			AirTempHigh:       d.high,
			AirTempLow:        d.low,
			PrecipProbability: d.precip,
			PrecipType:        "rain",
			Sunrise:           now + d.sunriseH*3600,
			Sunset:            now + d.sunsetH*3600,
		})
	}
	return days, nil
}

// HourlyForecast returns 24 hours of a diurnal temperature curve with noisy
// wind and precipitation.
func (c *StubClient) HourlyForecast(ctx context.Context, _ int) ([]weather.HourlyForecast, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.srcMu.Lock()
	defer c.srcMu.Unlock()

	now := c.now().Unix()
	hours := make([]weather.HourlyForecast, 0, 24)
	for i := 0; i < 24; i++ {
		phase := float64(i) / 24 * math.Pi * 2
		conditions, icon := hourlyConditions(i)

		h := weather.HourlyForecast{
			Timestamp:        now + int64(i)*3600,
			Conditions:       conditions,
			Icon:             icon,
			AirTemperature:   18 + math.Sin(phase-math.Pi/2)*6,
			FeelsLike:        17.5 + math.Sin(phase-math.Pi/2)*6.5,
			RelativeHumidity: 55 + math.Cos(phase)*20,
			WindAvg:          1.5 + c.src.Float64()*3,
			WindDirection:    180 + math.Floor(c.src.Float64()*90),
			WindGust:         3 + c.src.Float64()*5,
		}
		if i >= 12 && i <= 16 {
			h.PrecipProbability = 30 + c.src.Float64()*40
		} else {
			h.PrecipProbability = c.src.Float64() * 10
		}
		if i >= 6 && i <= 18 {
			h.UVIndex = math.Sin(float64(i-6)/12*math.Pi) * 8
		}
		hours = append(hours, h)
	}
	return hours, nil
}

func hourlyConditions(i int) (string, string) {
	switch {
	case i < 6:
		return "Clear", "clear-night"
	case i < 12:
		return "Partly Cloudy", "partly-cloudy-day"
	case i < 18:
		return "Cloudy", "cloudy"
	default:
		return "Clear", "clear-night"
	}
}

func (c *StubClient) StationStatus(ctx context.Context, _ int) (weather.StationStatus, error) {
	if err := ctx.Err(); err != nil {
		return weather.StationStatus{}, err
	}
	return weather.StationStatus{
		IsOnline:        true,
		LastReport:      weather.Timestamp(c.now()) - 45,
		BatteryLevel:    2.62,
		SignalStrength:  3,
		FirmwareVersion: "v1.7.2",
	}, nil
}

func (c *StubClient) Almanac(ctx context.Context, _ int) (weather.Almanac, error) {
	if err := ctx.Err(); err != nil {
		return weather.Almanac{}, err
	}
	return weather.Almanac{
		Today:            weather.TempRecord{High: 9.4, HighDate: "Feb 18", Low: 5.1, LowDate: "Feb 18"},
		Week:             weather.TempRecord{High: 12.8, HighDate: "Feb 21", Low: 3.9, LowDate: "Feb 17"},
		Month:            weather.TempRecord{High: 13.6, HighDate: "Feb 4", Low: 1.2, LowDate: "Feb 9"},
		Year:             weather.TempRecord{High: 17.2, HighDate: "Jan 13", Low: -1.4, LowDate: "Jan 18"},
		Sunrise:          c.todayAt(7, 9),
		Sunset:           c.todayAt(17, 49),
		MoonPhase:        0.70,
		MoonPhaseName:    "Waning Gibbous",
		MoonIllumination: 0.82,
	}, nil
}

func (c *StubClient) todayAt(hour, minute int) int64 {
	loc, err := time.LoadLocation(c.meta.Timezone)
	if err != nil {
		loc = time.Local
	}
	now := c.now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc).Unix()
}

// Listen starts a simulated feed seeded from the canned observation.
func (c *StubClient) Listen(deviceID int, onObservation func(weather.Observation)) (Subscription, error) {
	opts := []feed.Option{
		feed.WithClock(c.now),
		feed.WithLogger(c.log),
	}
	opts = append(opts, c.feedOpts...)

	base := StubObservation
	base.Timestamp = weather.Timestamp(c.now())
	return feed.Start(deviceID, base, onObservation, opts...), nil
}
