package tempest

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/tempest-display/internal/feed"
	"github.com/i474232898/tempest-display/internal/units"
	"github.com/i474232898/tempest-display/internal/weather"
)

var fixedNow = time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)

func newTestClient(opts ...StubOption) *StubClient {
	l := logrus.New()
	l.SetOutput(io.Discard)
	base := []StubOption{
		WithStubClock(func() time.Time { return fixedNow }),
		WithStubSource(feed.Sequence(0.5)),
		WithStubLogger(l),
	}
	return NewStubClient(StubStation, append(base, opts...)...)
}

func TestStubCurrentObservation(t *testing.T) {
	c := newTestClient()
	obs, err := c.CurrentObservation(context.Background(), StubStation.StationID)
	require.NoError(t, err)

	assert.Equal(t, weather.Timestamp(fixedNow), obs.Timestamp)
	assert.Equal(t, 212.0, obs.WindDirection)
	assert.Equal(t, weather.PrecipitationRain, obs.PrecipitationType)
	assert.True(t, obs.WindOrdered())
	assert.Equal(t, "46°F", units.FormatTemperature(obs.AirTemperature, units.Fahrenheit))
}

func TestStubForecastIsRelativeToClock(t *testing.T) {
	c := newTestClient()
	days, err := c.Forecast(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, days, 7)

	assert.Equal(t, fixedNow.Unix()-5*3600, days[0].Sunrise)
	assert.Equal(t, fixedNow.Unix()+149*3600, days[6].Sunset)
	for _, d := range days {
		assert.Greater(t, d.AirTempHigh, d.AirTempLow)
	}
}

func TestStubHourlyForecast(t *testing.T) {
	c := newTestClient()
	hours, err := c.HourlyForecast(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, hours, 24)

	// Minimum at midnight, maximum at noon.
	assert.InDelta(t, 12, hours[0].AirTemperature, 1e-9)
	assert.InDelta(t, 24, hours[12].AirTemperature, 1e-9)
	assert.Equal(t, "clear-night", hours[0].Icon)
	assert.Equal(t, "cloudy", hours[12].Icon)
	assert.Equal(t, 0.0, hours[3].UVIndex)
	assert.InDelta(t, 8, hours[12].UVIndex, 1e-9)

	// A neutral source puts the noise at its midpoint.
	assert.InDelta(t, 3, hours[5].WindAvg, 1e-9)
	assert.Equal(t, 225.0, hours[5].WindDirection)
	assert.InDelta(t, 50, hours[14].PrecipProbability, 1e-9)
}

func TestStubStatusAndAlmanac(t *testing.T) {
	c := newTestClient()
	status, err := c.StationStatus(context.Background(), StubStation.DeviceID)
	require.NoError(t, err)
	assert.Equal(t, "45s ago", units.TimeSince(status.LastReport, fixedNow))

	alm, err := c.Almanac(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "10h 40m daylight", units.Daylight(alm.Sunrise, alm.Sunset))
	assert.Equal(t, "Waning Gibbous", alm.MoonPhaseName)
}

func TestStubHonoursCancelledContext(t *testing.T) {
	c := newTestClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.StationMeta(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	_, err = c.Forecast(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStubListenDeliversUntilClosed(t *testing.T) {
	c := newTestClient(WithFeedOptions(feed.WithInterval(5 * time.Millisecond)))

	var calls atomic.Int64
	sub, err := c.Listen(StubStation.DeviceID, func(o weather.Observation) {
		if o.WindOrdered() {
			calls.Add(1)
		}
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	sub.Close()
	n := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, calls.Load())
}
