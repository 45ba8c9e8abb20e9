// Package tempest is the station data source for the dashboard. The only
// implementation is a stub that serves canned values for one station and
// simulates the live websocket with a feed session.
package tempest

import (
	"context"
	"errors"

	"github.com/i474232898/tempest-display/internal/weather"
)

// Errors a live device feed reports. The stub never returns them; a real
// feed replacing it must reconnect with backoff on ErrConnectionLost and
// log and skip on ErrMalformedMessage without ending the subscription.
var (
	ErrConnectionLost   = errors.New("station feed connection lost")
	ErrMalformedMessage = errors.New("malformed station feed message")
)

// Subscription is a live observation stream that can be stopped.
type Subscription interface {
	Close()
}

// Client abstracts the WeatherFlow REST and websocket endpoints.
type Client interface {
	StationMeta(ctx context.Context, stationID int) (weather.StationMeta, error)
	CurrentObservation(ctx context.Context, stationID int) (weather.Observation, error)
	Forecast(ctx context.Context, stationID int) ([]weather.ForecastDay, error)
	HourlyForecast(ctx context.Context, stationID int) ([]weather.HourlyForecast, error)
	StationStatus(ctx context.Context, stationID int) (weather.StationStatus, error)
	Almanac(ctx context.Context, stationID int) (weather.Almanac, error)

	// Listen delivers observations for deviceID until the subscription is closed.
	Listen(deviceID int, onObservation func(weather.Observation)) (Subscription, error)
}
