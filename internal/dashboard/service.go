// Package dashboard assembles station data for the display: a cached
// snapshot of the REST data, the shared live feed per device and the
// observation history.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/tempest-display/internal/tempest"
	"github.com/i474232898/tempest-display/internal/weather"
)

// Publisher forwards live observations to an external sink.
type Publisher interface {
	Publish(deviceID int, obs weather.Observation) error
}

// Snapshot is everything the dashboard shows for one station.
type Snapshot struct {
	Station     weather.StationMeta      `json:"station"`
	Current     weather.Observation      `json:"current"`
	Forecast    []weather.ForecastDay    `json:"forecast"`
	Hourly      []weather.HourlyForecast `json:"hourly"`
	Status      weather.StationStatus    `json:"status"`
	Almanac     weather.Almanac          `json:"almanac"`
	LastUpdated time.Time                `json:"lastUpdated"`
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher republishes every live observation.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithClock overrides the clock used for LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service orchestrates the station client, history store and live feeds.
type Service struct {
	client tempest.Client
	store  weather.Store
	pub    Publisher
	log    logrus.FieldLogger
	now    func() time.Time

	mu        sync.RWMutex
	snapshots map[int]Snapshot

	liveMu sync.Mutex
	live   map[int]*liveDevice
}

// NewService creates a new Service.
func NewService(client tempest.Client, store weather.Store, log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		client:    client,
		store:     store,
		log:       log,
		now:       time.Now,
		snapshots: make(map[int]Snapshot),
		live:      make(map[int]*liveDevice),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches all station data concurrently and caches the result. Any
// failing call fails the load and the previous snapshot is kept.
func (s *Service) Load(ctx context.Context, stationID int) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Station, err = s.client.StationMeta(gctx, stationID)
		return wrap("station meta", err)
	})
	g.Go(func() (err error) {
		snap.Current, err = s.client.CurrentObservation(gctx, stationID)
		return wrap("current observation", err)
	})
	g.Go(func() (err error) {
		snap.Forecast, err = s.client.Forecast(gctx, stationID)
		return wrap("forecast", err)
	})
	g.Go(func() (err error) {
		snap.Hourly, err = s.client.HourlyForecast(gctx, stationID)
		return wrap("hourly forecast", err)
	})
	g.Go(func() (err error) {
		snap.Status, err = s.client.StationStatus(gctx, stationID)
		return wrap("station status", err)
	})
	g.Go(func() (err error) {
		snap.Almanac, err = s.client.Almanac(gctx, stationID)
		return wrap("almanac", err)
	})

	if err := g.Wait(); err != nil {
		s.log.WithError(err).WithField("station_id", stationID).Warn("dashboard load failed; keeping last snapshot")
		return Snapshot{}, err
	}
	snap.LastUpdated = s.now().UTC()

	s.mu.Lock()
	// A live observation newer than the REST one wins.
	if prev, ok := s.snapshots[stationID]; ok && prev.Current.Timestamp > snap.Current.Timestamp {
		snap.Current = prev.Current
	}
	s.snapshots[stationID] = snap
	s.mu.Unlock()

	s.log.WithField("station_id", stationID).Debug("dashboard loaded")
	return snap, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// Snapshot returns the cached snapshot, loading it on first use.
func (s *Service) Snapshot(ctx context.Context, stationID int) (Snapshot, error) {
	s.mu.RLock()
	snap, ok := s.snapshots[stationID]
	s.mu.RUnlock()
	if ok {
		return snap, nil
	}
	return s.Load(ctx, stationID)
}

// Stations lists the ids of every cached snapshot.
func (s *Service) Stations() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	return ids
}

// Latest returns the newest stored observation for the device.
func (s *Service) Latest(deviceID int) (weather.Observation, error) {
	return s.store.Latest(deviceID)
}

// History returns stored observations in [from, to].
func (s *Service) History(deviceID int, from, to time.Time) ([]weather.Observation, error) {
	return s.store.Range(deviceID, from, to)
}

// Summary aggregates stored observations in [from, to].
func (s *Service) Summary(deviceID int, from, to time.Time) (weather.Summary, error) {
	obs, err := s.store.Range(deviceID, from, to)
	if err != nil {
		return weather.Summary{}, err
	}
	sum := weather.Summarize(deviceID, obs)
	if sum.Count == 0 {
		sum.From, sum.To = from.UTC(), to.UTC()
	}
	return sum, nil
}
