package dashboard

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/tempest-display/internal/tempest"
	"github.com/i474232898/tempest-display/internal/weather"
)

// liveDevice is the single feed shared by every subscriber of a device.
type liveDevice struct {
	sub tempest.Subscription

	mu          sync.RWMutex
	next        uint64
	subscribers map[uint64]func(weather.Observation)
}

func (d *liveDevice) dispatch(obs weather.Observation) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, fn := range d.subscribers {
		fn(obs)
	}
}

// StartLive starts the device feed if it is not already running. Every
// observation is stored, published and fanned out to subscribers.
func (s *Service) StartLive(deviceID int) error {
	_, err := s.device(deviceID)
	return err
}

func (s *Service) device(deviceID int) (*liveDevice, error) {
	s.liveMu.Lock()
	defer s.liveMu.Unlock()

	if d, ok := s.live[deviceID]; ok {
		return d, nil
	}

	d := &liveDevice{subscribers: make(map[uint64]func(weather.Observation))}
	log := s.log.WithField("device_id", deviceID)
	sub, err := s.client.Listen(deviceID, func(obs weather.Observation) {
		s.record(deviceID, obs, log)
		d.dispatch(obs)
	})
	if err != nil {
		return nil, err
	}
	d.sub = sub
	s.live[deviceID] = d

	log.Info("live feed started")
	return d, nil
}

func (s *Service) record(deviceID int, obs weather.Observation, log logrus.FieldLogger) {
	s.store.Save(deviceID, obs)

	s.mu.Lock()
	for id, snap := range s.snapshots {
		if snap.Station.DeviceID == deviceID {
			snap.Current = obs
			s.snapshots[id] = snap
		}
	}
	s.mu.Unlock()

	if s.pub != nil {
		if err := s.pub.Publish(deviceID, obs); err != nil {
			log.WithError(err).Warn("publish observation failed")
		}
	}
}

// Subscribe registers fn for live observations of the device, starting the
// feed if needed. fn runs on the feed goroutine and must not block. The
// returned function removes the subscription; the feed keeps running until
// Stop.
func (s *Service) Subscribe(deviceID int, fn func(weather.Observation)) (func(), error) {
	d, err := s.device(deviceID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	id := d.next
	d.next++
	d.subscribers[id] = fn
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subscribers, id)
			d.mu.Unlock()
		})
	}, nil
}

// Subscribers returns the number of live subscribers for the device.
func (s *Service) Subscribers(deviceID int) int {
	s.liveMu.Lock()
	d, ok := s.live[deviceID]
	s.liveMu.Unlock()
	if !ok {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers)
}

// Stop closes every live feed. It must not be called from a subscriber.
func (s *Service) Stop() {
	s.liveMu.Lock()
	devices := s.live
	s.live = make(map[int]*liveDevice)
	s.liveMu.Unlock()

	for id, d := range devices {
		d.sub.Close()
		s.log.WithField("device_id", id).Info("live feed stopped")
	}
}
