package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/tempest-display/internal/weather"
)

var (
	// ErrNotFound is returned when no observations are stored for a device.
	ErrNotFound = errors.New("no observations for device")
)

// history holds a time-ordered list of observations for one device.
type history struct {
	observations []weather.Observation
}

// MemoryStore is a concurrency-safe in-memory observation history.
type MemoryStore struct {
	mu sync.RWMutex

	// key: device id
	data map[int]*history

	// retention configuration
	maxHistory int           // max number of observations per device
	maxAge     time.Duration // optional max age for observations

	now func() time.Time
}

var _ weather.Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[int]*history),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save appends an observation for a device and enforces retention.
func (s *MemoryStore) Save(deviceID int, obs weather.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.data[deviceID]
	if !ok {
		h = &history{}
		s.data[deviceID] = h
	}

	h.observations = append(h.observations, obs)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(h.observations) > s.maxHistory {
		over := len(h.observations) - s.maxHistory
		h.observations = append([]weather.Observation(nil), h.observations[over:]...)
	}

	// Enforce retention by age; the newest observation is always kept.
	if s.maxAge > 0 {
		cutoff := weather.Timestamp(s.now().Add(-s.maxAge))
		i := 0
		for ; i < len(h.observations)-1; i++ {
			if h.observations[i].Timestamp >= cutoff {
				break
			}
		}
		if i > 0 {
			h.observations = h.observations[i:]
		}
	}
}

// Latest returns the most recent observation for a device.
func (s *MemoryStore) Latest(deviceID int) (weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[deviceID]
	if !ok || len(h.observations) == 0 {
		return weather.Observation{}, ErrNotFound
	}
	return h.observations[len(h.observations)-1], nil
}

// Range returns all observations for a device between from and to (inclusive).
func (s *MemoryStore) Range(deviceID int, from, to time.Time) ([]weather.Observation, error) {
	lo, hi := weather.Timestamp(from), weather.Timestamp(to)

	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[deviceID]
	if !ok || len(h.observations) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Observation
	for _, obs := range h.observations {
		if obs.Timestamp >= lo && obs.Timestamp <= hi {
			result = append(result, obs)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}

// Len reports how many observations are held for a device.
func (s *MemoryStore) Len(deviceID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h, ok := s.data[deviceID]; ok {
		return len(h.observations)
	}
	return 0
}
