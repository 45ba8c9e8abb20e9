// Package feed simulates a station device that reports wind at a fixed
// cadence. Each Session drifts its own wind state with bounded jitter and
// hands every new observation to a callback until it is closed.
package feed

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/tempest-display/internal/weather"
)

// DefaultInterval matches the station's websocket cadence.
const DefaultInterval = 3 * time.Second

// Per-tick jitter magnitudes and hard limits.
const (
	directionStep = 5.0
	avgStep       = 0.2
	gustStep      = 0.3
	lullStep      = 0.15
	maxAvg        = 20.0
)

// State is the lifecycle state of a Session.
type State int

const (
	Idle State = iota
	Active
	Closed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Closed:
		return "closed"
	default:
		return "idle"
	}
}

// Handler receives each observation produced by a session.
type Handler func(weather.Observation)

// Option configures a Session.
type Option func(*Session)

// WithInterval overrides the tick cadence.
func WithInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithScheduler injects the timer primitive.
func WithScheduler(sched Scheduler) Option {
	return func(s *Session) {
		if sched != nil {
			s.sched = sched
		}
	}
}

// WithSource injects the jitter source.
func WithSource(src Source) Option {
	return func(s *Session) {
		if src != nil {
			s.src = src
		}
	}
}

// WithClock injects the clock used for observation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger; the session adds its own fields.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// Session is one live subscription to a simulated device.
type Session struct {
	id       string
	deviceID int
	interval time.Duration
	sched    Scheduler
	src      Source
	now      func() time.Time
	log      logrus.FieldLogger
	handler  Handler

	// deliver is held for a whole tick so ticks never overlap and Close can
	// wait out an in-flight callback.
	deliver sync.Mutex

	mu    sync.Mutex
	state State
	timer Timer
	base  weather.Observation
	dir   float64
	avg   float64
	gust  float64
	lull  float64
	ticks uint64
}

// Start creates a session for deviceID seeded from base and arms its timer.
// The returned session is Active; onObservation is called once per tick from
// the scheduler's goroutine.
func Start(deviceID int, base weather.Observation, onObservation Handler, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		deviceID: deviceID,
		interval: DefaultInterval,
		sched:    SystemScheduler(),
		src:      defaultSource(),
		now:      time.Now,
		log:      logrus.StandardLogger(),
		handler:  onObservation,
		base:     base,
		dir:      base.WindDirection,
		avg:      base.WindAvg,
		gust:     base.WindGust,
		lull:     base.WindLull,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithFields(logrus.Fields{
		"device_id":  deviceID,
		"session_id": s.id,
	})

	s.mu.Lock()
	s.state = Active
	s.timer = s.sched.AfterFunc(s.interval, s.tick)
	s.mu.Unlock()

	s.log.WithField("interval", s.interval).Info("feed session started")
	return s
}

// ID is the unique id of this session.
func (s *Session) ID() string { return s.id }

// DeviceID is the device this session simulates.
func (s *Session) DeviceID() int { return s.deviceID }

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ticks is the number of observations delivered so far.
func (s *Session) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Close stops the session. It is idempotent, and once it returns no further
// callback runs. If a callback is in flight Close waits for it, so it must not
// be called from inside the handler.
func (s *Session) Close() {
	s.mu.Lock()
	wasActive := s.state == Active
	s.state = Closed
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	// Wait out a tick that may already be running.
	s.deliver.Lock()
	s.deliver.Unlock()

	if wasActive {
		s.log.WithField("ticks", s.Ticks()).Info("feed session closed")
	}
}

func (s *Session) tick() {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	if s.state != Active {
		s.mu.Unlock()
		return
	}
	obs := s.advance()
	s.ticks++
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"wind_avg":  obs.WindAvg,
		"wind_gust": obs.WindGust,
		"wind_lull": obs.WindLull,
		"wind_dir":  obs.WindDirection,
	}).Debug("feed tick")

	if s.handler != nil {
		s.handler(obs)
	}

	s.mu.Lock()
	if s.state == Active {
		s.timer = s.sched.AfterFunc(s.interval, s.tick)
	}
	s.mu.Unlock()
}

// advance applies one step of drift. Gust and lull are clamped against the
// already updated average so lull <= avg <= gust holds after every tick.
// Callers hold s.mu.
func (s *Session) advance() weather.Observation {
	s.dir = math.Mod(s.dir+uniform(s.src, directionStep)+360, 360)
	s.avg = clamp(s.avg+uniform(s.src, avgStep), 0, maxAvg)
	s.gust = clamp(s.gust+uniform(s.src, gustStep), s.avg, weather.MaxGust)
	s.lull = clamp(s.lull+uniform(s.src, lullStep), 0, s.avg)

	obs := s.base
	obs.Timestamp = weather.Timestamp(s.now())
	obs.WindAvg = s.avg
	obs.WindGust = s.gust
	obs.WindLull = s.lull
	obs.WindDirection = math.Mod(math.Floor(s.dir+0.5), 360)
	return obs
}
