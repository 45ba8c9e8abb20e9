package feed

import (
	"io"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/i474232898/tempest-display/internal/weather"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTimer struct {
	sched   *fakeScheduler
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	live := !t.stopped && !t.fired
	t.stopped = true
	return live
}

// fakeScheduler queues callbacks until the test fires them.
type fakeScheduler struct {
	mu      sync.Mutex
	pending []*fakeTimer
	armed   []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{sched: s, d: d, f: f}
	s.pending = append(s.pending, t)
	s.armed = append(s.armed, t)
	return t
}

// fire runs the oldest live timer on the calling goroutine.
func (s *fakeScheduler) fire() bool {
	s.mu.Lock()
	for len(s.pending) > 0 {
		t := s.pending[0]
		s.pending = s.pending[1:]
		if t.stopped {
			continue
		}
		t.fired = true
		s.mu.Unlock()
		t.f()
		return true
	}
	s.mu.Unlock()
	return false
}

func (s *fakeScheduler) live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func baseObservation() weather.Observation {
	return weather.Observation{
		Timestamp:        1_700_000_000,
		WindLull:         1.2,
		WindAvg:          3.8,
		WindGust:         7.4,
		WindDirection:    212,
		StationPressure:  1018.4,
		AirTemperature:   7.8,
		RelativeHumidity: 82,
		PressureTrend:    weather.PressureSteady,
	}
}

func collect() (Handler, func() []weather.Observation) {
	var mu sync.Mutex
	var got []weather.Observation
	return func(o weather.Observation) {
			mu.Lock()
			got = append(got, o)
			mu.Unlock()
		}, func() []weather.Observation {
			mu.Lock()
			defer mu.Unlock()
			return append([]weather.Observation(nil), got...)
		}
}

func TestStartArmsTimerAtInterval(t *testing.T) {
	sched := &fakeScheduler{}
	h, got := collect()

	s := Start(67890, baseObservation(), h, WithScheduler(sched), WithLogger(quietLogger()))
	defer s.Close()

	assert.Equal(t, Active, s.State())
	assert.Equal(t, 67890, s.DeviceID())
	assert.NotEmpty(t, s.ID())
	require.Equal(t, 1, sched.live())
	assert.Equal(t, DefaultInterval, sched.armed[0].d)
	assert.Empty(t, got())
}

func TestTickAppliesJitterInOrder(t *testing.T) {
	sched := &fakeScheduler{}
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0), step: 3 * time.Second}
	h, got := collect()

	// 0.75 is a quarter above the midpoint: half of each step magnitude.
	s := Start(1, baseObservation(), h,
		WithScheduler(sched),
		WithSource(Sequence(0.75)),
		WithClock(clock.now),
		WithLogger(quietLogger()),
	)
	defer s.Close()

	require.True(t, sched.fire())
	obs := got()
	require.Len(t, obs, 1)

	o := obs[0]
	assert.Equal(t, 215.0, o.WindDirection) // 214.5 rounds up
	assert.InDelta(t, 3.9, o.WindAvg, 1e-9)
	assert.InDelta(t, 7.55, o.WindGust, 1e-9)
	assert.InDelta(t, 1.275, o.WindLull, 1e-9)
	assert.Equal(t, float64(1_700_000_003), o.Timestamp)

	// Everything except the wind fields and timestamp is carried over.
	assert.Equal(t, 1018.4, o.StationPressure)
	assert.Equal(t, 7.8, o.AirTemperature)
	assert.Equal(t, weather.PressureSteady, o.PressureTrend)

	assert.Equal(t, uint64(1), s.Ticks())
	assert.Equal(t, 1, sched.live(), "next tick is armed after delivery")
}

func TestNeutralJitterKeepsState(t *testing.T) {
	sched := &fakeScheduler{}
	h, got := collect()

	s := Start(1, baseObservation(), h, WithScheduler(sched), WithSource(Sequence(0.5)), WithLogger(quietLogger()))
	defer s.Close()

	for i := 0; i < 3; i++ {
		require.True(t, sched.fire())
	}
	for _, o := range got() {
		assert.Equal(t, 212.0, o.WindDirection)
		assert.InDelta(t, 3.8, o.WindAvg, 1e-12)
		assert.InDelta(t, 7.4, o.WindGust, 1e-12)
		assert.InDelta(t, 1.2, o.WindLull, 1e-12)
	}
}

func TestClampCeilings(t *testing.T) {
	sched := &fakeScheduler{}
	h, got := collect()
	base := weather.Observation{WindAvg: 19.95, WindGust: 29.9, WindLull: 19.95, WindDirection: 358}

	s := Start(1, base, h, WithScheduler(sched), WithSource(Sequence(0.99)), WithLogger(quietLogger()))
	defer s.Close()

	require.True(t, sched.fire())
	o := got()[0]
	assert.Equal(t, 3.0, o.WindDirection, "direction wraps past north")
	assert.Equal(t, 20.0, o.WindAvg)
	assert.Equal(t, 30.0, o.WindGust)
	assert.Equal(t, 20.0, o.WindLull, "lull is capped at the updated average")
}

func TestClampFloors(t *testing.T) {
	sched := &fakeScheduler{}
	h, got := collect()
	base := weather.Observation{WindAvg: 0.05, WindGust: 0.1, WindLull: 0.02, WindDirection: 1}

	s := Start(1, base, h, WithScheduler(sched), WithSource(Sequence(0.01)), WithLogger(quietLogger()))
	defer s.Close()

	require.True(t, sched.fire())
	o := got()[0]
	assert.Equal(t, 356.0, o.WindDirection)
	assert.Equal(t, 0.0, o.WindAvg)
	assert.Equal(t, 0.0, o.WindGust)
	assert.Equal(t, 0.0, o.WindLull)
}

func TestGustFloorFollowsUpdatedAverage(t *testing.T) {
	sched := &fakeScheduler{}
	h, got := collect()
	base := weather.Observation{WindAvg: 5, WindGust: 5.05, WindLull: 1, WindDirection: 90}

	// direction, avg (+0.2), gust (-0.3), lull (0)
	s := Start(1, base, h, WithScheduler(sched), WithSource(Sequence(0.5, 1.0, 0.0, 0.5)), WithLogger(quietLogger()))
	defer s.Close()

	require.True(t, sched.fire())
	o := got()[0]
	assert.InDelta(t, 5.2, o.WindAvg, 1e-9)
	assert.Equal(t, o.WindAvg, o.WindGust)
	assert.True(t, o.WindOrdered())
}

func TestInvariantsHoldOnEveryTick(t *testing.T) {
	sched := &fakeScheduler{}
	h, got := collect()

	s := Start(1, baseObservation(), h, WithScheduler(sched), WithSource(NewSeededSource(42)), WithLogger(quietLogger()))
	defer s.Close()

	const ticks = 5000
	for i := 0; i < ticks; i++ {
		require.True(t, sched.fire())
	}

	obs := got()
	require.Len(t, obs, ticks)

	prev := baseObservation()
	for i, o := range obs {
		require.True(t, o.WindOrdered(), "tick %d: %+v", i, o)

		assert.LessOrEqual(t, math.Abs(o.WindAvg-prev.WindAvg), avgStep+1e-9, "tick %d avg", i)
		assert.LessOrEqual(t, math.Abs(o.WindGust-prev.WindGust), gustStep+1e-9, "tick %d gust", i)

		// A lull pinned to a falling average moves with it.
		lullLimit := lullStep
		if o.WindLull == o.WindAvg {
			lullLimit = avgStep
		}
		assert.LessOrEqual(t, math.Abs(o.WindLull-prev.WindLull), lullLimit+1e-9, "tick %d lull", i)

		d := math.Abs(o.WindDirection - prev.WindDirection)
		if d > 180 {
			d = 360 - d
		}
		assert.LessOrEqual(t, d, directionStep, "tick %d direction", i)

		prev = o
	}
}

func TestTimestampsFollowTickOrder(t *testing.T) {
	sched := &fakeScheduler{}
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0), step: DefaultInterval}
	h, got := collect()

	s := Start(1, baseObservation(), h, WithScheduler(sched), WithClock(clock.now), WithLogger(quietLogger()))
	defer s.Close()

	for i := 0; i < 10; i++ {
		require.True(t, sched.fire())
	}
	obs := got()
	for i := 1; i < len(obs); i++ {
		assert.Greater(t, obs[i].Timestamp, obs[i-1].Timestamp)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	sched := &fakeScheduler{}
	h, got := collect()

	s := Start(1, baseObservation(), h, WithScheduler(sched), WithLogger(quietLogger()))
	require.True(t, sched.fire())

	s.Close()
	assert.Equal(t, Closed, s.State())
	assert.Equal(t, 0, sched.live())

	s.Close()
	assert.Equal(t, Closed, s.State())
	assert.False(t, sched.fire())
	assert.Len(t, got(), 1)
}

func TestQueuedTickAfterCloseIsDropped(t *testing.T) {
	sched := &fakeScheduler{}
	h, got := collect()

	s := Start(1, baseObservation(), h, WithScheduler(sched), WithLogger(quietLogger()))
	queued := sched.armed[0].f
	s.Close()

	// A timer that does not honour Stop still delivers its callback.
	queued()
	assert.Empty(t, got())
	assert.Equal(t, uint64(0), s.Ticks())
}

func TestNoCallbackAfterCloseWithSystemTimer(t *testing.T) {
	const interval = 10 * time.Millisecond
	var calls atomic.Int64

	s := Start(1, baseObservation(), func(weather.Observation) { calls.Add(1) },
		WithInterval(interval), WithLogger(quietLogger()))

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)

	s.Close()
	after := calls.Load()

	time.Sleep(3 * interval)
	assert.Equal(t, after, calls.Load())
}

func TestCloseWaitsForInFlightCallback(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int64

	s := Start(1, baseObservation(), func(weather.Observation) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
	}, WithInterval(time.Millisecond), WithLogger(quietLogger()))

	<-entered

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a callback was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-closed

	assert.Equal(t, int64(1), calls.Load())
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int64(1), calls.Load())
}

func TestSessionsAreIndependent(t *testing.T) {
	schedA, schedB := &fakeScheduler{}, &fakeScheduler{}
	hA, gotA := collect()
	hB, gotB := collect()

	a := Start(1, baseObservation(), hA, WithScheduler(schedA), WithSource(Sequence(1.0)), WithLogger(quietLogger()))
	defer a.Close()
	b := Start(2, baseObservation(), hB, WithScheduler(schedB), WithSource(Sequence(0.0)), WithLogger(quietLogger()))
	defer b.Close()

	require.True(t, schedA.fire())
	require.True(t, schedA.fire())
	require.True(t, schedB.fire())

	assert.InDelta(t, 4.2, gotA()[1].WindAvg, 1e-9)
	assert.InDelta(t, 3.6, gotB()[0].WindAvg, 1e-9)
	assert.Len(t, gotB(), 1)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "closed", Closed.String())
}
