package feed

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Source yields uniform values in [0, 1).
type Source interface {
	Float64() float64
}

// NewSeededSource returns a deterministic source for the given seed.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func defaultSource() Source {
	return NewSeededSource(uint64(time.Now().UnixNano()))
}

// Sequence returns a source that replays values in order, wrapping around.
// Values are used as-is, so 1.0 yields the full positive step.
func Sequence(values ...float64) Source {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &sequence{values: values}
}

type sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
}

func (s *sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// uniform draws from (-magnitude, magnitude).
func uniform(src Source, magnitude float64) float64 {
	return (src.Float64() - 0.5) * 2 * magnitude
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
