package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/tempest-display/internal/weather"
)

func obsAt(t time.Time, avg float64) weather.Observation {
	return weather.Observation{Timestamp: weather.Timestamp(t), WindAvg: avg}
}

func TestMemoryStoreLatestAndRange(t *testing.T) {
	s := NewMemoryStore(0, 0)
	base := time.Unix(1_700_000_000, 0).UTC()

	if _, err := s.Latest(1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	for i := 0; i < 5; i++ {
		s.Save(1, obsAt(base.Add(time.Duration(i)*3*time.Second), float64(i)))
	}

	latest, err := s.Latest(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.WindAvg != 4 {
		t.Fatalf("expected latest avg 4, got %v", latest.WindAvg)
	}

	got, err := s.Range(1, base.Add(3*time.Second), base.Add(9*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 observations in range, got %d", len(got))
	}

	if _, err := s.Range(1, base.Add(time.Hour), base.Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty range, got %v", err)
	}
	if _, err := s.Range(2, base, base.Add(time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown device, got %v", err)
	}
}

func TestMemoryStoreRetentionByCount(t *testing.T) {
	s := NewMemoryStore(3, 0)
	base := time.Unix(1_700_000_000, 0)

	for i := 0; i < 10; i++ {
		s.Save(7, obsAt(base.Add(time.Duration(i)*time.Second), float64(i)))
	}

	if n := s.Len(7); n != 3 {
		t.Fatalf("expected 3 retained, got %d", n)
	}
	got, _ := s.Range(7, base, base.Add(time.Minute))
	if got[0].WindAvg != 7 {
		t.Fatalf("expected oldest retained avg 7, got %v", got[0].WindAvg)
	}
}

func TestMemoryStoreRetentionByAge(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := NewMemoryStore(0, time.Minute)
	s.now = func() time.Time { return now }

	s.Save(1, obsAt(now.Add(-5*time.Minute), 1))
	s.Save(1, obsAt(now.Add(-2*time.Minute), 2))
	s.Save(1, obsAt(now.Add(-30*time.Second), 3))

	if n := s.Len(1); n != 1 {
		t.Fatalf("expected 1 observation within max age, got %d", n)
	}

	// The newest observation survives even when it is older than maxAge.
	s2 := NewMemoryStore(0, time.Minute)
	s2.now = func() time.Time { return now }
	s2.Save(1, obsAt(now.Add(-time.Hour), 9))
	if _, err := s2.Latest(1); err != nil {
		t.Fatalf("expected newest observation to be kept, got %v", err)
	}
}
