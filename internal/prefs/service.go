package prefs

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultProfile is used when callers do not name a profile.
const DefaultProfile = "default"

// Repository persists preferences per profile.
type Repository interface {
	Load(ctx context.Context, profile string) (Preferences, error)
	Save(ctx context.Context, profile string, p Preferences) error
}

// Service reads and writes preferences on top of a Repository.
type Service struct {
	repo     Repository
	defaults Preferences
	log      logrus.FieldLogger
}

// NewService creates a Service; defaults fill profiles never saved and any
// field a stored profile lacks.
func NewService(repo Repository, defaults Preferences, log logrus.FieldLogger) *Service {
	return &Service{
		repo:     repo,
		defaults: defaults.Sanitize(Defaults()),
		log:      log,
	}
}

// Defaults returns the service's default preferences.
func (s *Service) Defaults() Preferences {
	return s.defaults
}

// Get returns the preferences for profile, falling back to defaults.
func (s *Service) Get(ctx context.Context, profile string) (Preferences, error) {
	p, err := s.repo.Load(ctx, profileOrDefault(profile))
	if errors.Is(err, ErrNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return Preferences{}, err
	}
	return p.Sanitize(s.defaults), nil
}

// Replace validates and stores a full set of preferences.
func (s *Service) Replace(ctx context.Context, profile string, p Preferences) (Preferences, error) {
	if err := p.Validate(); err != nil {
		return Preferences{}, err
	}
	if err := s.repo.Save(ctx, profileOrDefault(profile), p); err != nil {
		return Preferences{}, err
	}
	s.log.WithField("profile", profileOrDefault(profile)).Info("preferences replaced")
	return p, nil
}

// Patch applies a partial update to the stored preferences.
func (s *Service) Patch(ctx context.Context, profile string, u Update) (Preferences, error) {
	if err := u.Validate(); err != nil {
		return Preferences{}, err
	}
	current, err := s.Get(ctx, profile)
	if err != nil {
		return Preferences{}, err
	}
	next := current.Apply(u)
	if err := s.repo.Save(ctx, profileOrDefault(profile), next); err != nil {
		return Preferences{}, err
	}
	s.log.WithField("profile", profileOrDefault(profile)).Info("preferences updated")
	return next, nil
}

func profileOrDefault(profile string) string {
	if profile == "" {
		return DefaultProfile
	}
	return profile
}

// MemoryRepository keeps preferences in process memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]Preferences
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]Preferences)}
}

func (r *MemoryRepository) Load(_ context.Context, profile string) (Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[profile]
	if !ok {
		return Preferences{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepository) Save(_ context.Context, profile string, p Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[profile] = p
	return nil
}
