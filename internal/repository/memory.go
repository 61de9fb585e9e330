package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/google/uuid"
)

// The memory stores keep private copies of every record so callers can never
// mutate stored state through a returned pointer.

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]model.User
	now   func() time.Time
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]model.User), now: time.Now}
}

func (s *MemoryUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return ErrAlreadyExists
	}

	user.ID = uuid.New()
	user.CreatedAt = s.now().UTC()
	s.users[user.Username] = *user
	return nil
}

func (s *MemoryUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

type MemoryTouristProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]model.TouristProfile
	now      func() time.Time
}

func NewMemoryTouristProfileStore() *MemoryTouristProfileStore {
	return &MemoryTouristProfileStore{profiles: make(map[string]model.TouristProfile), now: time.Now}
}

func copyProfile(p model.TouristProfile) model.TouristProfile {
	if p.Email != nil {
		email := *p.Email
		p.Email = &email
	}
	return p
}

func (s *MemoryTouristProfileStore) Create(_ context.Context, profile *model.TouristProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[profile.TouristID]; ok {
		return ErrAlreadyExists
	}

	now := s.now().UTC()
	profile.ID = uuid.New()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	s.profiles[profile.TouristID] = copyProfile(*profile)
	return nil
}

func (s *MemoryTouristProfileStore) GetByTouristID(_ context.Context, touristID string) (*model.TouristProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[touristID]
	if !ok {
		return nil, ErrNotFound
	}
	profile = copyProfile(profile)
	return &profile, nil
}

func (s *MemoryTouristProfileStore) Update(_ context.Context, profile *model.TouristProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.profiles[profile.TouristID]
	if !ok {
		return ErrNotFound
	}

	stored.FullName = profile.FullName
	stored.Nationality = profile.Nationality
	stored.TravelerType = profile.TravelerType
	stored.Accommodation = profile.Accommodation
	stored.Email = profile.Email
	stored.ProfileCompleted = stored.ProfileCompleted || profile.ProfileCompleted
	stored.UpdatedAt = s.now().UTC()

	s.profiles[profile.TouristID] = copyProfile(stored)
	*profile = copyProfile(stored)
	return nil
}

type MemoryDigitalIDStore struct {
	mu  sync.RWMutex
	ids map[string]model.DigitalID
}

func NewMemoryDigitalIDStore() *MemoryDigitalIDStore {
	return &MemoryDigitalIDStore{ids: make(map[string]model.DigitalID)}
}

func (s *MemoryDigitalIDStore) Create(_ context.Context, id *model.DigitalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id.TouristID]; ok {
		return ErrAlreadyExists
	}

	id.ID = uuid.New()
	stored := *id
	stored.Triggers = slices.Clone(id.Triggers)
	s.ids[id.TouristID] = stored
	return nil
}

func (s *MemoryDigitalIDStore) GetByTouristID(_ context.Context, touristID string) (*model.DigitalID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.ids[touristID]
	if !ok {
		return nil, ErrNotFound
	}
	id.Triggers = slices.Clone(id.Triggers)
	return &id, nil
}

// Count reports how many digital IDs are stored.
func (s *MemoryDigitalIDStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
