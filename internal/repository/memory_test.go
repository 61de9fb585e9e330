package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deppfellow/safe-trail/internal/cache"
	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx        context.Context
	users      *MemoryUserStore
	profiles   *MemoryTouristProfileStore
	digitalIDs *MemoryDigitalIDStore
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = NewMemoryUserStore()
	s.profiles = NewMemoryTouristProfileStore()
	s.digitalIDs = NewMemoryDigitalIDStore()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) TestUserUniqueUsername() {
	first := &model.User{Username: "a", PasswordHash: "h1"}
	s.Require().NoError(s.users.Create(s.ctx, first))
	s.NotEqual(uuid.Nil, first.ID)

	err := s.users.Create(s.ctx, &model.User{Username: "a", PasswordHash: "h2"})
	s.ErrorIs(err, ErrAlreadyExists)

	got, err := s.users.GetByUsername(s.ctx, "a")
	s.Require().NoError(err)
	s.Equal("h1", got.PasswordHash)

	_, err = s.users.GetByUsername(s.ctx, "missing")
	s.True(IsNotFound(err))
}

func (s *MemoryStoreSuite) TestProfileCompletionLatch() {
	profile := &model.TouristProfile{TouristID: "T1", FullName: "Asha"}
	s.Require().NoError(s.profiles.Create(s.ctx, profile))

	profile.Accommodation = "Hotel Ganga"
	profile.ProfileCompleted = true
	s.Require().NoError(s.profiles.Update(s.ctx, profile))
	s.True(profile.ProfileCompleted)

	profile.ProfileCompleted = false
	s.Require().NoError(s.profiles.Update(s.ctx, profile))
	s.True(profile.ProfileCompleted, "update must not clear completion")

	stored, err := s.profiles.GetByTouristID(s.ctx, "T1")
	s.Require().NoError(err)
	s.True(stored.ProfileCompleted)
}

func (s *MemoryStoreSuite) TestProfileUpdateUnknown() {
	err := s.profiles.Update(s.ctx, &model.TouristProfile{TouristID: "nobody"})
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemoryStoreSuite) TestReturnedProfilesAreCopies() {
	email := "asha@example.com"
	s.Require().NoError(s.profiles.Create(s.ctx, &model.TouristProfile{TouristID: "T1", FullName: "Asha", Email: &email}))

	got, err := s.profiles.GetByTouristID(s.ctx, "T1")
	s.Require().NoError(err)
	got.FullName = "Mallory"
	*got.Email = "mallory@example.com"

	again, err := s.profiles.GetByTouristID(s.ctx, "T1")
	s.Require().NoError(err)
	s.Equal("Asha", again.FullName)
	s.Equal("asha@example.com", *again.Email)
}

func (s *MemoryStoreSuite) TestDigitalIDAtMostOnceUnderContention() {
	const writers = 32

	var (
		wg      sync.WaitGroup
		created atomic.Int32
		lost    atomic.Int32
	)

	for rangeIter := 0; rangeIter < writers; rangeIter++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.digitalIDs.Create(s.ctx, &model.DigitalID{TouristID: "T1", BlockchainHash: "0x00"})
			switch {
			case err == nil:
				created.Add(1)
			case IsAlreadyExists(err):
				lost.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), created.Load())
	s.Equal(int32(writers-1), lost.Load())
	s.Equal(1, s.digitalIDs.Count())
}

type countingStore struct {
	DigitalIDStore
	reads atomic.Int32
}

func (c *countingStore) GetByTouristID(ctx context.Context, touristID string) (*model.DigitalID, error) {
	c.reads.Add(1)
	return c.DigitalIDStore.GetByTouristID(ctx, touristID)
}

func TestCachedDigitalIDStore(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	backing := &countingStore{DigitalIDStore: NewMemoryDigitalIDStore()}
	store := NewCachedDigitalIDStore(backing, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, &logger)

	_, err := store.GetByTouristID(ctx, "T1")
	require.ErrorIs(t, err, ErrNotFound)

	issued := model.NewDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	id := &model.DigitalID{
		TouristID:      "T1",
		IssueDate:      issued,
		ValidUntil:     issued.AddDays(30),
		BlockchainHash: "0xabc",
		Triggers:       []model.Trigger{{Type: model.TriggerProfileCompletion, Source: model.SourcePlatform, Date: issued}},
	}
	require.NoError(t, store.Create(ctx, id))

	for rangeIter := 0; rangeIter < 3; rangeIter++ {
		got, err := store.GetByTouristID(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, id.ID, got.ID)
		assert.Equal(t, "2025-01-31", got.ValidUntil.String())
		require.Len(t, got.Triggers, 1)
	}

	// One miss before issuance; every read after Create is served from cache.
	assert.Equal(t, int32(1), backing.reads.Load())

	err = store.Create(ctx, &model.DigitalID{TouristID: "T1"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}
