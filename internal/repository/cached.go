package repository

import (
	"context"
	"time"

	"github.com/deppfellow/safe-trail/internal/cache"
	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/rs/zerolog"
)

const digitalIDCachePrefix = "digital_id:"

// CachedDigitalIDStore is a read-through cache in front of a DigitalIDStore.
// Digital IDs never change once issued, so entries are only ever added.
// Misses are not cached because an ID may be issued at any moment.
type CachedDigitalIDStore struct {
	next   DigitalIDStore
	cache  cache.Cache
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewCachedDigitalIDStore(next DigitalIDStore, c cache.Cache, ttl time.Duration, logger *zerolog.Logger) *CachedDigitalIDStore {
	return &CachedDigitalIDStore{next: next, cache: c, ttl: ttl, logger: logger}
}

func (s *CachedDigitalIDStore) Create(ctx context.Context, id *model.DigitalID) error {
	if err := s.next.Create(ctx, id); err != nil {
		return err
	}
	s.store(ctx, id)
	return nil
}

func (s *CachedDigitalIDStore) GetByTouristID(ctx context.Context, touristID string) (*model.DigitalID, error) {
	var cached model.DigitalID
	hit, err := s.cache.Get(ctx, digitalIDCachePrefix+touristID, &cached)
	if err != nil {
		// A broken cache degrades to direct reads.
		s.logger.Warn().Err(err).Str("tourist_id", touristID).Msg("digital id cache read failed")
	}
	if hit {
		return &cached, nil
	}

	id, err := s.next.GetByTouristID(ctx, touristID)
	if err != nil {
		return nil, err
	}

	s.store(ctx, id)
	return id, nil
}

func (s *CachedDigitalIDStore) store(ctx context.Context, id *model.DigitalID) {
	if err := s.cache.Set(ctx, digitalIDCachePrefix+id.TouristID, id, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("tourist_id", id.TouristID).Msg("digital id cache write failed")
	}
}
