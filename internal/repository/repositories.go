package repository

import (
	"time"

	"github.com/deppfellow/safe-trail/internal/cache"
	"github.com/deppfellow/safe-trail/internal/server"
)

// memoryCacheCleanup is how often the in-process cache purges expired entries.
const memoryCacheCleanup = 10 * time.Minute

// Repositories groups every store the services depend on.
type Repositories struct {
	Users      UserStore
	Profiles   TouristProfileStore
	DigitalIDs DigitalIDStore
}

// NewRepositories picks the backend from the server's resources: PostgreSQL
// when a pool is open, process memory otherwise. Digital ID reads always go
// through a cache, shared in Redis when available.
func NewRepositories(s *server.Server) *Repositories {
	var repos *Repositories

	if s.DB != nil {
		repos = &Repositories{
			Users:      NewUserRepository(s.DB.Pool),
			Profiles:   NewTouristProfileRepository(s.DB.Pool),
			DigitalIDs: NewDigitalIDRepository(s.DB.Pool),
		}
	} else {
		repos = NewMemoryRepositories()
	}

	ttl := s.Config.Cache.DigitalIDTTL

	var c cache.Cache
	if s.Redis != nil {
		c = cache.NewRedisCache(s.Redis, "safetrail:")
	} else {
		c = cache.NewMemoryCache(ttl, memoryCacheCleanup)
	}

	repos.DigitalIDs = NewCachedDigitalIDStore(repos.DigitalIDs, c, ttl, s.Logger)
	return repos
}

// NewMemoryRepositories returns uncached in-memory stores.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Users:      NewMemoryUserStore(),
		Profiles:   NewMemoryTouristProfileStore(),
		DigitalIDs: NewMemoryDigitalIDStore(),
	}
}
