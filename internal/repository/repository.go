// Package repository persists users, tourist profiles and digital IDs.
//
// Each entity has a store interface with a PostgreSQL implementation and an
// in-memory one. Both enforce the same uniqueness rules: a second Create for
// an existing username or tourist ID fails with ErrAlreadyExists instead of
// writing, which is what makes "check then create" safe under concurrency.
package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/safe-trail/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when a Create collides with a unique key.
	ErrAlreadyExists = errors.New("record already exists")
)

// UserStore persists username/password accounts.
type UserStore interface {
	// Create inserts user and fills its ID and CreatedAt.
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// TouristProfileStore persists tourist profiles keyed by tourist ID.
type TouristProfileStore interface {
	// Create inserts profile and fills its ID and timestamps.
	Create(ctx context.Context, profile *model.TouristProfile) error
	GetByTouristID(ctx context.Context, touristID string) (*model.TouristProfile, error)
	// Update overwrites the mutable fields of the profile with profile.TouristID
	// and reloads profile from storage. ProfileCompleted is never cleared.
	Update(ctx context.Context, profile *model.TouristProfile) error
}

// DigitalIDStore persists issued digital IDs. Records are immutable.
type DigitalIDStore interface {
	// Create inserts id and fills its ID. At most one record exists per tourist ID.
	Create(ctx context.Context, id *model.DigitalID) error
	GetByTouristID(ctx context.Context, touristID string) (*model.DigitalID, error)
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
