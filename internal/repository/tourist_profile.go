package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const touristProfileColumns = `id, tourist_id, full_name, nationality, traveler_type,
	accommodation, email, profile_completed, created_at, updated_at`

// TouristProfileRepository is the PostgreSQL TouristProfileStore.
type TouristProfileRepository struct {
	pool *pgxpool.Pool
}

func NewTouristProfileRepository(pool *pgxpool.Pool) *TouristProfileRepository {
	return &TouristProfileRepository{pool: pool}
}

func (r *TouristProfileRepository) Create(ctx context.Context, profile *model.TouristProfile) error {
	stmt := `
		INSERT INTO tourist_profiles (
			tourist_id, full_name, nationality, traveler_type,
			accommodation, email, profile_completed
		)
		VALUES (
			@tourist_id, @full_name, @nationality, @traveler_type,
			@accommodation, @email, @profile_completed
		)
		ON CONFLICT (tourist_id) DO NOTHING
		RETURNING ` + touristProfileColumns

	rows, err := r.pool.Query(ctx, stmt, pgx.NamedArgs{
		"tourist_id":        profile.TouristID,
		"full_name":         profile.FullName,
		"nationality":       profile.Nationality,
		"traveler_type":     profile.TravelerType,
		"accommodation":     profile.Accommodation,
		"email":             profile.Email,
		"profile_completed": profile.ProfileCompleted,
	})
	if err != nil {
		return fmt.Errorf("failed to execute create profile query for tourist_id=%s: %w", profile.TouristID, err)
	}

	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.TouristProfile])
	if err != nil {
		return translateInsert(err, "failed to collect row from table:tourist_profiles for tourist_id=%s", profile.TouristID)
	}

	*profile = created
	return nil
}

func (r *TouristProfileRepository) GetByTouristID(ctx context.Context, touristID string) (*model.TouristProfile, error) {
	stmt := `SELECT ` + touristProfileColumns + `
		FROM tourist_profiles
		WHERE tourist_id = @tourist_id
	`

	rows, err := r.pool.Query(ctx, stmt, pgx.NamedArgs{"tourist_id": touristID})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get profile query for tourist_id=%s: %w", touristID, err)
	}

	profile, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.TouristProfile])
	if err != nil {
		return nil, translate(err, "failed to collect row from table:tourist_profiles for tourist_id=%s", touristID)
	}

	return &profile, nil
}

func (r *TouristProfileRepository) Update(ctx context.Context, profile *model.TouristProfile) error {
	// profile_completed is OR-ed so a write can never clear the latch.
	stmt := `
		UPDATE tourist_profiles
		SET full_name         = @full_name,
		    nationality       = @nationality,
		    traveler_type     = @traveler_type,
		    accommodation     = @accommodation,
		    email             = @email,
		    profile_completed = profile_completed OR @profile_completed,
		    updated_at        = NOW()
		WHERE tourist_id = @tourist_id
		RETURNING ` + touristProfileColumns

	rows, err := r.pool.Query(ctx, stmt, pgx.NamedArgs{
		"tourist_id":        profile.TouristID,
		"full_name":         profile.FullName,
		"nationality":       profile.Nationality,
		"traveler_type":     profile.TravelerType,
		"accommodation":     profile.Accommodation,
		"email":             profile.Email,
		"profile_completed": profile.ProfileCompleted,
	})
	if err != nil {
		return fmt.Errorf("failed to execute update profile query for tourist_id=%s: %w", profile.TouristID, err)
	}

	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.TouristProfile])
	if err != nil {
		return translate(err, "failed to collect row from table:tourist_profiles for tourist_id=%s", profile.TouristID)
	}

	*profile = updated
	return nil
}
