package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const digitalIDColumns = `id, tourist_profile_id, tourist_id, issue_date,
	valid_until, blockchain_hash, triggers`

// DigitalIDRepository is the PostgreSQL DigitalIDStore. The unique
// constraint on tourist_id is what guarantees one digital ID per tourist.
type DigitalIDRepository struct {
	pool *pgxpool.Pool
}

func NewDigitalIDRepository(pool *pgxpool.Pool) *DigitalIDRepository {
	return &DigitalIDRepository{pool: pool}
}

func (r *DigitalIDRepository) Create(ctx context.Context, id *model.DigitalID) error {
	triggers, err := json.Marshal(id.Triggers)
	if err != nil {
		return fmt.Errorf("failed to encode triggers for tourist_id=%s: %w", id.TouristID, err)
	}

	stmt := `
		INSERT INTO digital_ids (
			tourist_profile_id, tourist_id, issue_date,
			valid_until, blockchain_hash, triggers
		)
		VALUES (
			@tourist_profile_id, @tourist_id, @issue_date,
			@valid_until, @blockchain_hash, @triggers
		)
		ON CONFLICT (tourist_id) DO NOTHING
		RETURNING ` + digitalIDColumns

	rows, err := r.pool.Query(ctx, stmt, pgx.NamedArgs{
		"tourist_profile_id": id.TouristProfileID,
		"tourist_id":         id.TouristID,
		"issue_date":         id.IssueDate,
		"valid_until":        id.ValidUntil,
		"blockchain_hash":    id.BlockchainHash,
		"triggers":           triggers,
	})
	if err != nil {
		return fmt.Errorf("failed to execute create digital id query for tourist_id=%s: %w", id.TouristID, err)
	}

	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.DigitalID])
	if err != nil {
		return translateInsert(err, "failed to collect row from table:digital_ids for tourist_id=%s", id.TouristID)
	}

	*id = created
	return nil
}

func (r *DigitalIDRepository) GetByTouristID(ctx context.Context, touristID string) (*model.DigitalID, error) {
	stmt := `SELECT ` + digitalIDColumns + `
		FROM digital_ids
		WHERE tourist_id = @tourist_id
	`

	rows, err := r.pool.Query(ctx, stmt, pgx.NamedArgs{"tourist_id": touristID})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get digital id query for tourist_id=%s: %w", touristID, err)
	}

	id, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.DigitalID])
	if err != nil {
		return nil, translate(err, "failed to collect row from table:digital_ids for tourist_id=%s", touristID)
	}

	return &id, nil
}
