package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/safe-trail/internal/model"
	"github.com/deppfellow/safe-trail/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository is the PostgreSQL UserStore.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	stmt := `
		INSERT INTO users (username, password_hash)
		VALUES (@username, @password_hash)
		ON CONFLICT (username) DO NOTHING
		RETURNING id, username, password_hash, created_at
	`

	rows, err := r.pool.Query(ctx, stmt, pgx.NamedArgs{
		"username":      user.Username,
		"password_hash": user.PasswordHash,
	})
	if err != nil {
		return fmt.Errorf("failed to execute create user query for username=%s: %w", user.Username, err)
	}

	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		return translateInsert(err, "failed to collect row from table:users for username=%s", user.Username)
	}

	*user = created
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	stmt := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = @username
	`

	rows, err := r.pool.Query(ctx, stmt, pgx.NamedArgs{"username": username})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get user query for username=%s: %w", username, err)
	}

	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		return nil, translate(err, "failed to collect row from table:users for username=%s", username)
	}

	return &user, nil
}

// translate maps driver errors onto the store sentinels.
func translate(err error, format string, args ...any) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case sqlerr.ErrCode(err) == sqlerr.UniqueViolation:
		return ErrAlreadyExists
	default:
		return fmt.Errorf(format+": %w", append(args, err)...)
	}
}

// translateInsert is translate for INSERT ... ON CONFLICT DO NOTHING
// RETURNING statements, where an empty result means the row already existed.
func translateInsert(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlreadyExists
	}
	return translate(err, format, args...)
}
