package profile

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/librarium/librarium/pkg/errors"
)

// PostgresRepository implements Repository using pgx
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-based profile repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Upsert creates the profile if absent, otherwise refreshes its fields
func (r *PostgresRepository) Upsert(ctx context.Context, arg UpsertParams) (Profile, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO profiles (user_id, display_name, email)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE
		     SET display_name = EXCLUDED.display_name,
		         email = EXCLUDED.email,
		         updated_at = now()
		 RETURNING user_id, display_name, COALESCE(email, ''), status, COALESCE(phone, ''), created_at, updated_at`,
		arg.UserID, arg.DisplayName, arg.Email)
	return scanProfile(row, arg.UserID.String())
}

// GetByUserID retrieves a profile
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (Profile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT user_id, display_name, COALESCE(email, ''), status, COALESCE(phone, ''), created_at, updated_at
		 FROM profiles WHERE user_id = $1`, userID)
	return scanProfile(row, userID.String())
}

// Delete removes a profile
func (r *PostgresRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return errors.Downstream(err, "failed to delete profile")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("profile", userID.String())
	}
	return nil
}

func scanProfile(row pgx.Row, identifier string) (Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.DisplayName, &p.Email, &p.Status, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return Profile{}, errors.NotFound("profile", identifier)
		}
		return Profile{}, errors.Downstream(err, "failed to query profile")
	}
	return p, nil
}
