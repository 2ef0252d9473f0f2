package role

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/librarium/librarium/pkg/authz"
	"github.com/librarium/librarium/pkg/errors"
)

// PostgresRepository implements Repository using pgx. The schema carries a
// unique index over role = 'owner' (see migrations/librarium_db.sql), so the
// single-owner invariant holds even when two callers race past their
// check-then-act sequence: one insert succeeds, the other gets a CONFLICT.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-based role repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByUserID returns the user's assignment
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (Assignment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT user_id, role, created_at FROM role_assignments WHERE user_id = $1`, userID)
	return scanAssignment(row, userID.String())
}

// Assign creates or replaces the user's role assignment
func (r *PostgresRepository) Assign(ctx context.Context, userID uuid.UUID, role authz.Role) (Assignment, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO role_assignments (user_id, role)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role
		 RETURNING user_id, role, created_at`,
		userID, string(role))

	var a Assignment
	var roleName string
	if err := row.Scan(&a.UserID, &roleName, &a.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Assignment{}, errors.Conflict("an owner assignment already exists")
		}
		return Assignment{}, errors.Downstream(err, "failed to assign role")
	}
	a.Role = authz.Role(roleName)
	return a, nil
}

// Remove deletes the user's assignment
func (r *PostgresRepository) Remove(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM role_assignments WHERE user_id = $1`, userID)
	if err != nil {
		return errors.Downstream(err, "failed to remove role assignment")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("role assignment", userID.String())
	}
	return nil
}

// FindOwner returns the single owner assignment
func (r *PostgresRepository) FindOwner(ctx context.Context) (Assignment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT user_id, role, created_at FROM role_assignments WHERE role = $1`,
		string(authz.RoleOwner))
	return scanAssignment(row, string(authz.RoleOwner))
}

// CountByRole counts assignments holding the given role
func (r *PostgresRepository) CountByRole(ctx context.Context, role authz.Role) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM role_assignments WHERE role = $1`, string(role)).Scan(&count)
	if err != nil {
		return 0, errors.Downstream(err, "failed to count role assignments")
	}
	return count, nil
}

func scanAssignment(row pgx.Row, identifier string) (Assignment, error) {
	var a Assignment
	var roleName string
	if err := row.Scan(&a.UserID, &roleName, &a.CreatedAt); err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return Assignment{}, errors.NotFound("role assignment", identifier)
		}
		return Assignment{}, errors.Downstream(err, "failed to query role assignment")
	}
	a.Role = authz.Role(roleName)
	return a, nil
}
