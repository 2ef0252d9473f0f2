package identity

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/librarium/librarium/pkg/errors"
)

// PostgresAccountRepository implements AccountRepository using pgx
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAccountRepository creates a new PostgreSQL-based account repository
func NewPostgresAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// CreateAccount inserts a new account row
func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, arg StoredAccount) (StoredAccount, error) {
	if arg.ID == uuid.Nil {
		arg.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (id, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, password_hash, created_at`,
		arg.ID, strings.ToLower(arg.Email), arg.PasswordHash)

	var acct StoredAccount
	if err := row.Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &acct.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return StoredAccount{}, errors.Conflict("email already registered: " + arg.Email)
		}
		return StoredAccount{}, errors.Downstream(err, "failed to create account")
	}
	return acct, nil
}

// GetAccountByID retrieves an account by id
func (r *PostgresAccountRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (StoredAccount, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM accounts WHERE id = $1`, id)

	var acct StoredAccount
	if err := row.Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &acct.CreatedAt); err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return StoredAccount{}, errors.NotFound("account", id.String())
		}
		return StoredAccount{}, errors.Downstream(err, "failed to get account")
	}
	return acct, nil
}

// GetAccountByEmail retrieves an account by email
func (r *PostgresAccountRepository) GetAccountByEmail(ctx context.Context, email string) (StoredAccount, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM accounts WHERE email = $1`,
		strings.ToLower(email))

	var acct StoredAccount
	if err := row.Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &acct.CreatedAt); err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return StoredAccount{}, errors.NotFound("account", email)
		}
		return StoredAccount{}, errors.Downstream(err, "failed to get account")
	}
	return acct, nil
}

// DeleteAccount removes an account row
func (r *PostgresAccountRepository) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return errors.Downstream(err, "failed to delete account")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("account", id.String())
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == "23505"
}
