package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StoredAccount is an account row including its credential hash. Only the
// self-hosted identity store sees this type; the hash never crosses the
// Store interface.
type StoredAccount struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// AccountRepository defines the persistence operations for self-hosted accounts
type AccountRepository interface {
	CreateAccount(ctx context.Context, arg StoredAccount) (StoredAccount, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (StoredAccount, error)
	GetAccountByEmail(ctx context.Context, email string) (StoredAccount, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}
