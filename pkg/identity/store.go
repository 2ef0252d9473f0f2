package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account is the identity store's view of a user
type Account struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the identity operations the core consumes. Implementations
// map their failures onto the errors package taxonomy: an unverifiable token
// is UNAUTHENTICATED, a missing account is NOT_FOUND, a duplicate email is
// CONFLICT, and any network or store failure is DOWNSTREAM_ERROR.
type Store interface {
	// VerifyToken resolves a bearer token to the account id it was issued for
	VerifyToken(ctx context.Context, token string) (uuid.UUID, error)

	// GetAccount looks up an account by id
	GetAccount(ctx context.Context, id uuid.UUID) (Account, error)

	// CreateAccount registers a new credentialed account
	CreateAccount(ctx context.Context, email, password string) (Account, error)

	// DeleteAccount permanently removes an account. Irreversible.
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}
