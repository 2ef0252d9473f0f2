package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/librarium/librarium/pkg/errors"
)

// InMemoryAccountRepository implements AccountRepository using in-memory
// storage. Used by tests and the no-database dev server.
type InMemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]StoredAccount
	byEmail  map[string]uuid.UUID
}

// NewInMemoryAccountRepository creates a new in-memory account repository
func NewInMemoryAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{
		accounts: make(map[uuid.UUID]StoredAccount),
		byEmail:  make(map[string]uuid.UUID),
	}
}

// CreateAccount creates a new account, rejecting duplicate emails
func (r *InMemoryAccountRepository) CreateAccount(ctx context.Context, arg StoredAccount) (StoredAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(arg.Email)
	if _, exists := r.byEmail[key]; exists {
		return StoredAccount{}, errors.Conflict("email already registered: " + arg.Email)
	}

	if arg.ID == uuid.Nil {
		arg.ID = uuid.New()
	}
	if arg.CreatedAt.IsZero() {
		arg.CreatedAt = time.Now()
	}

	r.accounts[arg.ID] = arg
	r.byEmail[key] = arg.ID
	return arg, nil
}

// GetAccountByID retrieves an account by id
func (r *InMemoryAccountRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (StoredAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accounts[id]
	if !ok {
		return StoredAccount{}, errors.NotFound("account", id.String())
	}
	return acct, nil
}

// GetAccountByEmail retrieves an account by email
func (r *InMemoryAccountRepository) GetAccountByEmail(ctx context.Context, email string) (StoredAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return StoredAccount{}, errors.NotFound("account", email)
	}
	return r.accounts[id], nil
}

// DeleteAccount removes an account
func (r *InMemoryAccountRepository) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[id]
	if !ok {
		return errors.NotFound("account", id.String())
	}
	delete(r.accounts, id)
	delete(r.byEmail, strings.ToLower(acct.Email))
	return nil
}
