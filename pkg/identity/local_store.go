package identity

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/librarium/librarium/pkg/errors"
)

// LocalStore is the self-hosted identity store: credentialed accounts with
// bcrypt password hashes and HS256 bearer tokens.
type LocalStore struct {
	repo   AccountRepository
	issuer *TokenIssuer
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates a self-hosted identity store
func NewLocalStore(repo AccountRepository, issuer *TokenIssuer) *LocalStore {
	return &LocalStore{
		repo:   repo,
		issuer: issuer,
	}
}

// VerifyToken resolves a bearer token to an account id. The account is
// re-read so a token issued before deletion stops working immediately.
func (s *LocalStore) VerifyToken(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, errors.Unauthenticated("missing bearer token")
	}

	accountID, err := s.issuer.ParseToken(token)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.ErrCodeUnauthenticated, "invalid bearer token")
	}

	if _, err := s.repo.GetAccountByID(ctx, accountID); err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return uuid.Nil, errors.Unauthenticated("token refers to a deleted account")
		}
		return uuid.Nil, err
	}
	return accountID, nil
}

// GetAccount looks up an account by id
func (s *LocalStore) GetAccount(ctx context.Context, id uuid.UUID) (Account, error) {
	stored, err := s.repo.GetAccountByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	return Account{ID: stored.ID, Email: stored.Email, CreatedAt: stored.CreatedAt}, nil
}

// CreateAccount registers a new account with a bcrypt-hashed password
func (s *LocalStore) CreateAccount(ctx context.Context, email, password string) (Account, error) {
	if email == "" {
		return Account{}, errors.InvalidInput("email", "is required")
	}
	if password == "" {
		return Account{}, errors.InvalidInput("password", "is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to hash password")
	}

	stored, err := s.repo.CreateAccount(ctx, StoredAccount{Email: email, PasswordHash: hash})
	if err != nil {
		return Account{}, err
	}

	slog.Info("Account created", "accountId", stored.ID, "email", stored.Email)
	return Account{ID: stored.ID, Email: stored.Email, CreatedAt: stored.CreatedAt}, nil
}

// DeleteAccount permanently removes an account
func (s *LocalStore) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteAccount(ctx, id)
}

// Authenticate verifies an email/password pair and issues a bearer token
func (s *LocalStore) Authenticate(ctx context.Context, email, password string) (string, error) {
	stored, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return "", errors.Unauthenticated("invalid credentials")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte(password)); err != nil {
		return "", errors.Unauthenticated("invalid credentials")
	}

	token, err := s.issuer.IssueToken(stored.ID)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to issue token")
	}
	return token, nil
}
