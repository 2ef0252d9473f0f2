package bootstrap

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/librarium/librarium/pkg/authz"
	"github.com/librarium/librarium/pkg/errors"
	"github.com/librarium/librarium/pkg/identity"
	"github.com/librarium/librarium/pkg/profile"
	"github.com/librarium/librarium/pkg/role"
)

// Default owner credentials. The bootstrap operation is parameterless: the
// first invocation against an empty store always produces this account.
const (
	DefaultOwnerEmail       = "admin@admin.com"
	DefaultOwnerPassword    = "admin123"
	DefaultOwnerDisplayName = "Owner"
)

// Config overrides the default owner credentials for a deployment
type Config struct {
	OwnerEmail       string `env:"BOOTSTRAP_OWNER_EMAIL" env-default:"admin@admin.com"`
	OwnerPassword    string `env:"BOOTSTRAP_OWNER_PASSWORD" env-default:"admin123"`
	OwnerDisplayName string `env:"BOOTSTRAP_OWNER_NAME" env-default:"Owner"`
}

// Result reports what the bootstrap invocation did
type Result struct {
	// Created is false when an owner already existed and nothing was done
	Created bool
	UserID  uuid.UUID
	Email   string
	// Password is only populated when the owner was created on this call
	Password string
}

// Service guarantees exactly one owner account exists. Safe to invoke on
// every service start; the single-owner invariant itself is enforced by the
// role registry's storage constraint, not by this service's pre-check.
type Service struct {
	identityStore  identity.Store
	roleService    *role.RoleService
	profileService *profile.ProfileService
	cfg            Config
}

// NewService creates an owner bootstrap service
func NewService(identityStore identity.Store, roleService *role.RoleService, profileService *profile.ProfileService, cfg Config) *Service {
	if cfg.OwnerEmail == "" {
		cfg.OwnerEmail = DefaultOwnerEmail
	}
	if cfg.OwnerPassword == "" {
		cfg.OwnerPassword = DefaultOwnerPassword
	}
	if cfg.OwnerDisplayName == "" {
		cfg.OwnerDisplayName = DefaultOwnerDisplayName
	}
	return &Service{
		identityStore:  identityStore,
		roleService:    roleService,
		profileService: profileService,
		cfg:            cfg,
	}
}

// EnsureOwner creates the owner account if none exists and reports whether
// it did. Idempotent: a second call finds the existing owner and returns
// Created=false without touching any store.
func (s *Service) EnsureOwner(ctx context.Context) (Result, error) {
	// Fast path: an owner already exists. This check is an optimization;
	// two racing invocations can both miss here and the storage constraint
	// settles it below.
	existing, err := s.roleService.FindOwner(ctx)
	if err == nil {
		slog.Info("Owner bootstrap skipped, owner exists", "userId", existing.UserID)
		return Result{Created: false, UserID: existing.UserID, Email: s.cfg.OwnerEmail}, nil
	}
	if !errors.IsCode(err, errors.ErrCodeNotFound) {
		return Result{}, errors.Wrap(err, errors.ErrCodeDownstream, "failed to check for existing owner")
	}

	// No owner found: create the identity with the default credential. A
	// CONFLICT here means the default email is already registered under a
	// different role; surfacing it beats silently reassigning roles to an
	// unrelated account.
	acct, err := s.identityStore.CreateAccount(ctx, s.cfg.OwnerEmail, s.cfg.OwnerPassword)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeConflict) {
			return Result{}, errors.Conflict("default owner email is already registered to another account")
		}
		return Result{}, err
	}

	if _, err := s.roleService.AssignRole(ctx, acct.ID, string(authz.RoleOwner)); err != nil {
		return Result{}, s.compensate(ctx, acct.ID, err)
	}

	// Profile creation is an idempotent upsert; the profile store also
	// creates rows lazily, so a failure here leaves a consistent system.
	// Logged as a partial failure, not rolled back.
	if _, err := s.profileService.Ensure(ctx, acct.ID, s.cfg.OwnerDisplayName, s.cfg.OwnerEmail); err != nil {
		slog.Warn("Owner bootstrap partial failure: profile upsert failed, will be created lazily",
			"operation", "bootstrap-owner", "userId", acct.ID, "err", err)
	}

	slog.Info("Owner bootstrap created the owner account", "userId", acct.ID, "email", acct.Email)
	return Result{
		Created:  true,
		UserID:   acct.ID,
		Email:    s.cfg.OwnerEmail,
		Password: s.cfg.OwnerPassword,
	}, nil
}

// compensate deletes the identity created by a bootstrap attempt whose role
// assignment failed, so no credentialed-but-roleless account survives. When
// compensation itself fails the returned error names the orphaned account
// instead of pretending the rollback worked.
func (s *Service) compensate(ctx context.Context, accountID uuid.UUID, cause error) error {
	if delErr := s.identityStore.DeleteAccount(ctx, accountID); delErr != nil {
		slog.Error("Owner bootstrap left an inconsistent state: role assignment and compensating delete both failed",
			"operation", "bootstrap-owner", "userId", accountID, "assignErr", cause, "deleteErr", delErr)
		return errors.Wrapf(cause, errors.ErrCodeInternal,
			"role assignment failed and compensating delete of account %s also failed (%v); manual repair required",
			accountID, delErr)
	}

	slog.Warn("Owner bootstrap rolled back identity after role assignment failure",
		"operation", "bootstrap-owner", "userId", accountID, "err", cause)

	if errors.IsCode(cause, errors.ErrCodeConflict) {
		// Lost the race: another invocation created the owner between our
		// check and our assignment. The invariant held at the storage layer.
		return errors.Conflict("an owner was created concurrently")
	}
	return errors.Wrap(cause, errors.ErrCodeDownstream, "failed to assign owner role")
}
