package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/librarium/pkg/authz"
	"github.com/librarium/librarium/pkg/errors"
	"github.com/librarium/librarium/pkg/identity"
	"github.com/librarium/librarium/pkg/profile"
	"github.com/librarium/librarium/pkg/role"
)

type fixture struct {
	identityStore  *identity.LocalStore
	roleService    *role.RoleService
	profileService *profile.ProfileService
	service        *Service
}

func newFixture() *fixture {
	identityStore := identity.NewLocalStore(
		identity.NewInMemoryAccountRepository(),
		identity.NewTokenIssuer("test-secret", "librarium-test", time.Hour),
	)
	roleService := role.NewRoleService(role.NewInMemoryRepository())
	profileService := profile.NewProfileService(profile.NewInMemoryRepository())

	return &fixture{
		identityStore:  identityStore,
		roleService:    roleService,
		profileService: profileService,
		service:        NewService(identityStore, roleService, profileService, Config{}),
	}
}

func TestEnsureOwner_CreatesDefaultOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	result, err := f.service.EnsureOwner(ctx)
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, DefaultOwnerEmail, result.Email)
	assert.Equal(t, DefaultOwnerPassword, result.Password)
	require.NotEqual(t, uuid.Nil, result.UserID)

	// Identity, role and profile all exist
	acct, err := f.identityStore.GetAccount(ctx, result.UserID)
	require.NoError(t, err)
	assert.Equal(t, DefaultOwnerEmail, acct.Email)

	assignedRole, err := f.roleService.GetUserRole(ctx, result.UserID)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleOwner, assignedRole)

	_, err = f.profileService.Get(ctx, result.UserID)
	require.NoError(t, err)

	// The default credential authenticates
	_, err = f.identityStore.Authenticate(ctx, DefaultOwnerEmail, DefaultOwnerPassword)
	require.NoError(t, err)
}

func TestEnsureOwner_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	first, err := f.service.EnsureOwner(ctx)
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := f.service.EnsureOwner(ctx)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Empty(t, second.Password)

	count, err := f.roleService.CountByRole(ctx, authz.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestEnsureOwner_DefaultEmailTakenByOtherAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	// The default email is already registered as a plain user
	acct, err := f.identityStore.CreateAccount(ctx, DefaultOwnerEmail, "unrelated")
	require.NoError(t, err)
	_, err = f.roleService.AssignRole(ctx, acct.ID, "user")
	require.NoError(t, err)

	_, err = f.service.EnsureOwner(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))

	// The unrelated account kept its role
	assignedRole, err := f.roleService.GetUserRole(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleUser, assignedRole)
}

func TestEnsureOwner_Concurrent(t *testing.T) {
	ctx := context.Background()

	// All invocations share the stores but each builds its own service, as
	// concurrent processes would.
	identityStore := identity.NewLocalStore(
		identity.NewInMemoryAccountRepository(),
		identity.NewTokenIssuer("test-secret", "librarium-test", time.Hour),
	)
	roleService := role.NewRoleService(role.NewInMemoryRepository())
	profileService := profile.NewProfileService(profile.NewInMemoryRepository())

	const n = 12
	var wg sync.WaitGroup
	results := make([]Result, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Distinct emails so identity creation itself cannot serialize
			// the race; only the role registry's constraint decides.
			cfg := Config{OwnerEmail: fmt.Sprintf("owner-%d@admin.com", i)}
			svc := NewService(identityStore, roleService, profileService, cfg)
			results[i], errs[i] = svc.EnsureOwner(ctx)
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			assert.True(t, errors.IsCode(errs[i], errors.ErrCodeConflict),
				"losers must fail with CONFLICT, got %v", errs[i])
			continue
		}
		if results[i].Created {
			created++
		}
	}
	assert.Equal(t, 1, created, "exactly one invocation creates the owner")

	count, err := roleService.CountByRole(ctx, authz.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// failingRoleRepository fails every Assign call with a downstream error
type failingRoleRepository struct {
	role.Repository
}

func (f *failingRoleRepository) Assign(ctx context.Context, userID uuid.UUID, r authz.Role) (role.Assignment, error) {
	return role.Assignment{}, errors.Downstream(context.DeadlineExceeded, "role registry unavailable")
}

func TestEnsureOwner_CompensatesOnRoleFailure(t *testing.T) {
	ctx := context.Background()

	accountRepo := identity.NewInMemoryAccountRepository()
	identityStore := identity.NewLocalStore(accountRepo, identity.NewTokenIssuer("test-secret", "librarium-test", time.Hour))
	roleService := role.NewRoleService(&failingRoleRepository{Repository: role.NewInMemoryRepository()})
	profileService := profile.NewProfileService(profile.NewInMemoryRepository())

	svc := NewService(identityStore, roleService, profileService, Config{})

	_, err := svc.EnsureOwner(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDownstream))

	// The just-created identity was rolled back: no credentialed-but-roleless
	// account remains.
	_, err = accountRepo.GetAccountByEmail(ctx, DefaultOwnerEmail)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

// stuckIdentityStore refuses deletes, simulating an identity service outage
// right after account creation
type stuckIdentityStore struct {
	identity.Store
}

func (s *stuckIdentityStore) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return errors.Downstream(context.DeadlineExceeded, "identity service unreachable")
}

func TestEnsureOwner_ReportsFailedCompensation(t *testing.T) {
	ctx := context.Background()

	accountRepo := identity.NewInMemoryAccountRepository()
	localStore := identity.NewLocalStore(accountRepo, identity.NewTokenIssuer("test-secret", "librarium-test", time.Hour))
	identityStore := &stuckIdentityStore{Store: localStore}
	roleService := role.NewRoleService(&failingRoleRepository{Repository: role.NewInMemoryRepository()})
	profileService := profile.NewProfileService(profile.NewInMemoryRepository())

	svc := NewService(identityStore, roleService, profileService, Config{})

	_, err := svc.EnsureOwner(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
	assert.Contains(t, err.Error(), "manual repair required")
}
