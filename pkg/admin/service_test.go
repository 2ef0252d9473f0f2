package admin

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/librarium/pkg/errors"
	"github.com/librarium/librarium/pkg/identity"
	"github.com/librarium/librarium/pkg/profile"
	"github.com/librarium/librarium/pkg/role"
)

type env struct {
	identityStore  *identity.LocalStore
	roleService    *role.RoleService
	profileService *profile.ProfileService
	service        *AdminService
}

func newEnv() *env {
	identityStore := identity.NewLocalStore(
		identity.NewInMemoryAccountRepository(),
		identity.NewTokenIssuer("test-secret", "librarium-test", time.Hour),
	)
	roleService := role.NewRoleService(role.NewInMemoryRepository())
	profileService := profile.NewProfileService(profile.NewInMemoryRepository())
	return &env{
		identityStore:  identityStore,
		roleService:    roleService,
		profileService: profileService,
		service:        NewAdminService(identityStore, roleService, profileService),
	}
}

// addUser registers an account with the given role and returns its id and a
// valid bearer token
func (e *env) addUser(t *testing.T, email, roleName string) (uuid.UUID, string) {
	t.Helper()
	ctx := context.Background()

	acct, err := e.identityStore.CreateAccount(ctx, email, "password1")
	require.NoError(t, err)
	if roleName != "" {
		_, err = e.roleService.AssignRole(ctx, acct.ID, roleName)
		require.NoError(t, err)
	}
	_, err = e.profileService.Ensure(ctx, acct.ID, email, email)
	require.NoError(t, err)

	token, err := e.identityStore.Authenticate(ctx, email, "password1")
	require.NoError(t, err)
	return acct.ID, token
}

func TestDeleteUser_AdminDeletesUser(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	_, adminToken := e.addUser(t, "admin@example.com", "admin")
	targetID, _ := e.addUser(t, "target@example.com", "user")

	err := e.service.DeleteUser(ctx, adminToken, targetID)
	require.NoError(t, err)

	// No trace of the target remains in any store
	_, err = e.identityStore.GetAccount(ctx, targetID)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	_, err = e.roleService.GetUserRole(ctx, targetID)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	_, err = e.profileService.Get(ctx, targetID)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestDeleteUser_OwnerDeletesAdmin(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	_, ownerToken := e.addUser(t, "owner@example.com", "owner")
	targetID, _ := e.addUser(t, "admin@example.com", "admin")

	require.NoError(t, e.service.DeleteUser(ctx, ownerToken, targetID))
}

func TestDeleteUser_UserCallerForbidden(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	_, userToken := e.addUser(t, "user@example.com", "user")
	targetID, _ := e.addUser(t, "target@example.com", "user")

	err := e.service.DeleteUser(ctx, userToken, targetID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))

	// Target untouched
	_, err = e.identityStore.GetAccount(ctx, targetID)
	assert.NoError(t, err)
}

func TestDeleteUser_ModeratorCallerForbidden(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	_, modToken := e.addUser(t, "mod@example.com", "moderator")
	targetID, _ := e.addUser(t, "target@example.com", "user")

	err := e.service.DeleteUser(ctx, modToken, targetID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))
}

func TestDeleteUser_AdminCannotDeleteOwner(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	_, adminToken := e.addUser(t, "admin@example.com", "admin")
	ownerID, _ := e.addUser(t, "owner@example.com", "owner")

	err := e.service.DeleteUser(ctx, adminToken, ownerID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))

	_, err = e.identityStore.GetAccount(ctx, ownerID)
	assert.NoError(t, err)
}

func TestDeleteUser_OwnerCannotBeDeletedByOwner(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	ownerID, ownerToken := e.addUser(t, "owner@example.com", "owner")

	err := e.service.DeleteUser(ctx, ownerToken, ownerID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))
}

func TestDeleteUser_InvalidToken(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	targetID, _ := e.addUser(t, "target@example.com", "user")

	err := e.service.DeleteUser(ctx, "not-a-token", targetID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthenticated))

	// No mutation happened
	_, err = e.identityStore.GetAccount(ctx, targetID)
	assert.NoError(t, err)
}

func TestDeleteUser_CallerWithoutRole(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	_, nakedToken := e.addUser(t, "naked@example.com", "")
	targetID, _ := e.addUser(t, "target@example.com", "user")

	err := e.service.DeleteUser(ctx, nakedToken, targetID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))
}

func TestDeleteUser_UnprivilegedCallerMissingTarget(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	_, userToken := e.addUser(t, "user@example.com", "user")
	_, modToken := e.addUser(t, "mod@example.com", "moderator")

	// The caller's role is checked before the target is resolved, so an
	// unprivileged caller probing a random id learns nothing about which
	// accounts exist.
	for _, token := range []string{userToken, modToken} {
		err := e.service.DeleteUser(ctx, token, uuid.New())
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden),
			"expected FORBIDDEN, got %v", err)
	}
}

func TestDeleteUser_TargetNotFound(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	_, adminToken := e.addUser(t, "admin@example.com", "admin")

	err := e.service.DeleteUser(ctx, adminToken, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestDeleteUser_TargetWithoutRole(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	_, adminToken := e.addUser(t, "admin@example.com", "admin")
	targetID, _ := e.addUser(t, "roleless@example.com", "")

	require.NoError(t, e.service.DeleteUser(ctx, adminToken, targetID))
}
