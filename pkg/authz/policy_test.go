package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, name := range []string{"user", "moderator", "admin", "owner"} {
		role, err := ParseRole(name)
		assert.NoError(t, err)
		assert.Equal(t, Role(name), role)
	}

	_, err := ParseRole("superuser")
	assert.Error(t, err)
}

func TestDecide_AccountActions(t *testing.T) {
	caller := uuid.New()
	target := uuid.New()

	tests := []struct {
		name    string
		in      Input
		allowed bool
	}{
		{
			name: "owner deletes admin account",
			in: Input{
				CallerID: caller, CallerRole: RoleOwner,
				Action:          ActionDeleteAccount,
				ResourceOwnerID: target, TargetRole: RoleAdmin,
			},
			allowed: true,
		},
		{
			name: "owner cannot delete owner through generic path",
			in: Input{
				CallerID: caller, CallerRole: RoleOwner,
				Action:          ActionDeleteAccount,
				ResourceOwnerID: caller, TargetRole: RoleOwner,
			},
			allowed: false,
		},
		{
			name: "owner grants owner role",
			in: Input{
				CallerID: caller, CallerRole: RoleOwner,
				Action:          ActionGrantOwner,
				ResourceOwnerID: target, TargetRole: RoleUser,
			},
			allowed: true,
		},
		{
			name: "admin deletes regular user",
			in: Input{
				CallerID: caller, CallerRole: RoleAdmin,
				Action:          ActionDeleteAccount,
				ResourceOwnerID: target, TargetRole: RoleUser,
			},
			allowed: true,
		},
		{
			name: "admin cannot delete owner",
			in: Input{
				CallerID: caller, CallerRole: RoleAdmin,
				Action:          ActionDeleteAccount,
				ResourceOwnerID: target, TargetRole: RoleOwner,
			},
			allowed: false,
		},
		{
			name: "admin cannot grant owner role",
			in: Input{
				CallerID: caller, CallerRole: RoleAdmin,
				Action:          ActionGrantOwner,
				ResourceOwnerID: target, TargetRole: RoleUser,
			},
			allowed: false,
		},
		{
			name: "admin reassigns non-owner role",
			in: Input{
				CallerID: caller, CallerRole: RoleAdmin,
				Action:          ActionAssignRole,
				ResourceOwnerID: target, TargetRole: RoleModerator,
			},
			allowed: true,
		},
		{
			name: "moderator cannot delete accounts",
			in: Input{
				CallerID: caller, CallerRole: RoleModerator,
				Action:          ActionDeleteAccount,
				ResourceOwnerID: target, TargetRole: RoleUser,
			},
			allowed: false,
		},
		{
			name: "user cannot delete accounts, even their own",
			in: Input{
				CallerID: caller, CallerRole: RoleUser,
				Action:          ActionDeleteAccount,
				ResourceOwnerID: caller, TargetRole: RoleUser,
			},
			allowed: false,
		},
		{
			name: "user modifies own account",
			in: Input{
				CallerID: caller, CallerRole: RoleUser,
				Action:          ActionModifyAccount,
				ResourceOwnerID: caller, TargetRole: RoleUser,
			},
			allowed: true,
		},
		{
			name: "unknown role is denied",
			in: Input{
				CallerID: caller, CallerRole: Role("ghost"),
				Action:          ActionReadResource,
				ResourceOwnerID: target,
			},
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(tt.in)
			assert.Equal(t, tt.allowed, decision.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, decision.Reason)
			}
		})
	}
}

func TestDecide_ResourceActions(t *testing.T) {
	ownerOfResource := uuid.New()
	someoneElse := uuid.New()

	t.Run("user mutates own resource", func(t *testing.T) {
		decision := Decide(Input{
			CallerID:        ownerOfResource,
			CallerRole:      RoleUser,
			Action:          ActionUpdateResource,
			ResourceOwnerID: ownerOfResource,
		})
		assert.True(t, decision.Allowed)
	})

	t.Run("user cannot mutate another user's resource", func(t *testing.T) {
		decision := Decide(Input{
			CallerID:        someoneElse,
			CallerRole:      RoleUser,
			Action:          ActionDeleteResource,
			ResourceOwnerID: ownerOfResource,
		})
		assert.False(t, decision.Allowed)
	})

	t.Run("moderator reads and moderates but does not delete", func(t *testing.T) {
		read := Decide(Input{CallerID: someoneElse, CallerRole: RoleModerator, Action: ActionReadResource, ResourceOwnerID: ownerOfResource})
		moderate := Decide(Input{CallerID: someoneElse, CallerRole: RoleModerator, Action: ActionModerateResource, ResourceOwnerID: ownerOfResource})
		del := Decide(Input{CallerID: someoneElse, CallerRole: RoleModerator, Action: ActionDeleteResource, ResourceOwnerID: ownerOfResource})
		assert.True(t, read.Allowed)
		assert.True(t, moderate.Allowed)
		assert.False(t, del.Allowed)
	})

	t.Run("admin mutates any resource", func(t *testing.T) {
		decision := Decide(Input{
			CallerID:        someoneElse,
			CallerRole:      RoleAdmin,
			Action:          ActionDeleteResource,
			ResourceOwnerID: ownerOfResource,
		})
		assert.True(t, decision.Allowed)
	})
}
