package authz

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is a user's assigned role. A user holds at most one active role.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleOwner     Role = "owner"
)

// ParseRole validates a role name
func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case RoleUser, RoleModerator, RoleAdmin, RoleOwner:
		return Role(name), nil
	}
	return "", fmt.Errorf("unknown role: %q", name)
}

// Action is an operation a caller wants to perform
type Action string

const (
	// Resource actions target a library or book owned by some user
	ActionReadResource     Action = "resource:read"
	ActionCreateResource   Action = "resource:create"
	ActionUpdateResource   Action = "resource:update"
	ActionDeleteResource   Action = "resource:delete"
	ActionModerateResource Action = "resource:moderate"

	// Account actions target another user's identity or role assignment
	ActionDeleteAccount Action = "account:delete"
	ActionModifyAccount Action = "account:modify"
	ActionAssignRole    Action = "account:assign_role"
	ActionGrantOwner    Action = "account:grant_owner"
)

// Input carries everything a single authorization decision needs. TargetRole
// is the current role of the target account and only matters for account
// actions; for resource actions it is left empty.
type Input struct {
	CallerID        uuid.UUID
	CallerRole      Role
	Action          Action
	ResourceOwnerID uuid.UUID
	TargetRole      Role
}

// Decision is the outcome of a policy evaluation
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide is the single authorization policy for the whole system. It is a
// pure function: no I/O, no caching. Callers must evaluate it with freshly
// loaded roles before every privileged mutation, never reuse a decision from
// a prior request.
func Decide(in Input) Decision {
	switch in.CallerRole {
	case RoleOwner:
		return decideOwner(in)
	case RoleAdmin:
		return decideAdmin(in)
	case RoleModerator:
		return decideModerator(in)
	case RoleUser:
		return decideUser(in)
	}
	return deny("caller has no recognized role")
}

func decideOwner(in Input) Decision {
	// The single owner account is never removed through the generic delete
	// path; succession is a separate procedure.
	if in.Action == ActionDeleteAccount && in.TargetRole == RoleOwner {
		return deny("owner accounts cannot be deleted through the generic path")
	}
	return allow()
}

func decideAdmin(in Input) Decision {
	switch in.Action {
	case ActionGrantOwner:
		return deny("only the owner may grant the owner role")
	case ActionDeleteAccount, ActionModifyAccount, ActionAssignRole:
		if in.TargetRole == RoleOwner {
			return deny("admins may not act on the owner account")
		}
		return allow()
	default:
		// Admins manage all libraries and books
		return allow()
	}
}

func decideModerator(in Input) Decision {
	switch in.Action {
	case ActionReadResource, ActionModerateResource:
		return allow()
	}
	return deny("moderators may read and moderate content only")
}

func decideUser(in Input) Decision {
	switch in.Action {
	case ActionReadResource:
		return allow()
	case ActionCreateResource:
		// Users create resources under their own account
		if in.ResourceOwnerID == in.CallerID {
			return allow()
		}
		return deny("users may only create resources they own")
	case ActionUpdateResource, ActionDeleteResource:
		if in.ResourceOwnerID == in.CallerID {
			return allow()
		}
		return deny("users may only mutate resources they own")
	case ActionModifyAccount:
		if in.ResourceOwnerID == in.CallerID {
			return allow()
		}
		return deny("users may only modify their own account")
	}
	return deny("users may only act on resources they own")
}
