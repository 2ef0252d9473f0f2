package admin

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

// AdminService executes privileged account operations on behalf of an
// authenticated caller
type AdminService struct {
	identityStore  identity.Store
	roleService    *role.RoleService
	profileService *profile.ProfileService
}

func NewAdminService(identityStore identity.Store, roleService *role.RoleService, profileService *profile.ProfileService) *AdminService {
	return &AdminService{
		identityStore:  identityStore,
		roleService:    roleService,
		profileService: profileService,
	}
}

// DeleteUser permanently removes the target's identity, role assignment and
// profile. The caller's authorization is re-derived from the stores on every
// call. Irreversible: there is no soft delete.
//
// The three stores are cleaned up as a short saga. Once the identity delete
// has committed the operation cannot be rolled back, so a failure in the
// role or profile cleanup is reported as a partial failure naming the step
// that needs manual repair, never as success.
func (s *AdminService) DeleteUser(ctx context.Context, token string, targetID uuid.UUID) error {
	callerID, err := s.identityStore.VerifyToken(ctx, token)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeUnauthenticated) {
			return err
		}
		return errors.Wrap(err, errors.ErrCodeDownstream, "failed to verify caller credential")
	}

	callerRole, err := s.roleService.GetUserRole(ctx, callerID)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return errors.Forbidden("caller has no assigned role")
		}
		return errors.Wrap(err, errors.ErrCodeDownstream, "failed to load caller role")
	}

	// The caller's role gates the operation before the target is touched.
	// An unprivileged caller gets FORBIDDEN whether or not the target
	// exists; probing ids must not reveal which accounts are registered.
	decision := authz.Decide(authz.Input{
		CallerID:   callerID,
		CallerRole: callerRole,
		Action:     authz.ActionDeleteAccount,
	})
	if !decision.Allowed {
		slog.Warn("User deletion denied",
			"operation", "delete-user", "callerId", callerID, "targetId", targetID, "reason", decision.Reason)
		return errors.Forbidden(decision.Reason)
	}

	if _, err := s.identityStore.GetAccount(ctx, targetID); err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return errors.NotFound("user", targetID.String())
		}
		return errors.Wrap(err, errors.ErrCodeDownstream, "failed to look up target account")
	}

	// A target without a role assignment is still deletable; its TargetRole
	// stays empty and the policy treats it as an ordinary account.
	targetRole, err := s.roleService.GetUserRole(ctx, targetID)
	if err != nil && !errors.IsCode(err, errors.ErrCodeNotFound) {
		return errors.Wrap(err, errors.ErrCodeDownstream, "failed to load target role")
	}

	// Second evaluation with the target's real role catches the
	// admin-vs-owner case.
	decision = authz.Decide(authz.Input{
		CallerID:   callerID,
		CallerRole: callerRole,
		Action:     authz.ActionDeleteAccount,
		TargetRole: targetRole,
	})
	if !decision.Allowed {
		slog.Warn("User deletion denied",
			"operation", "delete-user", "callerId", callerID, "targetId", targetID, "reason", decision.Reason)
		return errors.Forbidden(decision.Reason)
	}

	if err := s.identityStore.DeleteAccount(ctx, targetID); err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return errors.NotFound("user", targetID.String())
		}
		return errors.Wrap(err, errors.ErrCodeDownstream, "failed to delete target identity")
	}

	// Identity is gone; the remaining cleanup must not leave dangling rows
	// silently.
	if err := s.roleService.RemoveUserRole(ctx, targetID); err != nil {
		slog.Error("User deletion partial failure: identity deleted but role cleanup failed",
			"operation", "delete-user", "callerId", callerID, "targetId", targetID, "err", err)
		return errors.Wrapf(err, errors.ErrCodeInternal,
			"identity %s deleted but role assignment cleanup failed; manual repair required", targetID)
	}
	if err := s.profileService.Delete(ctx, targetID); err != nil {
		slog.Error("User deletion partial failure: identity deleted but profile cleanup failed",
			"operation", "delete-user", "callerId", callerID, "targetId", targetID, "err", err)
		return errors.Wrapf(err, errors.ErrCodeInternal,
			"identity %s deleted but profile cleanup failed; manual repair required", targetID)
	}

	slog.Info("User deleted", "operation", "delete-user", "callerId", callerID, "targetId", targetID)
	return nil
}
