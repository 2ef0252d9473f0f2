package role

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/librarium/librarium/pkg/authz"
	"github.com/librarium/librarium/pkg/errors"
)

// RoleService provides role registry operations
type RoleService struct {
	repo Repository
}

// NewRoleService creates a new role service
func NewRoleService(repo Repository) *RoleService {
	return &RoleService{repo: repo}
}

// GetUserRole returns the role assigned to a user, NOT_FOUND when the user
// has no assignment
func (s *RoleService) GetUserRole(ctx context.Context, userID uuid.UUID) (authz.Role, error) {
	assignment, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	return assignment.Role, nil
}

// AssignRole assigns a role to a user, replacing any previous assignment
func (s *RoleService) AssignRole(ctx context.Context, userID uuid.UUID, name string) (Assignment, error) {
	r, err := authz.ParseRole(name)
	if err != nil {
		return Assignment{}, errors.InvalidInput("role", err.Error())
	}

	assignment, err := s.repo.Assign(ctx, userID, r)
	if err != nil {
		return Assignment{}, err
	}

	slog.Info("Role assigned", "userId", userID, "role", r)
	return assignment, nil
}

// RemoveUserRole removes a user's role assignment. Removing an assignment
// that does not exist is not an error so deletion cleanup stays idempotent.
func (s *RoleService) RemoveUserRole(ctx context.Context, userID uuid.UUID) error {
	err := s.repo.Remove(ctx, userID)
	if err != nil && !errors.IsCode(err, errors.ErrCodeNotFound) {
		return err
	}
	return nil
}

// FindOwner returns the single owner assignment, NOT_FOUND when none exists
func (s *RoleService) FindOwner(ctx context.Context) (Assignment, error) {
	return s.repo.FindOwner(ctx)
}

// CountByRole counts users holding the given role
func (s *RoleService) CountByRole(ctx context.Context, r authz.Role) (int64, error) {
	return s.repo.CountByRole(ctx, r)
}
