package role

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/librarium/librarium/pkg/authz"
)

// Assignment maps a user to their single active role
type Assignment struct {
	UserID    uuid.UUID  `json:"user_id"`
	Role      authz.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// Repository defines the role registry's persistence operations.
// Implementations must reject a second 'owner' assignment with a CONFLICT
// error regardless of what callers checked beforehand.
type Repository interface {
	// GetByUserID returns the user's assignment, NOT_FOUND when absent
	GetByUserID(ctx context.Context, userID uuid.UUID) (Assignment, error)
	// Assign creates or replaces the user's role assignment
	Assign(ctx context.Context, userID uuid.UUID, r authz.Role) (Assignment, error)
	// Remove deletes the user's assignment, NOT_FOUND when absent
	Remove(ctx context.Context, userID uuid.UUID) error
	// FindOwner returns the single owner assignment, NOT_FOUND when none exists
	FindOwner(ctx context.Context) (Assignment, error)
	// CountByRole counts assignments holding the given role
	CountByRole(ctx context.Context, r authz.Role) (int64, error)
}
