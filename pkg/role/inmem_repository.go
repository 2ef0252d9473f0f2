package role

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/librarium/librarium/pkg/authz"
	"github.com/librarium/librarium/pkg/errors"
)

// InMemoryRepository implements Repository using in-memory storage. It
// enforces the same single-owner constraint as the Postgres schema so race
// tests exercise identical semantics.
type InMemoryRepository struct {
	mu          sync.RWMutex
	assignments map[uuid.UUID]Assignment
}

// NewInMemoryRepository creates a new in-memory role repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		assignments: make(map[uuid.UUID]Assignment),
	}
}

// GetByUserID returns the user's assignment
func (r *InMemoryRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assignment, ok := r.assignments[userID]
	if !ok {
		return Assignment{}, errors.NotFound("role assignment", userID.String())
	}
	return assignment, nil
}

// Assign creates or replaces the user's role assignment
func (r *InMemoryRepository) Assign(ctx context.Context, userID uuid.UUID, role authz.Role) (Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if role == authz.RoleOwner {
		for id, a := range r.assignments {
			if a.Role == authz.RoleOwner && id != userID {
				return Assignment{}, errors.Conflict("an owner assignment already exists")
			}
		}
	}

	assignment := Assignment{UserID: userID, Role: role, CreatedAt: time.Now()}
	if existing, ok := r.assignments[userID]; ok {
		assignment.CreatedAt = existing.CreatedAt
	}
	r.assignments[userID] = assignment
	return assignment, nil
}

// Remove deletes the user's assignment
func (r *InMemoryRepository) Remove(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assignments[userID]; !ok {
		return errors.NotFound("role assignment", userID.String())
	}
	delete(r.assignments, userID)
	return nil
}

// FindOwner returns the single owner assignment
func (r *InMemoryRepository) FindOwner(ctx context.Context) (Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.assignments {
		if a.Role == authz.RoleOwner {
			return a, nil
		}
	}
	return Assignment{}, errors.NotFound("role assignment", string(authz.RoleOwner))
}

// CountByRole counts assignments holding the given role
func (r *InMemoryRepository) CountByRole(ctx context.Context, role authz.Role) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, a := range r.assignments {
		if a.Role == role {
			count++
		}
	}
	return count, nil
}
