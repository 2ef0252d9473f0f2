package profile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/librarium/librarium/pkg/errors"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]Profile
}

// NewInMemoryRepository creates a new in-memory profile repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		profiles: make(map[uuid.UUID]Profile),
	}
}

// Upsert creates the profile if absent, otherwise refreshes its fields
func (r *InMemoryRepository) Upsert(ctx context.Context, arg UpsertParams) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	p, ok := r.profiles[arg.UserID]
	if !ok {
		p = Profile{
			UserID:    arg.UserID,
			Status:    "active",
			CreatedAt: now,
		}
	}
	p.DisplayName = arg.DisplayName
	p.Email = arg.Email
	p.UpdatedAt = now

	r.profiles[arg.UserID] = p
	return p, nil
}

// GetByUserID retrieves a profile
func (r *InMemoryRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, errors.NotFound("profile", userID.String())
	}
	return p, nil
}

// Delete removes a profile
func (r *InMemoryRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[userID]; !ok {
		return errors.NotFound("profile", userID.String())
	}
	delete(r.profiles, userID)
	return nil
}
