package profile

import (
	"context"

	"github.com/google/uuid"

	"github.com/librarium/librarium/pkg/errors"
)

// ProfileService provides profile store operations
type ProfileService struct {
	repo Repository
}

// NewProfileService creates a new profile service
func NewProfileService(repo Repository) *ProfileService {
	return &ProfileService{repo: repo}
}

// Ensure guarantees a profile row exists for the user. Safe to call any
// number of times; a second call refreshes the display name and email.
func (s *ProfileService) Ensure(ctx context.Context, userID uuid.UUID, displayName, email string) (Profile, error) {
	if userID == uuid.Nil {
		return Profile{}, errors.InvalidInput("userId", "is required")
	}
	return s.repo.Upsert(ctx, UpsertParams{
		UserID:      userID,
		DisplayName: displayName,
		Email:       email,
	})
}

// Get retrieves a profile, NOT_FOUND when absent
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (Profile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Delete removes a profile. A missing profile is not an error so deletion
// cleanup stays idempotent.
func (s *ProfileService) Delete(ctx context.Context, userID uuid.UUID) error {
	err := s.repo.Delete(ctx, userID)
	if err != nil && !errors.IsCode(err, errors.ErrCodeNotFound) {
		return err
	}
	return nil
}
