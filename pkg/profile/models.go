package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Profile is per-user metadata, one row per user identity
type Profile struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	Status      string    `json:"status"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpsertParams contains the fields set when ensuring a profile exists
type UpsertParams struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
}

// Repository defines the profile store's persistence operations
type Repository interface {
	// Upsert creates the profile if absent, otherwise refreshes its fields
	Upsert(ctx context.Context, arg UpsertParams) (Profile, error)
	// GetByUserID retrieves a profile, NOT_FOUND when absent
	GetByUserID(ctx context.Context, userID uuid.UUID) (Profile, error)
	// Delete removes a profile, NOT_FOUND when absent
	Delete(ctx context.Context, userID uuid.UUID) error
}
