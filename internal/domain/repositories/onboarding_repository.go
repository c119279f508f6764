package repositories

import (
	"context"

	"splitdine-admin.backend/internal/domain/entities"
)

// OnboardingRepository defines onboarding record operations, one record
// per restaurant
type OnboardingRepository interface {
	// Get returns ErrNotFound when no record exists for the restaurant.
	Get(ctx context.Context, restaurantID int) (*entities.OnboardingRecord, error)
	Save(ctx context.Context, record *entities.OnboardingRecord) error
	Delete(ctx context.Context, restaurantID int) error
}
