package repositories

import (
	"context"
	"strconv"
	"time"

	"splitdine-admin.backend/internal/domain/entities"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	domainRepos "splitdine-admin.backend/internal/domain/repositories"
)

// OnboardingRepository implements onboarding record operations
type OnboardingRepository struct {
	store domainRepos.KeyValueStore
}

// NewOnboardingRepository creates a new onboarding repository
func NewOnboardingRepository(store domainRepos.KeyValueStore) *OnboardingRepository {
	return &OnboardingRepository{store: store}
}

// OnboardingKey returns the store key of a restaurant's onboarding record
func OnboardingKey(restaurantID int) string {
	return domainRepos.OnboardingKeyPrefix + strconv.Itoa(restaurantID)
}

// Get gets the onboarding record of a restaurant
func (r *OnboardingRepository) Get(ctx context.Context, restaurantID int) (*entities.OnboardingRecord, error) {
	record := entities.NewOnboardingRecord(restaurantID)
	found, err := loadDocument(ctx, r.store, OnboardingKey(restaurantID), record)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.ErrNotFound
	}

	record.RestaurantID = restaurantID
	if record.PersonnelData == nil {
		record.PersonnelData = []entities.Personnel{}
	}
	if record.CompletedSteps == nil {
		record.CompletedSteps = entities.StepSet{}
	}
	if !entities.ValidStep(record.CurrentStep) {
		record.CurrentStep = entities.FirstStep
	}
	return record, nil
}

// Save replaces the onboarding record and stamps SavedAt
func (r *OnboardingRepository) Save(ctx context.Context, record *entities.OnboardingRecord) error {
	record.SavedAt = time.Now()
	return saveDocument(ctx, r.store, OnboardingKey(record.RestaurantID), record)
}

// Delete removes the onboarding record; a missing record is not an error
func (r *OnboardingRepository) Delete(ctx context.Context, restaurantID int) error {
	return r.store.Delete(ctx, OnboardingKey(restaurantID))
}
