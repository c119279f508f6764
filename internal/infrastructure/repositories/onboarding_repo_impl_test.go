package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"splitdine-admin.backend/internal/domain/entities"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
)

func TestOnboardingRepository_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	repo := NewOnboardingRepository(store)

	_, err := repo.Get(ctx, 3)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	record := entities.NewOnboardingRecord(3)
	record.StripeData.Connected = true
	record.CompletedSteps = entities.StepSet{2}
	record.CurrentStep = 3
	require.NoError(t, repo.Save(ctx, record))
	assert.False(t, record.SavedAt.IsZero())

	raw, err := store.Get(ctx, "onboarding_3")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"completedSteps":[2]`)

	got, err := repo.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentStep)
	assert.True(t, got.StripeData.Connected)

	require.NoError(t, repo.Delete(ctx, 3))
	require.NoError(t, repo.Delete(ctx, 3))
	_, err = repo.Get(ctx, 3)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestOnboardingRepository_GetNormalizesPartialRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	repo := NewOnboardingRepository(store)

	require.NoError(t, store.Set(ctx, OnboardingKey(4), []byte(`{"currentStep":9}`)))

	got, err := repo.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, got.RestaurantID)
	assert.Equal(t, entities.FirstStep, got.CurrentStep)
	assert.NotNil(t, got.PersonnelData)
	assert.NotNil(t, got.CompletedSteps)

	require.NoError(t, store.Set(ctx, OnboardingKey(5), []byte(`not-json`)))
	_, err = repo.Get(ctx, 5)
	assert.Error(t, err)
}
