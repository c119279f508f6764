package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"splitdine-admin.backend/internal/domain/entities"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	"splitdine-admin.backend/internal/domain/repositories"
	"splitdine-admin.backend/internal/usecases"
)

func TestRestaurantUsecase_AddForcesLifecycleDefaults(t *testing.T) {
	f := newFixture(t, entities.CompletionContinuous)

	first := f.addRestaurant(t, "De Kas")
	second := f.addRestaurant(t, "  Rijks  ")

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, "Rijks", second.Name)
	assert.False(t, first.IsOnboarded)
	assert.False(t, first.Deleted)
	assert.Equal(t, entities.RestaurantStatusPending, first.Status)
	assert.Zero(t, first.TotalOrders)
	assert.Zero(t, first.TodayRevenue)
	assert.Equal(t, []string{repositories.SubjectRestaurantCreated, repositories.SubjectRestaurantCreated}, f.publisher.subjects())
}

func TestRestaurantUsecase_ConcurrentAddKeepsEveryRestaurant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entities.CompletionContinuous)

	const workers = 200
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.registry.Add(ctx, &entities.CreateRestaurantInput{Name: fmt.Sprintf("Zaak %d", i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	active, err := f.registry.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, workers)

	ids := make(map[int]bool, workers)
	for _, r := range active {
		assert.False(t, ids[r.ID], "duplicate id %d", r.ID)
		ids[r.ID] = true
	}
	assert.Len(t, f.publisher.subjects(), workers)
}

func TestRestaurantUsecase_ListActiveAndArchived(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entities.CompletionContinuous)

	live := f.addRestaurant(t, "Live")
	archived := f.addRestaurant(t, "Archived")
	legacy := f.addRestaurant(t, "Legacy")

	onboarded := true
	_, err := f.registry.Update(ctx, archived.ID, entities.RestaurantPatch{IsOnboarded: &onboarded})
	require.NoError(t, err)
	_, err = f.registry.Delete(ctx, archived.ID)
	require.NoError(t, err)

	deleted := entities.RestaurantStatusDeleted
	_, err = f.registry.Update(ctx, legacy.ID, entities.RestaurantPatch{Status: &deleted})
	require.NoError(t, err)

	active, err := f.registry.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, live.ID, active[0].ID)

	arch, err := f.registry.ListArchived(ctx)
	require.NoError(t, err)
	require.Len(t, arch, 1)
	assert.Equal(t, archived.ID, arch[0].ID)
}

func TestRestaurantUsecase_UpdateAndGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entities.CompletionContinuous)
	r := f.addRestaurant(t, "De Kas")

	name := "De Kas Amsterdam"
	updated, err := f.registry.Update(ctx, r.ID, entities.RestaurantPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "Amsterdam", updated.Location)

	got, err := f.registry.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)

	_, err = f.registry.Update(ctx, 404, entities.RestaurantPatch{Name: &name})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = f.registry.Get(ctx, 404)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRestaurantUsecase_DeleteUnknownIsNoop(t *testing.T) {
	f := newFixture(t, entities.CompletionContinuous)
	before := f.backend.Commits()

	outcome, err := f.registry.Delete(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, entities.DeleteOutcomeNone, outcome)
	assert.Equal(t, before, f.backend.Commits())
}

func TestRestaurantUsecase_DeletePurgesUntouchedDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entities.CompletionContinuous)
	r := f.addRestaurant(t, "Draft")
	f.saveRecord(t, entities.NewOnboardingRecord(r.ID))

	outcome, err := f.registry.Delete(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.DeleteOutcomePurged, outcome)

	_, err = f.registry.Get(ctx, r.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = f.onboarding.Get(ctx, r.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	archived, err := f.registry.ListArchived(ctx)
	require.NoError(t, err)
	assert.Empty(t, archived)
	assert.Contains(t, f.publisher.subjects(), repositories.SubjectRestaurantPurged)
}

func TestRestaurantUsecase_DeletePurgesWhenNoRecord(t *testing.T) {
	f := newFixture(t, entities.CompletionContinuous)
	r := f.addRestaurant(t, "Draft")

	outcome, err := f.registry.Delete(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.DeleteOutcomePurged, outcome)
}

func TestRestaurantUsecase_DeleteArchivesStartedOnboarding(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entities.CompletionContinuous)

	byStep := f.addRestaurant(t, "Step two")
	record := entities.NewOnboardingRecord(byStep.ID)
	record.CurrentStep = 2
	f.saveRecord(t, record)

	byPersonnel := f.addRestaurant(t, "Has staff")
	record = entities.NewOnboardingRecord(byPersonnel.ID)
	record.PersonnelData = []entities.Personnel{{ID: "p1", Email: "a@kas.nl", Role: entities.PersonnelRoleStaff}}
	f.saveRecord(t, record)

	for _, id := range []int{byStep.ID, byPersonnel.ID} {
		outcome, err := f.registry.Delete(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entities.DeleteOutcomeArchived, outcome)

		got, err := f.registry.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.Deleted)
		assert.True(t, got.DeletedAt.Valid)

		_, err = f.onboarding.Get(ctx, id)
		assert.NoError(t, err, "onboarding progress is kept")
	}

	archived, err := f.registry.ListArchived(ctx)
	require.NoError(t, err)
	assert.Len(t, archived, 2)
}

func TestRestaurantUsecase_DeleteAlwaysArchivesOnboarded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entities.CompletionContinuous)
	r := f.addRestaurant(t, "Live")

	onboarded := true
	_, err := f.registry.Update(ctx, r.ID, entities.RestaurantPatch{IsOnboarded: &onboarded})
	require.NoError(t, err)

	outcome, err := f.registry.Delete(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.DeleteOutcomeArchived, outcome)

	got, err := f.registry.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.False(t, got.IsActive())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RestaurantTransitions.WithLabelValues("archived")))
}

func TestRestaurantUsecase_RestoreAndDeletePermanently(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entities.CompletionContinuous)
	r := f.addRestaurant(t, "Paused")
	record := entities.NewOnboardingRecord(r.ID)
	record.CurrentStep = 3
	f.saveRecord(t, record)

	_, err := f.registry.Delete(ctx, r.ID)
	require.NoError(t, err)

	restored, err := f.registry.Restore(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, restored.Deleted)
	assert.False(t, restored.DeletedAt.Valid)

	require.NoError(t, f.registry.DeletePermanently(ctx, r.ID))
	_, err = f.registry.Get(ctx, r.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = f.onboarding.Get(ctx, r.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.ErrorIs(t, f.registry.DeletePermanently(ctx, r.ID), domainerrors.ErrNotFound)
	_, err = f.registry.Restore(ctx, r.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.Equal(t, []string{
		repositories.SubjectRestaurantCreated,
		repositories.SubjectRestaurantArchived,
		repositories.SubjectRestaurantRestored,
		repositories.SubjectRestaurantDeleted,
	}, f.publisher.subjects())
}

func TestRestaurantUsecase_PublishFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t, entities.CompletionContinuous)
	pub := new(MockEventPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e repositories.LifecycleEvent) bool {
		return e.Subject == repositories.SubjectRestaurantCreated && e.Name == "De Kas"
	})).Return(errors.New("broker down")).Once()

	registry := usecases.NewRestaurantUsecase(f.restaurants, f.onboarding, f.store, pub, f.metrics)
	r, err := registry.Add(context.Background(), &entities.CreateRestaurantInput{Name: "De Kas"})
	require.NoError(t, err)
	assert.Equal(t, 1, r.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EventPublishFailures))
	pub.AssertExpectations(t)
}
