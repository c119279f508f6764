package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"splitdine-admin.backend/internal/domain/entities"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	"splitdine-admin.backend/internal/domain/repositories"
	"splitdine-admin.backend/pkg/logger"
	"splitdine-admin.backend/pkg/metrics"
)

// RestaurantUsecase is the restaurant registry. It owns the restaurant
// collection and every lifecycle transition.
type RestaurantUsecase struct {
	restaurantRepo repositories.RestaurantRepository
	onboardingRepo repositories.OnboardingRepository
	uow            repositories.UnitOfWork
	publisher      repositories.EventPublisher
	metrics        *metrics.Metrics
}

// NewRestaurantUsecase creates a new restaurant usecase
func NewRestaurantUsecase(
	restaurantRepo repositories.RestaurantRepository,
	onboardingRepo repositories.OnboardingRepository,
	uow repositories.UnitOfWork,
	publisher repositories.EventPublisher,
	m *metrics.Metrics,
) *RestaurantUsecase {
	return &RestaurantUsecase{
		restaurantRepo: restaurantRepo,
		onboardingRepo: onboardingRepo,
		uow:            uow,
		publisher:      publisher,
		metrics:        m,
	}
}

// Add registers a restaurant. It always starts not onboarded, not archived
// and with zeroed activity counters.
func (u *RestaurantUsecase) Add(ctx context.Context, input *entities.CreateRestaurantInput) (*entities.Restaurant, error) {
	restaurant := &entities.Restaurant{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Phone:    strings.TrimSpace(input.Phone),
		Location: input.Location,
		Cuisine:  input.Cuisine,
		Status:   entities.RestaurantStatusPending,
		Revenue:  input.Revenue,
		Tables:   input.Tables,
	}

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.restaurantRepo.Create(txCtx, restaurant)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Restaurant added", zap.Int("restaurant_id", restaurant.ID), zap.String("name", restaurant.Name))
	u.metrics.Transition("created")
	publishLifecycle(ctx, u.publisher, u.metrics, repositories.SubjectRestaurantCreated, restaurant, 0)
	return restaurant, nil
}

// Get gets a restaurant by ID
func (u *RestaurantUsecase) Get(ctx context.Context, id int) (*entities.Restaurant, error) {
	return u.restaurantRepo.GetByID(ctx, id)
}

// ListActive lists restaurants that are not archived
func (u *RestaurantUsecase) ListActive(ctx context.Context) ([]*entities.Restaurant, error) {
	return u.filter(ctx, (*entities.Restaurant).Listed)
}

// ListArchived lists archived restaurants
func (u *RestaurantUsecase) ListArchived(ctx context.Context) ([]*entities.Restaurant, error) {
	return u.filter(ctx, (*entities.Restaurant).IsArchived)
}

func (u *RestaurantUsecase) filter(ctx context.Context, keep func(*entities.Restaurant) bool) ([]*entities.Restaurant, error) {
	items, err := u.restaurantRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Restaurant, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Update shallow-merges the patch into the restaurant
func (u *RestaurantUsecase) Update(ctx context.Context, id int, patch entities.RestaurantPatch) (*entities.Restaurant, error) {
	var restaurant *entities.Restaurant
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		r, err := u.restaurantRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		patch.Apply(r)
		if err := u.restaurantRepo.Update(txCtx, r); err != nil {
			return err
		}
		restaurant = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return restaurant, nil
}

// Delete archives a restaurant, or removes it outright when it never
// started onboarding. Deleting an unknown id is a no-op.
func (u *RestaurantUsecase) Delete(ctx context.Context, id int) (entities.DeleteOutcome, error) {
	outcome := entities.DeleteOutcomeNone
	var restaurant *entities.Restaurant

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		outcome, restaurant = entities.DeleteOutcomeNone, nil
		r, err := u.restaurantRepo.GetByID(txCtx, id)
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		restaurant = r

		if !r.IsOnboarded {
			started, err := u.onboardingStarted(txCtx, id)
			if err != nil {
				return err
			}
			if !started {
				if err := u.purge(txCtx, id); err != nil {
					return err
				}
				outcome = entities.DeleteOutcomePurged
				return nil
			}
		}

		if !r.Deleted {
			r.Deleted = true
			r.DeletedAt = null.TimeFrom(time.Now().UTC())
		}
		if err := u.restaurantRepo.Update(txCtx, r); err != nil {
			return err
		}
		outcome = entities.DeleteOutcomeArchived
		return nil
	})
	if err != nil {
		return entities.DeleteOutcomeNone, err
	}

	switch outcome {
	case entities.DeleteOutcomePurged:
		logger.Info(ctx, "Restaurant purged", zap.Int("restaurant_id", id))
		u.metrics.Transition("purged")
		publishLifecycle(ctx, u.publisher, u.metrics, repositories.SubjectRestaurantPurged, restaurant, 0)
	case entities.DeleteOutcomeArchived:
		logger.Info(ctx, "Restaurant archived", zap.Int("restaurant_id", id))
		u.metrics.Transition("archived")
		publishLifecycle(ctx, u.publisher, u.metrics, repositories.SubjectRestaurantArchived, restaurant, 0)
	default:
		logger.Debug(ctx, "Delete of unknown restaurant ignored", zap.Int("restaurant_id", id))
	}
	return outcome, nil
}

func (u *RestaurantUsecase) onboardingStarted(ctx context.Context, id int) (bool, error) {
	record, err := u.onboardingRepo.Get(ctx, id)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return record.HasStarted(), nil
}

func (u *RestaurantUsecase) purge(ctx context.Context, id int) error {
	if err := u.restaurantRepo.Remove(ctx, id); err != nil {
		return err
	}
	return u.onboardingRepo.Delete(ctx, id)
}

// DeletePermanently removes the restaurant and its onboarding record. Irreversible.
func (u *RestaurantUsecase) DeletePermanently(ctx context.Context, id int) error {
	var restaurant *entities.Restaurant
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		r, err := u.restaurantRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		restaurant = r
		return u.purge(txCtx, id)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "Restaurant deleted permanently", zap.Int("restaurant_id", id))
	u.metrics.Transition("deleted_permanently")
	publishLifecycle(ctx, u.publisher, u.metrics, repositories.SubjectRestaurantDeleted, restaurant, 0)
	return nil
}

// Restore clears the archived flag
func (u *RestaurantUsecase) Restore(ctx context.Context, id int) (*entities.Restaurant, error) {
	var restaurant *entities.Restaurant
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		r, err := u.restaurantRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		r.Deleted = false
		r.DeletedAt = null.Time{}
		if err := u.restaurantRepo.Update(txCtx, r); err != nil {
			return err
		}
		restaurant = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Restaurant restored", zap.Int("restaurant_id", id))
	u.metrics.Transition("restored")
	publishLifecycle(ctx, u.publisher, u.metrics, repositories.SubjectRestaurantRestored, restaurant, 0)
	return restaurant, nil
}
