package usecases

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"splitdine-admin.backend/internal/domain/entities"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	"splitdine-admin.backend/internal/domain/repositories"
	"splitdine-admin.backend/pkg/logger"
	"splitdine-admin.backend/pkg/metrics"
)

// DefaultMinPasswordLength is the shortest staff password accepted
const DefaultMinPasswordLength = 8

// restaurantRegistry is the part of the registry the onboarding engine drives
type restaurantRegistry interface {
	Get(ctx context.Context, id int) (*entities.Restaurant, error)
	Update(ctx context.Context, id int, patch entities.RestaurantPatch) (*entities.Restaurant, error)
	Restore(ctx context.Context, id int) (*entities.Restaurant, error)
}

// OnboardingOptions tunes the onboarding engine
type OnboardingOptions struct {
	Policy            entities.CompletionPolicy
	MinPasswordLength int
}

// OnboardingUsecase opens onboarding sessions for restaurants
type OnboardingUsecase struct {
	registry       restaurantRegistry
	onboardingRepo repositories.OnboardingRepository
	userRepo       repositories.UserRepository
	staff          repositories.StaffDirectory
	uow            repositories.UnitOfWork
	publisher      repositories.EventPublisher
	metrics        *metrics.Metrics

	policy            entities.CompletionPolicy
	minPasswordLength int
}

// NewOnboardingUsecase creates a new onboarding usecase
func NewOnboardingUsecase(
	registry restaurantRegistry,
	onboardingRepo repositories.OnboardingRepository,
	userRepo repositories.UserRepository,
	staff repositories.StaffDirectory,
	uow repositories.UnitOfWork,
	publisher repositories.EventPublisher,
	m *metrics.Metrics,
	opts OnboardingOptions,
) *OnboardingUsecase {
	if opts.Policy == "" {
		opts.Policy = entities.CompletionContinuous
	}
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = DefaultMinPasswordLength
	}
	return &OnboardingUsecase{
		registry:          registry,
		onboardingRepo:    onboardingRepo,
		userRepo:          userRepo,
		staff:             staff,
		uow:               uow,
		publisher:         publisher,
		metrics:           m,
		policy:            opts.Policy,
		minPasswordLength: opts.MinPasswordLength,
	}
}

// Policy returns the configured completion policy
func (u *OnboardingUsecase) Policy() entities.CompletionPolicy {
	return u.policy
}

// Open starts a session the way a fresh page load does: the saved record is
// reconciled and the cursor moves to the resume step. A missing record is
// created. Nothing is written for archived restaurants.
func (u *OnboardingUsecase) Open(ctx context.Context, restaurantID int) (*OnboardingSession, error) {
	s, created, err := u.load(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	before := s.record.CurrentStep
	s.record.CurrentStep = entities.ResumeStep(s.record.CompletedSteps)
	if s.readOnly {
		return s, nil
	}
	if created || s.reconciled || before != s.record.CurrentStep {
		if err := s.persist(ctx, "open"); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Attach continues an existing session: the record is reconciled but the
// saved cursor is kept. A missing record is only created by the first write.
func (u *OnboardingUsecase) Attach(ctx context.Context, restaurantID int) (*OnboardingSession, error) {
	s, _, err := u.load(ctx, restaurantID)
	return s, err
}

func (u *OnboardingUsecase) load(ctx context.Context, restaurantID int) (*OnboardingSession, bool, error) {
	restaurant, err := u.registry.Get(ctx, restaurantID)
	if err != nil {
		return nil, false, err
	}
	if restaurant.IsOnboarded {
		return nil, false, domainerrors.ErrAlreadyOnboarded
	}

	created := false
	record, err := u.onboardingRepo.Get(ctx, restaurantID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		record = entities.NewOnboardingRecord(restaurantID)
		created = true
	} else if err != nil {
		return nil, false, err
	}

	reconciled := entities.ReconcileSteps(record)
	changed := len(reconciled) != len(record.CompletedSteps)
	if changed {
		logger.Info(logger.WithRestaurant(ctx, restaurantID), "Dropped unsupported completed steps",
			zap.Ints("saved", record.CompletedSteps),
			zap.Ints("kept", reconciled),
		)
	}
	record.CompletedSteps = reconciled

	return &OnboardingSession{
		uc:         u,
		restaurant: restaurant,
		record:     record,
		readOnly:   restaurant.IsArchived(),
		reconciled: changed,
	}, created, nil
}
