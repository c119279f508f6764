package usecases

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"splitdine-admin.backend/internal/domain/entities"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	"splitdine-admin.backend/internal/domain/repositories"
	"splitdine-admin.backend/pkg/logger"
	"splitdine-admin.backend/pkg/utils"
)

// OnboardingSession is the onboarding state of one restaurant for the
// duration of an editing session. Not safe for concurrent use.
type OnboardingSession struct {
	uc         *OnboardingUsecase
	restaurant *entities.Restaurant
	record     *entities.OnboardingRecord
	readOnly   bool
	reconciled bool
	finalized  bool
}

// ReadOnly reports whether the session is locked because the restaurant is archived
func (s *OnboardingSession) ReadOnly() bool {
	return s.readOnly
}

// Record returns a copy of the working record
func (s *OnboardingSession) Record() *entities.OnboardingRecord {
	return s.record.Clone()
}

// View renders the session. Personnel passwords are never included.
func (s *OnboardingSession) View() *entities.OnboardingView {
	record := s.record.Clone()
	for i := range record.PersonnelData {
		record.PersonnelData[i].Password = ""
	}
	return &entities.OnboardingView{
		RestaurantID:   s.restaurant.ID,
		RestaurantName: s.restaurant.Name,
		CurrentStep:    record.CurrentStep,
		FurthestStep:   s.furthestStep(),
		CompletedSteps: record.CompletedSteps,
		ReadOnly:       s.readOnly,
		Record:         record,
	}
}

// furthestStep is the highest step the operator may navigate to: the cursor
// or the step right after any completed one.
func (s *OnboardingSession) furthestStep() int {
	furthest := s.record.CurrentStep
	for _, step := range s.record.CompletedSteps {
		next := step + 1
		if next > entities.LastStep {
			next = entities.LastStep
		}
		if next > furthest {
			furthest = next
		}
	}
	return furthest
}

func (s *OnboardingSession) ctx(ctx context.Context) context.Context {
	return logger.WithRestaurant(ctx, s.restaurant.ID)
}

func (s *OnboardingSession) checkWritable() error {
	if s.finalized {
		return domainerrors.ErrAlreadyOnboarded
	}
	if s.readOnly {
		return domainerrors.ErrRestaurantArchived
	}
	return nil
}

// GoToStep moves the cursor. Backward moves are always allowed, forward
// moves only up to the furthest reachable step. Archived restaurants can be
// browsed but the cursor is not saved.
func (s *OnboardingSession) GoToStep(ctx context.Context, step int) (*entities.OnboardingView, error) {
	if s.finalized {
		return nil, domainerrors.ErrAlreadyOnboarded
	}
	if !entities.ValidStep(step) {
		return nil, domainerrors.ErrInvalidStep
	}
	if step > s.furthestStep() {
		return nil, domainerrors.ErrStepNotReachable
	}

	s.record.CurrentStep = step
	if s.readOnly {
		return s.View(), nil
	}
	if err := s.persist(ctx, "navigate"); err != nil {
		return nil, err
	}
	return s.View(), nil
}

// UpdateStripe replaces the payment account payload
func (s *OnboardingSession) UpdateStripe(ctx context.Context, data entities.StripeData) (*entities.OnboardingView, error) {
	return s.write(ctx, "stripe", func(r *entities.OnboardingRecord) {
		r.StripeData = data
	})
}

// UpdatePOS replaces the point-of-sale payload
func (s *OnboardingSession) UpdatePOS(ctx context.Context, data entities.POSData) (*entities.OnboardingView, error) {
	return s.write(ctx, "pos", func(r *entities.OnboardingRecord) {
		r.POSData = data
	})
}

// UpdateQRStand replaces the QR stand payload
func (s *OnboardingSession) UpdateQRStand(ctx context.Context, data entities.QRStandData) (*entities.OnboardingView, error) {
	if data.TableCount == 0 {
		data.TableCount = data.TableSections.Total()
	}
	return s.write(ctx, "qr_stands", func(r *entities.OnboardingRecord) {
		r.QRStandData = data
	})
}

// UpdateGoogleReview replaces the review link payload
func (s *OnboardingSession) UpdateGoogleReview(ctx context.Context, data entities.GoogleReviewData) (*entities.OnboardingView, error) {
	data.ReviewLink = strings.TrimSpace(data.ReviewLink)
	return s.write(ctx, "google_reviews", func(r *entities.OnboardingRecord) {
		r.GoogleReviewData = data
	})
}

func (s *OnboardingSession) write(ctx context.Context, op string, mutate func(*entities.OnboardingRecord)) (*entities.OnboardingView, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	next := s.record.Clone()
	mutate(next)
	if err := s.commit(ctx, op, next); err != nil {
		return nil, err
	}
	return s.View(), nil
}

// commit recomputes the completed steps of next under the policy, saves it
// and only then makes it the working record.
func (s *OnboardingSession) commit(ctx context.Context, op string, next *entities.OnboardingRecord) error {
	if s.uc.policy == entities.CompletionContinuous {
		next.CompletedSteps = entities.ReconcileSteps(next)
	}
	prev := s.record
	s.record = next
	if err := s.persist(ctx, op); err != nil {
		s.record = prev
		return err
	}
	return nil
}

// persist saves the working record and mirrors the required-step count on
// the restaurant, in one unit of work.
func (s *OnboardingSession) persist(ctx context.Context, op string) error {
	ctx = s.ctx(ctx)
	required := s.record.CompletedSteps.RequiredCount()

	var updated *entities.Restaurant
	err := s.uc.uow.Do(ctx, func(txCtx context.Context) error {
		updated = nil
		if err := s.uc.onboardingRepo.Save(txCtx, s.record); err != nil {
			return err
		}
		if s.restaurant.OnboardingStep == required {
			return nil
		}
		r, err := s.uc.registry.Update(txCtx, s.restaurant.ID, entities.RestaurantPatch{OnboardingStep: &required})
		if err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		logger.Error(ctx, "Failed to save onboarding record", zap.String("operation", op), zap.Error(err))
		return err
	}
	if updated != nil {
		s.restaurant = updated
	}

	s.uc.metrics.OnboardingWrite(op)
	logger.Debug(ctx, "Onboarding record saved",
		zap.String("operation", op),
		zap.Int("current_step", s.record.CurrentStep),
		zap.Ints("completed_steps", s.record.CompletedSteps),
	)
	return nil
}

func (s *OnboardingSession) reject(ctx context.Context, reason, field string) error {
	s.uc.metrics.ValidationFailure(reason)
	logger.Debug(s.ctx(ctx), "Onboarding input rejected", zap.String("reason", reason), zap.String("field", field))
	return domainerrors.NewFieldValidationError(reason, field)
}

// AddPersonnel validates and appends a staff member. Adding a manager marks
// the personnel step complete.
func (s *OnboardingSession) AddPersonnel(ctx context.Context, input *entities.AddPersonnelInput) (*entities.Personnel, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(input.FirstName)
	email := strings.TrimSpace(input.Email)
	phone := strings.TrimSpace(input.Phone)

	// password checks come first, then the remaining fields, then uniqueness
	if input.Password != input.PasswordConfirm {
		return nil, s.reject(ctx, domainerrors.ReasonPasswordMismatch, "passwordConfirm")
	}
	if utf8.RuneCountInString(input.Password) < s.uc.minPasswordLength {
		return nil, s.reject(ctx, domainerrors.ReasonPasswordTooShort, "password")
	}
	if firstName == "" {
		return nil, s.reject(ctx, domainerrors.ReasonMissingField, "firstName")
	}
	if email == "" {
		return nil, s.reject(ctx, domainerrors.ReasonMissingField, "email")
	}
	if !input.Role.Valid() {
		return nil, s.reject(ctx, domainerrors.ReasonInvalidRole, "role")
	}

	normalized := entities.NormalizeEmail(email)
	for _, p := range s.record.PersonnelData {
		if entities.NormalizeEmail(p.Email) == normalized {
			return nil, s.reject(ctx, domainerrors.ReasonEmailInUse, "email")
		}
	}
	exists, err := s.uc.userRepo.EmailExists(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, s.reject(ctx, domainerrors.ReasonEmailInUseGlobal, "email")
	}

	if phone != "" {
		for _, p := range s.record.PersonnelData {
			if p.PhoneNumber() == phone {
				return nil, s.reject(ctx, domainerrors.ReasonPhoneInUse, "phone")
			}
		}
		exists, err := s.uc.userRepo.PhoneExists(ctx, phone)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, s.reject(ctx, domainerrors.ReasonPhoneInUseGlobal, "phone")
		}
	}

	personnel := entities.Personnel{
		ID:        utils.GenerateUUIDv7().String(),
		FirstName: firstName,
		LastName:  strings.TrimSpace(input.LastName),
		Email:     email,
		Password:  input.Password,
		Role:      input.Role,
	}
	if phone != "" {
		personnel.Phone = null.StringFrom(phone)
	}

	next := s.record.Clone()
	next.PersonnelData = append(next.PersonnelData, personnel)
	if personnel.Role == entities.PersonnelRoleManager && entities.StepSatisfied(next, entities.StepPersonnel) {
		next.CompletedSteps = next.CompletedSteps.With(entities.StepPersonnel)
	}
	if err := s.commit(ctx, "add_personnel", next); err != nil {
		return nil, err
	}

	personnel.Password = ""
	return &personnel, nil
}

// RemovePersonnel drops a staff member. Under the continuous policy removing
// the last manager un-marks the personnel step; under the sticky policy the
// step stays marked until the record is next loaded.
func (s *OnboardingSession) RemovePersonnel(ctx context.Context, personnelID string) (*entities.OnboardingView, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}

	next := s.record.Clone()
	kept := next.PersonnelData[:0]
	for _, p := range next.PersonnelData {
		if p.ID != personnelID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(s.record.PersonnelData) {
		return nil, s.reject(ctx, domainerrors.ReasonPersonnelNotFound, "personnelId")
	}
	next.PersonnelData = kept

	if err := s.commit(ctx, "remove_personnel", next); err != nil {
		return nil, err
	}
	return s.View(), nil
}

// CompleteStep marks a step complete and advances the cursor. Completing
// the last step finalizes onboarding.
func (s *OnboardingSession) CompleteStep(ctx context.Context, step int) (*entities.OnboardingResult, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	if !entities.ValidStep(step) {
		return nil, domainerrors.ErrInvalidStep
	}
	if step > s.furthestStep() {
		return nil, domainerrors.ErrStepNotReachable
	}
	if !entities.StepSatisfied(s.record, step) {
		return nil, domainerrors.ErrStepIncomplete
	}

	next := s.record.Clone()
	next.CompletedSteps = next.CompletedSteps.With(step)

	if step == entities.LastStep {
		return s.finalize(ctx, next)
	}

	next.CurrentStep = step + 1
	if err := s.commit(ctx, "complete_step", next); err != nil {
		return nil, err
	}
	return &entities.OnboardingResult{View: s.View()}, nil
}

// finalize activates the restaurant, registers its staff and discards the
// onboarding record, all in one unit of work.
func (s *OnboardingSession) finalize(ctx context.Context, next *entities.OnboardingRecord) (*entities.OnboardingResult, error) {
	ctx = s.ctx(ctx)
	if !entities.RequiredComplete(entities.ReconcileSteps(next)) {
		return nil, domainerrors.ErrRequiredStepsIncomplete
	}

	onboarded := true
	step := entities.FinalizedStepMark
	status := entities.RestaurantStatusActive
	reviewLink := next.GoogleReviewData.ReviewLink
	qr := next.QRStandData
	patch := entities.RestaurantPatch{
		IsOnboarded:      &onboarded,
		OnboardingStep:   &step,
		Status:           &status,
		GoogleReviewLink: &reviewLink,
		QRStandConfig:    &qr,
	}

	var (
		restaurant *entities.Restaurant
		staff      []*entities.User
	)
	err := s.uc.uow.Do(ctx, func(txCtx context.Context) error {
		r, err := s.uc.registry.Update(txCtx, s.restaurant.ID, patch)
		if err != nil {
			return err
		}
		restaurant = r

		staff, err = s.uc.staff.BulkRegister(txCtx, s.restaurant.ID, next.PersonnelData)
		if err != nil {
			return err
		}
		return s.uc.onboardingRepo.Delete(txCtx, s.restaurant.ID)
	})
	if err != nil {
		logger.Error(ctx, "Failed to finalize onboarding", zap.Error(err))
		return nil, err
	}

	s.restaurant = restaurant
	s.record = next
	s.finalized = true

	logger.Info(ctx, "Restaurant onboarded", zap.Int("staff_count", len(staff)))
	s.uc.metrics.Finalized()
	publishLifecycle(ctx, s.uc.publisher, s.uc.metrics, repositories.SubjectRestaurantOnboarded, restaurant, len(staff))

	view := s.View()
	view.ReadOnly = true
	return &entities.OnboardingResult{View: view, Finalized: true, Staff: staff}, nil
}

// Restore un-archives the restaurant through the registry and re-enables
// writes. Saved step data is left untouched.
func (s *OnboardingSession) Restore(ctx context.Context) (*entities.OnboardingView, error) {
	if s.finalized {
		return nil, domainerrors.ErrAlreadyOnboarded
	}
	r, err := s.uc.registry.Restore(ctx, s.restaurant.ID)
	if err != nil {
		return nil, err
	}
	s.restaurant = r
	s.readOnly = false
	return s.View(), nil
}
