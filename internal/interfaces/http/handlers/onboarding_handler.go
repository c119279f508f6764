package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"splitdine-admin.backend/internal/domain/entities"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	"splitdine-admin.backend/internal/interfaces/http/response"
	"splitdine-admin.backend/internal/usecases"
)

type posStatusSource interface {
	Status(restaurantID int) (entities.POSStatus, bool)
}

// OnboardingHandler handles the onboarding wizard endpoints. Every request
// attaches to the saved session; only GET behaves like a fresh page load.
type OnboardingHandler struct {
	onboardingUsecase *usecases.OnboardingUsecase
	posStatus         posStatusSource
}

// NewOnboardingHandler creates a new onboarding handler
func NewOnboardingHandler(onboardingUsecase *usecases.OnboardingUsecase, posStatus posStatusSource) *OnboardingHandler {
	return &OnboardingHandler{
		onboardingUsecase: onboardingUsecase,
		posStatus:         posStatus,
	}
}

func (h *OnboardingHandler) attach(c *gin.Context) (*usecases.OnboardingSession, context.Context, bool) {
	id, err := restaurantID(c)
	if err != nil {
		response.Error(c, err)
		return nil, nil, false
	}
	ctx := c.Request.Context()
	session, err := h.onboardingUsecase.Attach(ctx, id)
	if err != nil {
		response.Error(c, err)
		return nil, nil, false
	}
	return session, ctx, true
}

func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return false
	}
	return true
}

func respondView(c *gin.Context, view *entities.OnboardingView, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// GetOnboarding opens the wizard at the resume step
// GET /api/v1/restaurants/:id/onboarding
func (h *OnboardingHandler) GetOnboarding(c *gin.Context) {
	id, err := restaurantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.onboardingUsecase.Open(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, session.View())
}

// GoToStep moves the wizard cursor
// PUT /api/v1/restaurants/:id/onboarding/step
func (h *OnboardingHandler) GoToStep(c *gin.Context) {
	var input struct {
		Step int `json:"step" binding:"required"`
	}
	if !bind(c, &input) {
		return
	}
	session, ctx, ok := h.attach(c)
	if !ok {
		return
	}
	view, err := session.GoToStep(ctx, input.Step)
	respondView(c, view, err)
}

// AddPersonnel adds a staff member
// POST /api/v1/restaurants/:id/onboarding/personnel
func (h *OnboardingHandler) AddPersonnel(c *gin.Context) {
	var input entities.AddPersonnelInput
	if !bind(c, &input) {
		return
	}
	session, ctx, ok := h.attach(c)
	if !ok {
		return
	}

	personnel, err := session.AddPersonnel(ctx, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"personnel": personnel,
		"view":      session.View(),
	})
}

// RemovePersonnel removes a staff member
// DELETE /api/v1/restaurants/:id/onboarding/personnel/:personnelId
func (h *OnboardingHandler) RemovePersonnel(c *gin.Context) {
	session, ctx, ok := h.attach(c)
	if !ok {
		return
	}
	view, err := session.RemovePersonnel(ctx, c.Param("personnelId"))
	respondView(c, view, err)
}

// UpdateStripe saves the payment account step
// PUT /api/v1/restaurants/:id/onboarding/stripe
func (h *OnboardingHandler) UpdateStripe(c *gin.Context) {
	var input entities.StripeData
	if !bind(c, &input) {
		return
	}
	session, ctx, ok := h.attach(c)
	if !ok {
		return
	}
	view, err := session.UpdateStripe(ctx, input)
	respondView(c, view, err)
}

// UpdatePOS saves the POS integration step
// PUT /api/v1/restaurants/:id/onboarding/pos
func (h *OnboardingHandler) UpdatePOS(c *gin.Context) {
	var input entities.POSData
	if !bind(c, &input) {
		return
	}
	session, ctx, ok := h.attach(c)
	if !ok {
		return
	}
	view, err := session.UpdatePOS(ctx, input)
	respondView(c, view, err)
}

// UpdateQRStands saves the QR stand step
// PUT /api/v1/restaurants/:id/onboarding/qr-stands
func (h *OnboardingHandler) UpdateQRStands(c *gin.Context) {
	var input entities.QRStandData
	if !bind(c, &input) {
		return
	}
	session, ctx, ok := h.attach(c)
	if !ok {
		return
	}
	view, err := session.UpdateQRStand(ctx, input)
	respondView(c, view, err)
}

// UpdateGoogleReviews saves the review link step
// PUT /api/v1/restaurants/:id/onboarding/google-reviews
func (h *OnboardingHandler) UpdateGoogleReviews(c *gin.Context) {
	var input entities.GoogleReviewData
	if !bind(c, &input) {
		return
	}
	session, ctx, ok := h.attach(c)
	if !ok {
		return
	}
	view, err := session.UpdateGoogleReview(ctx, input)
	respondView(c, view, err)
}

// CompleteStep marks a step complete; completing the last step activates the restaurant
// POST /api/v1/restaurants/:id/onboarding/steps/:step/complete
func (h *OnboardingHandler) CompleteStep(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		response.Error(c, domainerrors.ErrInvalidStep)
		return
	}
	session, ctx, ok := h.attach(c)
	if !ok {
		return
	}

	result, err := session.CompleteStep(ctx, step)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Restore un-archives the restaurant from inside the wizard
// POST /api/v1/restaurants/:id/onboarding/restore
func (h *OnboardingHandler) Restore(c *gin.Context) {
	session, ctx, ok := h.attach(c)
	if !ok {
		return
	}
	view, err := session.Restore(ctx)
	respondView(c, view, err)
}

// GetPOSStatus returns the last polled POS connection status
// GET /api/v1/restaurants/:id/onboarding/pos-status
func (h *OnboardingHandler) GetPOSStatus(c *gin.Context) {
	id, err := restaurantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	status, ok := h.posStatus.Status(id)
	if !ok {
		response.Error(c, domainerrors.NotFound("POS status not polled yet"))
		return
	}
	response.Success(c, http.StatusOK, status)
}
