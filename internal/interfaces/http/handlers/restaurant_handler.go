package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"splitdine-admin.backend/internal/domain/entities"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	"splitdine-admin.backend/internal/interfaces/http/middleware"
	"splitdine-admin.backend/internal/interfaces/http/response"
	"splitdine-admin.backend/internal/usecases"
	"splitdine-admin.backend/pkg/utils"
)

// RestaurantHandler handles restaurant registry endpoints
type RestaurantHandler struct {
	restaurantUsecase *usecases.RestaurantUsecase
	authUsecase       *usecases.AuthUsecase
}

// NewRestaurantHandler creates a new restaurant handler
func NewRestaurantHandler(restaurantUsecase *usecases.RestaurantUsecase, authUsecase *usecases.AuthUsecase) *RestaurantHandler {
	return &RestaurantHandler{
		restaurantUsecase: restaurantUsecase,
		authUsecase:       authUsecase,
	}
}

func paginate(c *gin.Context, items []*entities.Restaurant) {
	page, meta := utils.PageOf(items, paginationParams(c))
	response.Paginated(c, page, meta)
}

// ListRestaurants lists restaurants that are not archived
// GET /api/v1/restaurants
func (h *RestaurantHandler) ListRestaurants(c *gin.Context) {
	items, err := h.restaurantUsecase.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	paginate(c, items)
}

// ListArchived lists archived restaurants
// GET /api/v1/restaurants/archived
func (h *RestaurantHandler) ListArchived(c *gin.Context) {
	items, err := h.restaurantUsecase.ListArchived(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	paginate(c, items)
}

// GetRestaurant gets a restaurant by ID
// GET /api/v1/restaurants/:id
func (h *RestaurantHandler) GetRestaurant(c *gin.Context) {
	id, err := restaurantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	restaurant, err := h.restaurantUsecase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, restaurant)
}

// CreateRestaurant registers a restaurant
// POST /api/v1/restaurants
func (h *RestaurantHandler) CreateRestaurant(c *gin.Context) {
	var input entities.CreateRestaurantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	restaurant, err := h.restaurantUsecase.Add(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, restaurant)
}

// UpdateRestaurant merges a partial update into a restaurant
// PATCH /api/v1/restaurants/:id
func (h *RestaurantHandler) UpdateRestaurant(c *gin.Context) {
	id, err := restaurantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var patch entities.RestaurantPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	restaurant, err := h.restaurantUsecase.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, restaurant)
}

// DeleteRestaurant archives a restaurant, or purges it when onboarding never started
// DELETE /api/v1/restaurants/:id
func (h *RestaurantHandler) DeleteRestaurant(c *gin.Context) {
	id, err := restaurantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	outcome, err := h.restaurantUsecase.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"outcome": outcome})
}

// RestoreRestaurant un-archives a restaurant
// POST /api/v1/restaurants/:id/restore
func (h *RestaurantHandler) RestoreRestaurant(c *gin.Context) {
	id, err := restaurantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	restaurant, err := h.restaurantUsecase.Restore(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, restaurant)
}

// DeletePermanently removes a restaurant after the operator retyped its
// name and re-entered their password
// POST /api/v1/restaurants/:id/delete-permanently
func (h *RestaurantHandler) DeletePermanently(c *gin.Context) {
	id, err := restaurantID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.PermanentDeleteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	restaurant, err := h.restaurantUsecase.Get(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if input.ConfirmName != restaurant.Name {
		response.Error(c, domainerrors.NewFieldValidationError(domainerrors.ReasonNameMismatch, "confirmName"))
		return
	}

	operator, _ := middleware.GetOperatorEmail(c)
	if err := h.authUsecase.VerifyPassword(ctx, operator, input.Password); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.restaurantUsecase.DeletePermanently(ctx, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
