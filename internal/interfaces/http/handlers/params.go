package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	"splitdine-admin.backend/pkg/logger"
	"splitdine-admin.backend/pkg/utils"
)

func restaurantID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, domainerrors.BadRequest("Invalid restaurant ID")
	}
	// tag log lines of the rest of the request
	c.Request = c.Request.WithContext(logger.WithRestaurant(c.Request.Context(), id))
	return id, nil
}

func paginationParams(c *gin.Context) utils.PaginationParams {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return utils.GetPaginationParams(page, limit)
}
