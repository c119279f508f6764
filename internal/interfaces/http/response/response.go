package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	"splitdine-admin.backend/pkg/logger"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Paginated sends a list page with its metadata
func Paginated(c *gin.Context, items interface{}, meta interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"meta":  meta,
	})
}

// toAppError maps domain errors onto HTTP errors
func toAppError(err error) *domainerrors.AppError {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var vErr *domainerrors.ValidationError
	if errors.As(err, &vErr) {
		return domainerrors.Unprocessable(vErr.Reason, vErr)
	}

	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound("restaurant not found")
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		return domainerrors.Conflict("resource already exists")
	case errors.Is(err, domainerrors.ErrAlreadyOnboarded):
		return domainerrors.NewAppError(http.StatusConflict, domainerrors.CodeConflict, err.Error(), err)
	case errors.Is(err, domainerrors.ErrRestaurantArchived):
		return domainerrors.NewAppError(http.StatusLocked, domainerrors.CodeArchived, "restaurant is archived; restore it to make changes", err)
	case errors.Is(err, domainerrors.ErrStepIncomplete), errors.Is(err, domainerrors.ErrRequiredStepsIncomplete):
		return domainerrors.NewAppError(http.StatusUnprocessableEntity, domainerrors.CodeStepIncomplete, err.Error(), err)
	case errors.Is(err, domainerrors.ErrInvalidStep), errors.Is(err, domainerrors.ErrStepNotReachable),
		errors.Is(err, domainerrors.ErrInvalidInput), errors.Is(err, domainerrors.ErrBadRequest):
		return domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeBadRequest, err.Error(), err)
	case errors.Is(err, domainerrors.ErrInvalidCredentials):
		return domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeInvalidCredentials, "invalid email or password", err)
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return domainerrors.Unauthorized("unauthorized")
	case errors.Is(err, domainerrors.ErrForbidden):
		return domainerrors.Forbidden("forbidden")
	}
	return domainerrors.InternalError(err)
}

// Error sends an error response
func Error(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		ctx := context.Background()
		if c.Request != nil {
			ctx = c.Request.Context()
		}
		logger.Error(ctx, "Request failed", zap.Error(err))
	}

	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	var vErr *domainerrors.ValidationError
	if errors.As(err, &vErr) {
		body["reason"] = vErr.Reason
		if vErr.Field != "" {
			body["field"] = vErr.Field
		}
	}
	c.JSON(appErr.Status, body)
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
