package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestSuccess(t *testing.T) {
	c, w := newContext()

	Success(c, http.StatusOK, gin.H{"ok": true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
}

func TestPaginated(t *testing.T) {
	c, w := newContext()

	Paginated(c, []int{1, 2}, gin.H{"total": 2})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[1,2],"meta":{"total":2}}`, w.Body.String())
}

func TestError_AppError(t *testing.T) {
	c, w := newContext()

	Error(c, domainerrors.NotFound("missing"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), domainerrors.CodeNotFound)
	assert.Contains(t, w.Body.String(), "missing")
}

func TestError_GenericError(t *testing.T) {
	c, w := newContext()

	Error(c, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), domainerrors.CodeInternalError)
}

func TestError_ValidationError(t *testing.T) {
	c, w := newContext()

	Error(c, fmt.Errorf("add personnel: %w", domainerrors.NewFieldValidationError(domainerrors.ReasonEmailInUse, "email")))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domainerrors.CodeValidation, body["code"])
	assert.Equal(t, domainerrors.ReasonEmailInUse, body["reason"])
	assert.Equal(t, "email", body["field"])
}

func TestError_DomainMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domainerrors.ErrNotFound, http.StatusNotFound, domainerrors.CodeNotFound},
		{domainerrors.ErrAlreadyExists, http.StatusConflict, domainerrors.CodeConflict},
		{domainerrors.ErrAlreadyOnboarded, http.StatusConflict, domainerrors.CodeConflict},
		{domainerrors.ErrRestaurantArchived, http.StatusLocked, domainerrors.CodeArchived},
		{domainerrors.ErrStepIncomplete, http.StatusUnprocessableEntity, domainerrors.CodeStepIncomplete},
		{domainerrors.ErrRequiredStepsIncomplete, http.StatusUnprocessableEntity, domainerrors.CodeStepIncomplete},
		{domainerrors.ErrInvalidStep, http.StatusBadRequest, domainerrors.CodeBadRequest},
		{domainerrors.ErrStepNotReachable, http.StatusBadRequest, domainerrors.CodeBadRequest},
		{domainerrors.ErrInvalidCredentials, http.StatusUnauthorized, domainerrors.CodeInvalidCredentials},
		{domainerrors.ErrUnauthorized, http.StatusUnauthorized, domainerrors.CodeUnauthorized},
		{domainerrors.ErrForbidden, http.StatusForbidden, domainerrors.CodeForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			c, w := newContext()
			Error(c, fmt.Errorf("wrapped: %w", tc.err))
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.code)
		})
	}
}

func TestErrorWithError(t *testing.T) {
	c, w := newContext()

	ErrorWithError(c, http.StatusBadRequest, "ERR_X", "bad")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"ERR_X"`)
}
