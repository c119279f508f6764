package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitdine-admin.backend/internal/domain/entities"
	"splitdine-admin.backend/internal/infrastructure/jobs"
	"splitdine-admin.backend/internal/infrastructure/kvstore"
	"splitdine-admin.backend/internal/infrastructure/messaging"
	"splitdine-admin.backend/internal/infrastructure/repositories"
	"splitdine-admin.backend/internal/interfaces/http/handlers"
	"splitdine-admin.backend/internal/interfaces/http/middleware"
	"splitdine-admin.backend/internal/usecases"
	"splitdine-admin.backend/pkg/crypto"
	"splitdine-admin.backend/pkg/jwt"
	"splitdine-admin.backend/pkg/metrics"
)

func stubDeps() routeDeps {
	return routeDeps{
		authHandler:       &handlers.AuthHandler{},
		restaurantHandler: &handlers.RestaurantHandler{},
		onboardingHandler: &handlers.OnboardingHandler{},
		authMiddleware:    func(c *gin.Context) { c.Next() },
	}
}

func TestRegisterAPIV1Routes_RegistersKeyRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerAPIV1Routes(r, stubDeps())

	expects := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/auth/login"},
		{"POST", "/api/v1/auth/refresh"},
		{"GET", "/api/v1/restaurants"},
		{"GET", "/api/v1/restaurants/archived"},
		{"POST", "/api/v1/restaurants"},
		{"PATCH", "/api/v1/restaurants/:id"},
		{"DELETE", "/api/v1/restaurants/:id"},
		{"POST", "/api/v1/restaurants/:id/restore"},
		{"POST", "/api/v1/restaurants/:id/delete-permanently"},
		{"GET", "/api/v1/restaurants/:id/onboarding"},
		{"PUT", "/api/v1/restaurants/:id/onboarding/step"},
		{"DELETE", "/api/v1/restaurants/:id/onboarding/personnel/:personnelId"},
		{"POST", "/api/v1/restaurants/:id/onboarding/steps/:step/complete"},
		{"GET", "/api/v1/restaurants/:id/onboarding/pos-status"},
	}

	routes := r.Routes()
	for _, exp := range expects {
		found := false
		for _, route := range routes {
			if route.Method == exp.method && route.Path == exp.path {
				found = true
				break
			}
		}
		assert.True(t, found, "route %s %s not registered", exp.method, exp.path)
	}
}

func TestApplyCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	applyCORSMiddleware(r, []string{"http://localhost:3000"})
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRegisterHealthRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerHealthRoute(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"status": "ok", "service": serviceName, "version": serviceVersion}, body)
}

// newRouter wired to real usecases on the memory store
func TestNewRouter_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := baseTestConfig()
	hash, err := crypto.HashPasswordWithCost("operator-secret", crypto.MinCost)
	require.NoError(t, err)

	store := kvstore.New(kvstore.NewMemoryBackend())
	restaurantRepo := repositories.NewRestaurantRepository(store)
	onboardingRepo := repositories.NewOnboardingRepository(store)
	userRepo := repositories.NewUserRepository(store)
	m := metrics.New()
	pub := messaging.NewLogPublisher()
	jwtService := jwt.NewJWTService("secret", time.Minute, time.Hour)

	authUC := usecases.NewAuthUsecase(usecases.Operator{Email: cfg.Admin.Email, PasswordHash: hash}, jwtService)
	restaurantUC := usecases.NewRestaurantUsecase(restaurantRepo, onboardingRepo, store, pub, m)
	onboardingUC := usecases.NewOnboardingUsecase(restaurantUC, onboardingRepo, userRepo,
		repositories.NewStaffDirectory(userRepo, crypto.MinCost), store, pub, m, usecases.OnboardingOptions{})
	poller := jobs.NewPOSStatusPoller(restaurantRepo, onboardingRepo, time.Hour)

	r := newRouter(cfg, m, routeDeps{
		authHandler:       handlers.NewAuthHandler(authUC),
		restaurantHandler: handlers.NewRestaurantHandler(restaurantUC, authUC),
		onboardingHandler: handlers.NewOnboardingHandler(onboardingUC, poller),
		authMiddleware:    middleware.AuthMiddleware(jwtService),
	})

	send := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set(middleware.AuthorizationHeader, middleware.BearerPrefix+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := send(http.MethodPost, "/api/v1/auth/login", "", entities.LoginInput{Email: cfg.Admin.Email, Password: "operator-secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login entities.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	assert.Equal(t, http.StatusUnauthorized, send(http.MethodGet, "/api/v1/restaurants", "", nil).Code)

	rec = send(http.MethodPost, "/api/v1/restaurants", login.AccessToken, entities.CreateRestaurantInput{Name: "Het Anker"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec = send(http.MethodGet, "/api/v1/restaurants/1/onboarding", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `splitdine_admin_restaurant_transitions_total{transition="created"} 1`))
	assert.True(t, strings.Contains(rec.Body.String(), "splitdine_admin_http_requests_total"))
}
