package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"splitdine-admin.backend/internal/domain/entities"
	"splitdine-admin.backend/internal/infrastructure/kvstore"
	"splitdine-admin.backend/internal/infrastructure/messaging"
	infraRepos "splitdine-admin.backend/internal/infrastructure/repositories"
	"splitdine-admin.backend/internal/interfaces/http/middleware"
	"splitdine-admin.backend/internal/usecases"
	"splitdine-admin.backend/pkg/crypto"
	"splitdine-admin.backend/pkg/jwt"
	"splitdine-admin.backend/pkg/metrics"
)

const (
	operatorEmail    = "ops@splitdine.nl"
	operatorPassword = "operator-secret"
)

type posStatusStub map[int]entities.POSStatus

func (s posStatusStub) Status(id int) (entities.POSStatus, bool) {
	st, ok := s[id]
	return st, ok
}

type testEnv struct {
	router      *gin.Engine
	backend     *kvstore.MemoryBackend
	restaurants *usecases.RestaurantUsecase
	onboarding  *usecases.OnboardingUsecase
	users       *infraRepos.UserRepository
	posStatus   posStatusStub
	token       string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := kvstore.NewMemoryBackend()
	store := kvstore.New(backend)
	restaurantRepo := infraRepos.NewRestaurantRepository(store)
	onboardingRepo := infraRepos.NewOnboardingRepository(store)
	userRepo := infraRepos.NewUserRepository(store)
	publisher := messaging.NewLogPublisher()
	m := metrics.New()

	restaurantUC := usecases.NewRestaurantUsecase(restaurantRepo, onboardingRepo, store, publisher, m)
	onboardingUC := usecases.NewOnboardingUsecase(
		restaurantUC,
		onboardingRepo,
		userRepo,
		infraRepos.NewStaffDirectory(userRepo, crypto.MinCost),
		store,
		publisher,
		m,
		usecases.OnboardingOptions{},
	)

	hash, err := crypto.HashPasswordWithCost(operatorPassword, crypto.MinCost)
	require.NoError(t, err)
	jwtService := jwt.NewJWTService("test-secret", time.Hour, 24*time.Hour)
	authUC := usecases.NewAuthUsecase(usecases.Operator{Email: operatorEmail, PasswordHash: hash}, jwtService)

	pair, err := jwtService.GenerateTokenPair(operatorEmail, string(entities.UserRoleAdmin))
	require.NoError(t, err)

	env := &testEnv{
		backend:     backend,
		restaurants: restaurantUC,
		onboarding:  onboardingUC,
		users:       userRepo,
		posStatus:   posStatusStub{},
		token:       pair.AccessToken,
	}

	authH := NewAuthHandler(authUC)
	restaurantH := NewRestaurantHandler(restaurantUC, authUC)
	onboardingH := NewOnboardingHandler(onboardingUC, env.posStatus)

	r := gin.New()
	r.POST("/auth/login", authH.Login)
	r.POST("/auth/refresh", authH.RefreshToken)

	api := r.Group("/", middleware.AuthMiddleware(jwtService))
	api.GET("/restaurants", restaurantH.ListRestaurants)
	api.GET("/restaurants/archived", restaurantH.ListArchived)
	api.POST("/restaurants", restaurantH.CreateRestaurant)
	api.GET("/restaurants/:id", restaurantH.GetRestaurant)
	api.PATCH("/restaurants/:id", restaurantH.UpdateRestaurant)
	api.DELETE("/restaurants/:id", restaurantH.DeleteRestaurant)
	api.POST("/restaurants/:id/restore", restaurantH.RestoreRestaurant)
	api.POST("/restaurants/:id/delete-permanently", restaurantH.DeletePermanently)

	ob := api.Group("/restaurants/:id/onboarding")
	ob.GET("", onboardingH.GetOnboarding)
	ob.PUT("/step", onboardingH.GoToStep)
	ob.POST("/personnel", onboardingH.AddPersonnel)
	ob.DELETE("/personnel/:personnelId", onboardingH.RemovePersonnel)
	ob.PUT("/stripe", onboardingH.UpdateStripe)
	ob.PUT("/pos", onboardingH.UpdatePOS)
	ob.PUT("/qr-stands", onboardingH.UpdateQRStands)
	ob.PUT("/google-reviews", onboardingH.UpdateGoogleReviews)
	ob.POST("/steps/:step/complete", onboardingH.CompleteStep)
	ob.POST("/restore", onboardingH.Restore)
	ob.GET("/pos-status", onboardingH.GetPOSStatus)

	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AuthorizationHeader, middleware.BearerPrefix+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) addRestaurant(t *testing.T, name string) *entities.Restaurant {
	t.Helper()
	r, err := e.restaurants.Add(context.Background(), &entities.CreateRestaurantInput{Name: name})
	require.NoError(t, err)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}
