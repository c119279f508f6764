package usecases_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"splitdine-admin.backend/internal/domain/entities"
	"splitdine-admin.backend/internal/domain/repositories"
	"splitdine-admin.backend/internal/infrastructure/kvstore"
	infraRepos "splitdine-admin.backend/internal/infrastructure/repositories"
	"splitdine-admin.backend/internal/usecases"
	"splitdine-admin.backend/pkg/crypto"
	"splitdine-admin.backend/pkg/metrics"
)

// Mock EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event repositories.LifecycleEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Mock StaffDirectory
type MockStaffDirectory struct {
	mock.Mock
}

func (m *MockStaffDirectory) BulkRegister(ctx context.Context, restaurantID int, personnel []entities.Personnel) ([]*entities.User, error) {
	args := m.Called(ctx, restaurantID, personnel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []repositories.LifecycleEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event repositories.LifecycleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Subject)
	}
	return out
}

type fixture struct {
	backend     *kvstore.MemoryBackend
	store       *kvstore.Store
	restaurants *infraRepos.RestaurantRepository
	onboarding  *infraRepos.OnboardingRepository
	users       *infraRepos.UserRepository
	publisher   *recordingPublisher
	metrics     *metrics.Metrics
	registry    *usecases.RestaurantUsecase
	engine      *usecases.OnboardingUsecase
}

func newFixture(t *testing.T, policy entities.CompletionPolicy) *fixture {
	t.Helper()
	backend := kvstore.NewMemoryBackend()
	store := kvstore.New(backend)
	f := &fixture{
		backend:     backend,
		store:       store,
		restaurants: infraRepos.NewRestaurantRepository(store),
		onboarding:  infraRepos.NewOnboardingRepository(store),
		users:       infraRepos.NewUserRepository(store),
		publisher:   &recordingPublisher{},
		metrics:     metrics.New(),
	}
	f.registry = usecases.NewRestaurantUsecase(f.restaurants, f.onboarding, store, f.publisher, f.metrics)
	f.engine = usecases.NewOnboardingUsecase(
		f.registry,
		f.onboarding,
		f.users,
		infraRepos.NewStaffDirectory(f.users, crypto.MinCost),
		store,
		f.publisher,
		f.metrics,
		usecases.OnboardingOptions{Policy: policy},
	)
	return f
}

func (f *fixture) addRestaurant(t *testing.T, name string) *entities.Restaurant {
	t.Helper()
	r, err := f.registry.Add(context.Background(), &entities.CreateRestaurantInput{Name: name, Location: "Amsterdam"})
	require.NoError(t, err)
	return r
}

func (f *fixture) saveRecord(t *testing.T, record *entities.OnboardingRecord) {
	t.Helper()
	require.NoError(t, f.onboarding.Save(context.Background(), record))
}

func managerInput(email string) *entities.AddPersonnelInput {
	return &entities.AddPersonnelInput{
		FirstName:       "Anna",
		LastName:        "de Vries",
		Email:           email,
		Password:        "secret123",
		PasswordConfirm: "secret123",
		Role:            entities.PersonnelRoleManager,
	}
}

func staffInput(email string) *entities.AddPersonnelInput {
	in := managerInput(email)
	in.FirstName = "Bram"
	in.Role = entities.PersonnelRoleStaff
	return in
}

var configuredPOS = entities.POSData{
	POSType:     "lightspeed",
	Username:    "kas",
	Password:    "pos-secret",
	BaseURL:     "https://pos.example.nl",
	Environment: "production",
	IsActive:    true,
}
