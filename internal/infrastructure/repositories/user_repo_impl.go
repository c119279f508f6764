package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"splitdine-admin.backend/internal/domain/entities"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	domainRepos "splitdine-admin.backend/internal/domain/repositories"
)

// UserRepository implements the global user store. Users live in one JSON
// array under the users key.
type UserRepository struct {
	store domainRepos.KeyValueStore
}

// NewUserRepository creates a new user repository
func NewUserRepository(store domainRepos.KeyValueStore) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) load(ctx context.Context) ([]*entities.User, error) {
	var users []*entities.User
	if _, err := loadDocument(ctx, r.store, domainRepos.UsersKey, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []*entities.User{}
	}
	return users, nil
}

// List returns every user
func (r *UserRepository) List(ctx context.Context) ([]*entities.User, error) {
	return r.load(ctx)
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

// EmailExists reports whether any user has the email, ignoring case
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	needle := entities.NormalizeEmail(email)
	if needle == "" {
		return false, nil
	}
	users, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if entities.NormalizeEmail(u.Email) == needle {
			return true, nil
		}
	}
	return false, nil
}

// PhoneExists reports whether any user has the phone. Empty phones never match.
func (r *UserRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	needle := strings.TrimSpace(phone)
	if needle == "" {
		return false, nil
	}
	users, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if strings.TrimSpace(u.Phone) == needle {
			return true, nil
		}
	}
	return false, nil
}

// CreateMany appends users in one write
func (r *UserRepository) CreateMany(ctx context.Context, users []*entities.User) error {
	if len(users) == 0 {
		return nil
	}
	return atomically(ctx, r.store, func(ctx context.Context) error {
		existing, err := r.load(ctx)
		if err != nil {
			return err
		}
		return saveDocument(ctx, r.store, domainRepos.UsersKey, append(existing, users...))
	})
}

// ListByRestaurant returns the staff of a restaurant
func (r *UserRepository) ListByRestaurant(ctx context.Context, restaurantID int) ([]*entities.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entities.User, 0)
	for _, u := range users {
		if u.RestaurantID == restaurantID {
			out = append(out, u)
		}
	}
	return out, nil
}
