package repositories

import (
	"context"

	"github.com/google/uuid"
	"splitdine-admin.backend/internal/domain/entities"
)

// UserRepository defines global user store operations
type UserRepository interface {
	List(ctx context.Context) ([]*entities.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	// EmailExists compares case-insensitively.
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	CreateMany(ctx context.Context, users []*entities.User) error
	ListByRestaurant(ctx context.Context, restaurantID int) ([]*entities.User, error)
}

// StaffDirectory turns onboarding personnel into restaurant staff accounts
type StaffDirectory interface {
	BulkRegister(ctx context.Context, restaurantID int, personnel []entities.Personnel) ([]*entities.User, error)
}
