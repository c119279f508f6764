package repositories

import (
	"context"

	"splitdine-admin.backend/internal/domain/entities"
)

// RestaurantRepository defines restaurant collection operations
type RestaurantRepository interface {
	List(ctx context.Context) ([]*entities.Restaurant, error)
	GetByID(ctx context.Context, id int) (*entities.Restaurant, error)
	Create(ctx context.Context, restaurant *entities.Restaurant) error
	Update(ctx context.Context, restaurant *entities.Restaurant) error
	Remove(ctx context.Context, id int) error
}
