package repositories

import (
	"context"
	"time"

	"splitdine-admin.backend/internal/domain/entities"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	domainRepos "splitdine-admin.backend/internal/domain/repositories"
)

// RestaurantRepository implements restaurant collection operations. All
// restaurants live in one JSON array under the restaurants key.
type RestaurantRepository struct {
	store domainRepos.KeyValueStore
}

// NewRestaurantRepository creates a new restaurant repository
func NewRestaurantRepository(store domainRepos.KeyValueStore) *RestaurantRepository {
	return &RestaurantRepository{store: store}
}

func (r *RestaurantRepository) load(ctx context.Context) ([]*entities.Restaurant, error) {
	var items []*entities.Restaurant
	if _, err := loadDocument(ctx, r.store, domainRepos.RestaurantsKey, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entities.Restaurant{}
	}
	return items, nil
}

func (r *RestaurantRepository) save(ctx context.Context, items []*entities.Restaurant) error {
	return saveDocument(ctx, r.store, domainRepos.RestaurantsKey, items)
}

// List returns every restaurant, archived ones included
func (r *RestaurantRepository) List(ctx context.Context) ([]*entities.Restaurant, error) {
	return r.load(ctx)
}

// GetByID gets a restaurant by ID
func (r *RestaurantRepository) GetByID(ctx context.Context, id int) (*entities.Restaurant, error) {
	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

// Create appends a restaurant. A zero ID is replaced by max existing ID + 1.
func (r *RestaurantRepository) Create(ctx context.Context, restaurant *entities.Restaurant) error {
	requested := restaurant.ID
	return atomically(ctx, r.store, func(ctx context.Context) error {
		restaurant.ID = requested
		items, err := r.load(ctx)
		if err != nil {
			return err
		}

		maxID := 0
		for _, item := range items {
			if restaurant.ID != 0 && item.ID == restaurant.ID {
				return domainerrors.ErrAlreadyExists
			}
			if item.ID > maxID {
				maxID = item.ID
			}
		}
		if restaurant.ID == 0 {
			restaurant.ID = maxID + 1
		}

		now := time.Now()
		if restaurant.CreatedAt.IsZero() {
			restaurant.CreatedAt = now
		}
		restaurant.UpdatedAt = now

		return r.save(ctx, append(items, restaurant))
	})
}

// Update replaces a restaurant
func (r *RestaurantRepository) Update(ctx context.Context, restaurant *entities.Restaurant) error {
	return atomically(ctx, r.store, func(ctx context.Context) error {
		items, err := r.load(ctx)
		if err != nil {
			return err
		}
		for i, item := range items {
			if item.ID == restaurant.ID {
				restaurant.UpdatedAt = time.Now()
				items[i] = restaurant
				return r.save(ctx, items)
			}
		}
		return domainerrors.ErrNotFound
	})
}

// Remove drops a restaurant from the collection
func (r *RestaurantRepository) Remove(ctx context.Context, id int) error {
	return atomically(ctx, r.store, func(ctx context.Context) error {
		items, err := r.load(ctx)
		if err != nil {
			return err
		}
		out := make([]*entities.Restaurant, 0, len(items))
		for _, item := range items {
			if item.ID != id {
				out = append(out, item)
			}
		}
		if len(out) == len(items) {
			return domainerrors.ErrNotFound
		}
		return r.save(ctx, out)
	})
}
