package repositories

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KeyValueStore.Get for absent keys
var ErrKeyNotFound = errors.New("key not found")

// Durable store keys
const (
	RestaurantsKey      = "restaurants"
	UsersKey            = "users"
	OnboardingKeyPrefix = "onboarding_"
)

// KeyValueStore is the durable store contract. Values are JSON documents
// replaced atomically per key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
