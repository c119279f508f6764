package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes the given function within a transaction scope. Store
	// writes made through ctx inside fn are committed together, or not at all.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
