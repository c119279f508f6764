package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domainRepos "splitdine-admin.backend/internal/domain/repositories"
)

// loadDocument decodes the JSON document stored under key into out.
// It reports false when the key is absent.
func loadDocument(ctx context.Context, store domainRepos.KeyValueStore, key string, out interface{}) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, domainRepos.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func saveDocument(ctx context.Context, store domainRepos.KeyValueStore, key string, in interface{}) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}

// atomically runs a read-modify-write of store documents as one unit of work
// when the store supports it, so concurrent writers cannot drop each other's changes.
func atomically(ctx context.Context, store domainRepos.KeyValueStore, fn func(ctx context.Context) error) error {
	if uow, ok := store.(domainRepos.UnitOfWork); ok {
		return uow.Do(ctx, fn)
	}
	return fn(ctx)
}
