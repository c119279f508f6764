package kvstore

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"splitdine-admin.backend/internal/domain/repositories"
)

// DefaultKeyPrefix namespaces every key written to Redis
const DefaultKeyPrefix = "splitdine:"

var _ CheckedBackend = (*RedisBackend)(nil)

// RedisBackend stores values as plain Redis strings
type RedisBackend struct {
	client *goredis.Client
	prefix string
}

// NewRedisBackend creates a Redis backend
func NewRedisBackend(client *goredis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) key(k string) string {
	return b.prefix + k
}

// Get retrieves a value by key
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.client.Get(ctx, b.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, repositories.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kvstore/redis: get %s: %w", key, err)
	}
	return val, nil
}

// Commit applies ops inside MULTI/EXEC
func (b *RedisBackend) Commit(ctx context.Context, ops []Op) error {
	pipe := b.client.TxPipeline()
	b.queue(ctx, pipe, ops)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("kvstore/redis: commit: %w", err)
	}
	return nil
}

// CommitChecked WATCHes the read keys, verifies they still hold the observed
// values and applies ops in MULTI/EXEC. A change by any other client aborts
// the transaction with ErrConflict.
func (b *RedisBackend) CommitChecked(ctx context.Context, reads []Read, ops []Op) error {
	if len(reads) == 0 {
		return b.Commit(ctx, ops)
	}

	keys := make([]string, 0, len(reads))
	for _, r := range reads {
		keys = append(keys, b.key(r.Key))
	}

	err := b.client.Watch(ctx, func(tx *goredis.Tx) error {
		for _, r := range reads {
			val, err := tx.Get(ctx, b.key(r.Key)).Bytes()
			found := true
			if errors.Is(err, goredis.Nil) {
				val, found = nil, false
			} else if err != nil {
				return err
			}
			if !r.Matches(val, found) {
				return ErrConflict
			}
		}
		_, err := tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			b.queue(ctx, pipe, ops)
			return nil
		})
		return err
	}, keys...)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict), errors.Is(err, goredis.TxFailedErr):
		return ErrConflict
	default:
		return fmt.Errorf("kvstore/redis: commit: %w", err)
	}
}

func (b *RedisBackend) queue(ctx context.Context, pipe goredis.Pipeliner, ops []Op) {
	for _, op := range ops {
		if op.Delete {
			pipe.Del(ctx, b.key(op.Key))
			continue
		}
		pipe.Set(ctx, b.key(op.Key), op.Value, 0)
	}
}
