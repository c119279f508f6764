// Package kvstore implements the durable key-value store on top of
// interchangeable backends (Redis, SQL via GORM, in-process memory).
package kvstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"splitdine-admin.backend/internal/domain/repositories"
)

type contextKey string

const batchKey contextKey = "kv_batch"

// MaxConflictRetries bounds how often Do reruns a unit of work whose reads
// were overwritten by another writer before it could commit.
const MaxConflictRetries = 5

// ErrConflict is returned by a CheckedBackend when a value read by the unit
// of work changed before its commit.
var ErrConflict = errors.New("kvstore: concurrent modification")

// Op is a single write against a backend.
type Op struct {
	Key    string
	Value  []byte
	Delete bool
}

// Read is the value a unit of work observed for a key. Found is false when
// the key was absent.
type Read struct {
	Key   string
	Value []byte
	Found bool
}

// Matches reports whether the current state of the key equals the observed one.
func (r Read) Matches(value []byte, found bool) bool {
	return r.Found == found && bytes.Equal(r.Value, value)
}

// Backend is a storage engine able to apply a list of writes atomically.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Commit(ctx context.Context, ops []Op) error
}

// CheckedBackend commits ops only when every read still holds, returning
// ErrConflict otherwise. It guards writers in other processes.
type CheckedBackend interface {
	Backend
	CommitChecked(ctx context.Context, reads []Read, ops []Op) error
}

type batch struct {
	ops     []Op
	overlay map[string]Op
	reads   map[string]Read
	order   []string
}

func newBatch() *batch {
	return &batch{overlay: make(map[string]Op), reads: make(map[string]Read)}
}

func (b *batch) add(op Op) {
	b.ops = append(b.ops, op)
	b.overlay[op.Key] = op
}

func (b *batch) observe(key string, value []byte, found bool) {
	if _, seen := b.reads[key]; seen {
		return
	}
	b.reads[key] = Read{Key: key, Value: append([]byte(nil), value...), Found: found}
	b.order = append(b.order, key)
}

func (b *batch) observed() []Read {
	out := make([]Read, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, b.reads[k])
	}
	return out
}

func batchFrom(ctx context.Context) *batch {
	if ctx == nil {
		return nil
	}
	b, _ := ctx.Value(batchKey).(*batch)
	return b
}

// Store implements repositories.KeyValueStore and repositories.UnitOfWork.
// Units of work on one Store run one at a time.
type Store struct {
	backend Backend
	mu      sync.Mutex
}

var (
	_ repositories.KeyValueStore = (*Store)(nil)
	_ repositories.UnitOfWork    = (*Store)(nil)
)

// New creates a store over the given backend
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Get reads a key, seeing writes buffered by an enclosing unit of work.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	b := batchFrom(ctx)
	if b != nil {
		if op, ok := b.overlay[key]; ok {
			if op.Delete {
				return nil, repositories.ErrKeyNotFound
			}
			return append([]byte(nil), op.Value...), nil
		}
	}

	val, err := s.backend.Get(ctx, key)
	if b != nil {
		switch {
		case err == nil:
			b.observe(key, val, true)
		case errors.Is(err, repositories.ErrKeyNotFound):
			b.observe(key, nil, false)
		}
	}
	return val, err
}

// Set replaces the value of a key
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.write(ctx, Op{Key: key, Value: append([]byte(nil), value...)})
}

// Delete removes a key; deleting an absent key is not an error
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.write(ctx, Op{Key: key, Delete: true})
}

func (s *Store) write(ctx context.Context, op Op) error {
	if b := batchFrom(ctx); b != nil {
		b.add(op)
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Commit(ctx, []Op{op})
}

// Do buffers every write made through the returned context and commits them
// in one backend transaction when fn succeeds. Nested calls join the outer unit.
// When the backend reports a conflict the whole unit is rerun, so fn must only
// have side effects through the store.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if batchFrom(ctx) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; ; attempt++ {
		b := newBatch()
		if err := fn(context.WithValue(ctx, batchKey, b)); err != nil {
			return err
		}
		if len(b.ops) == 0 {
			return nil
		}

		err := s.commit(ctx, b)
		if errors.Is(err, ErrConflict) && attempt < MaxConflictRetries {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to commit unit of work: %w", err)
		}
		return nil
	}
}

func (s *Store) commit(ctx context.Context, b *batch) error {
	if checked, ok := s.backend.(CheckedBackend); ok {
		return checked.CommitChecked(ctx, b.observed(), b.ops)
	}
	return s.backend.Commit(ctx, b.ops)
}
