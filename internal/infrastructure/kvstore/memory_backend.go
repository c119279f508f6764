package kvstore

import (
	"context"
	"sync"

	"splitdine-admin.backend/internal/domain/repositories"
)

// MemoryBackend keeps values in process memory. Used by tests and local runs
// without Redis.
type MemoryBackend struct {
	mu      sync.RWMutex
	values  map[string][]byte
	commits int
}

// NewMemoryBackend creates an empty memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

var _ CheckedBackend = (*MemoryBackend)(nil)

// Get retrieves a value by key
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, repositories.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Commit applies ops under a single lock
func (m *MemoryBackend) Commit(_ context.Context, ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(ops)
	return nil
}

// CommitChecked applies ops only if every read still holds
func (m *MemoryBackend) CommitChecked(_ context.Context, reads []Read, ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range reads {
		v, ok := m.values[r.Key]
		if !r.Matches(v, ok) {
			return ErrConflict
		}
	}
	m.apply(ops)
	return nil
}

func (m *MemoryBackend) apply(ops []Op) {
	for _, op := range ops {
		if op.Delete {
			delete(m.values, op.Key)
			continue
		}
		m.values[op.Key] = append([]byte(nil), op.Value...)
	}
	m.commits++
}

// Keys returns the stored keys
func (m *MemoryBackend) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}

// Commits returns how many commits were applied
func (m *MemoryBackend) Commits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commits
}
