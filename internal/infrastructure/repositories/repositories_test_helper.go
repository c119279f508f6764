package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"splitdine-admin.backend/internal/infrastructure/kvstore"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func newMemoryStore(t *testing.T) *kvstore.Store {
	t.Helper()
	return kvstore.New(kvstore.NewMemoryBackend())
}

func newSQLStore(t *testing.T) *kvstore.Store {
	t.Helper()
	backend := kvstore.NewSQLBackend(newTestDB(t))
	require.NoError(t, backend.Migrate(context.Background()), "migrate kv_entries")
	return kvstore.New(backend)
}
