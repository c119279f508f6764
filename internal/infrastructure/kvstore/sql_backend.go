package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"splitdine-admin.backend/internal/domain/repositories"
	"splitdine-admin.backend/internal/infrastructure/models"
)

var _ CheckedBackend = (*SQLBackend)(nil)

// SQLBackend stores values in the kv_entries table
type SQLBackend struct {
	db *gorm.DB
}

// NewSQLBackend creates a GORM backed store backend
func NewSQLBackend(db *gorm.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

// Migrate creates the kv_entries table when missing
func (b *SQLBackend) Migrate(ctx context.Context) error {
	return b.db.WithContext(ctx).AutoMigrate(&models.KVEntry{})
}

// Get retrieves a value by key
func (b *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.KVEntry
	err := b.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repositories.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kvstore/sql: get %s: %w", key, err)
	}
	return []byte(entry.Value), nil
}

// Commit applies ops in one database transaction
func (b *SQLBackend) Commit(ctx context.Context, ops []Op) error {
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyOps(tx, ops)
	})
	if err != nil {
		return fmt.Errorf("kvstore/sql: commit: %w", err)
	}
	return nil
}

// CommitChecked locks the read rows (SELECT ... FOR UPDATE where the dialect
// supports it), verifies they still hold the observed values and applies ops
// in the same transaction.
func (b *SQLBackend) CommitChecked(ctx context.Context, reads []Read, ops []Op) error {
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range reads {
			var entry models.KVEntry
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("entry_key = ?", r.Key).
				Take(&entry).Error
			var current []byte
			found := true
			if errors.Is(err, gorm.ErrRecordNotFound) {
				found = false
			} else if err != nil {
				return err
			} else {
				current = []byte(entry.Value)
			}
			if !r.Matches(current, found) {
				return ErrConflict
			}
		}
		return applyOps(tx, ops)
	})
	if errors.Is(err, ErrConflict) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("kvstore/sql: commit: %w", err)
	}
	return nil
}

func applyOps(tx *gorm.DB, ops []Op) error {
	for _, op := range ops {
		if op.Delete {
			if err := tx.Where("entry_key = ?", op.Key).Delete(&models.KVEntry{}).Error; err != nil {
				return err
			}
			continue
		}
		entry := models.KVEntry{Key: op.Key, Value: string(op.Value), UpdatedAt: time.Now()}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entry).Error
		if err != nil {
			return err
		}
	}
	return nil
}
