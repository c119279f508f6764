package models

import "time"

// KVEntry is one durable store key with its JSON document
type KVEntry struct {
	Key       string `gorm:"column:entry_key;type:varchar(255);primaryKey"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
