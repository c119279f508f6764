package models

import "testing"

func TestTableNames(t *testing.T) {
	if got := (KVEntry{}).TableName(); got != "kv_entries" {
		t.Fatalf("unexpected KVEntry table name: %s", got)
	}
}
