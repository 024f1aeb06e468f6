package repository

import (
	"context"
	"fmt"
	"sort"
)

// Keys of the records kept in the store
const (
	SettingsKey = "expressionSettings"
	StreakKey   = "dailyStreak"
)

// RecordStore is a flat key/value store holding one JSON document per key.
// Get reports found=false for a key that was never written. SetMany writes
// every record or none of them.
type RecordStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, records map[string]string) error
}

// sortedKeys returns the record keys in a stable write order
func sortedKeys(records map[string]string) []string {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PersistenceError reports a failure reading, writing or decoding a record
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
