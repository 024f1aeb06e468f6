package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"emotionquest/internal/database"
)

// txBeginner is satisfied by *database.DB but not by *database.Tx
type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*database.Tx, error)
}

// SQLRecordStore keeps records in the records table
type SQLRecordStore struct {
	db database.DBTX
}

func NewSQLRecordStore(db database.DBTX) *SQLRecordStore {
	return &SQLRecordStore{db: db}
}

// Get retrieves a record value by key
func (s *SQLRecordStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	query := `SELECT record_value FROM records WHERE record_key = ?`
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set updates or inserts a record
func (s *SQLRecordStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.db.GetDialect().UpsertRecord(), key, value)
	return err
}

// SetMany upserts all records in one transaction. A store already bound to a
// transaction writes through it and leaves commit to the caller.
func (s *SQLRecordStore) SetMany(ctx context.Context, records map[string]string) error {
	db, ok := s.db.(txBeginner)
	if !ok {
		return s.setAll(ctx, records)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := NewSQLRecordStore(tx).setAll(ctx, records); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

func (s *SQLRecordStore) setAll(ctx context.Context, records map[string]string) error {
	for _, k := range sortedKeys(records) {
		if err := s.Set(ctx, k, records[k]); err != nil {
			return fmt.Errorf("failed to set %s: %w", k, err)
		}
	}
	return nil
}
