package database

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

const migrationsDir = "../../migrations"

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background(), migrationsDir, discardLogger()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func discardLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	var name string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", "records").Scan(&name)
	if err != nil {
		t.Fatalf("Table records not found: %v", err)
	}

	// A second run must be a no-op
	if err := db.RunMigrations(ctx, migrationsDir, discardLogger()); err != nil {
		t.Fatalf("Re-running migrations failed: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 recorded migration, got %d", count)
	}
}

// TestUpsertRecord checks the dialect upsert replaces instead of duplicating
func TestUpsertRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	for _, value := range []string{"first", "second"} {
		if _, err := db.ExecContext(ctx, db.Dialect.UpsertRecord(), "dailyStreak", value); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	var value string
	if err := db.QueryRowContext(ctx, "SELECT record_value FROM records WHERE record_key = ?", "dailyStreak").Scan(&value); err != nil {
		t.Fatalf("Failed to read record: %v", err)
	}
	if value != "second" {
		t.Errorf("Expected value 'second', got %q", value)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if _, err := tx.ExecContext(ctx, tx.GetDialect().UpsertRecord(), "expressionSettings", "{}"); err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 records after rollback, got %d", count)
	}
}

// TestMigrationsUseInjectedLogger checks migration lines carry the caller's fields
func TestMigrationsUseInjectedLogger(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

	if err := db.RunMigrations(context.Background(), migrationsDir, logger.WithField("component", "server")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "component=server") || !strings.Contains(out, "migration=001_create_records.sql") {
		t.Errorf("Expected migration log with injected fields, got %q", out)
	}
}
