package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func TestMigrations(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	// Test getting database version
	version, err := storage.GetDatabaseVersion(ctx)
	if err != nil {
		t.Fatalf("Failed to get database version: %v", err)
	}

	if version != SchemaVersion {
		t.Errorf("Expected database version %d, got %d", SchemaVersion, version)
	}

	for _, table := range []string{"titles", "title_tags"} {
		var tableName string
		err = storage.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableName)
		if err != nil {
			t.Fatalf("Table %s was not created: %v", table, err)
		}
	}

	// Test running migrations again (should be idempotent)
	err = storage.RunMigrations(ctx)
	if err != nil {
		t.Fatalf("Failed to run migrations again: %v", err)
	}

	newVersion, err := storage.GetDatabaseVersion(ctx)
	if err != nil {
		t.Fatalf("Failed to get database version after re-running migrations: %v", err)
	}

	if newVersion != version {
		t.Errorf("Database version changed on re-run: %d -> %d", version, newVersion)
	}
}

func TestMigrationManager(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	ctx := context.Background()

	migrationManager := NewMigrationManager(db)
	err = migrationManager.Initialize()
	if err != nil {
		t.Fatalf("Failed to initialize migration manager: %v", err)
	}

	version, err := migrationManager.Version(ctx)
	if err != nil {
		t.Fatalf("Failed to get initial version: %v", err)
	}

	if version != 0 {
		t.Errorf("Expected initial version 0, got %d", version)
	}

	if err := migrationManager.Check(ctx); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("Expected schema mismatch before migrating, got %v", err)
	}

	err = migrationManager.Up(ctx)
	if err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	if err := migrationManager.Check(ctx); err != nil {
		t.Errorf("Expected schema to match after migrating: %v", err)
	}

	err = migrationManager.Down(ctx)
	if err != nil {
		t.Fatalf("Failed to rollback migration: %v", err)
	}

	newVersion, err := migrationManager.Version(ctx)
	if err != nil {
		t.Fatalf("Failed to get version after rollback: %v", err)
	}

	if newVersion != SchemaVersion-1 {
		t.Errorf("Expected version %d after rollback, got %d", SchemaVersion-1, newVersion)
	}

	err = migrationManager.Reset(ctx)
	if err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}

	if err := migrationManager.Down(ctx); err == nil {
		t.Errorf("Expected rollback of an empty schema to fail")
	}
}

func TestSchemaVersionIsLatestMigration(t *testing.T) {
	migrationManager := NewMigrationManager(nil)
	if err := migrationManager.Initialize(); err != nil {
		t.Fatalf("Failed to initialize migration manager: %v", err)
	}

	latest, err := migrationManager.Latest()
	if err != nil {
		t.Fatalf("Failed to collect migrations: %v", err)
	}

	if latest != SchemaVersion {
		t.Errorf("SchemaVersion is %d but the newest migration is %d", SchemaVersion, latest)
	}
}

func TestRollbackDoesNotReapplyMigrations(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "titles.db")
	ctx := context.Background()

	storage := NewSQLiteStorage(dsn)
	if err := storage.Initialize(); err != nil {
		t.Fatalf("Failed to initialize storage: %v", err)
	}
	storage.Close()

	// every run opens the store afresh, the way the migrate command does
	for want := SchemaVersion - 1; want >= 0; want-- {
		storage, err := OpenExisting(dsn)
		if err != nil {
			t.Fatalf("Failed to open storage: %v", err)
		}

		if err := storage.RollbackMigration(ctx); err != nil {
			t.Fatalf("Failed to rollback migration: %v", err)
		}

		version, err := storage.GetDatabaseVersion(ctx)
		storage.Close()
		if err != nil {
			t.Fatalf("Failed to get database version: %v", err)
		}

		if version != want {
			t.Errorf("Expected version %d after rollback, got %d", want, version)
		}
	}
}

func TestOpenExistingRejectsMemory(t *testing.T) {
	for _, dsn := range []string{"", MemoryDSN, "file::memory:?cache=shared", "file:titles?mode=memory"} {
		if storage, err := OpenExisting(dsn); err == nil {
			storage.Close()
			t.Errorf("Expected %q to be rejected", dsn)
		}
	}
}
