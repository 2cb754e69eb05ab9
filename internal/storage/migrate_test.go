package storage

import (
	"path/filepath"
	"testing"
)

func TestMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migration-test.db")

	version, err := Migrate(dbPath)
	if err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	if version < 1 {
		t.Errorf("Expected migration version >= 1, got %d", version)
	}

	// Running again is a no-op.
	again, err := Migrate(dbPath)
	if err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
	if again != version {
		t.Errorf("Expected version %d after no-op run, got %d", version, again)
	}
}

func TestMigrationManager_DownAndUp(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "down-test.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	defer mgr.Close()

	if err := mgr.Up(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	if err := mgr.Down(); err != nil {
		t.Fatalf("Failed to roll back migrations: %v", err)
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		t.Fatalf("Failed to get migration version: %v", err)
	}
	if version != 0 || dirty {
		t.Errorf("Expected clean version 0 after rollback, got %d (dirty=%v)", version, dirty)
	}

	if err := mgr.Steps(1); err != nil {
		t.Fatalf("Failed to step up: %v", err)
	}
	version, _, err = mgr.Version()
	if err != nil {
		t.Fatalf("Failed to get migration version: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected version 1 after one step, got %d", version)
	}
}
