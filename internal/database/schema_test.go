package database

import (
	"path/filepath"
	"testing"
)

func TestEnsureSchema_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	// 1. Initialize schema
	if err := EnsureSchema(db); err != nil {
		t.Fatalf("First EnsureSchema failed: %v", err)
	}

	// 2. Insert a record
	if _, err := db.Exec(`INSERT INTO regions (name, abbreviation) VALUES ('Ohio', 'OH')`); err != nil {
		t.Fatalf("Failed to insert record: %v", err)
	}
	db.Close()

	// 3. Initialize schema again on a new connection (should not drop table)
	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("Second EnsureSchema failed: %v", err)
	}

	// 4. Verify record exists, names compare case-insensitively
	var abbr string
	if err := db.QueryRow("SELECT abbreviation FROM regions WHERE name = 'ohio'").Scan(&abbr); err != nil {
		t.Fatalf("Failed to query record: %v", err)
	}
	if abbr != "OH" {
		t.Errorf("abbreviation = %q, want OH", abbr)
	}
}

func TestEnsureSchema_InMemory(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='regions'").Scan(&count); err != nil {
		t.Fatalf("query error = %v", err)
	}
	if count != 1 {
		t.Errorf("regions table count = %d, want 1", count)
	}
}
