package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DBPath returns the path to the single shared database
func DBPath() string {
	return filepath.Join("data", "weather-terminal.db")
}

// Open opens the SQLite database at dbPath, creating its directory. Use
// ":memory:" for a throwaway database.
func Open(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// In-memory databases are per connection
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the reference tables if they are missing. Existing
// rows are kept.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS regions (
			name TEXT PRIMARY KEY COLLATE NOCASE,
			abbreviation TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_regions_abbreviation ON regions(abbreviation);
	`)
	if err != nil {
		return fmt.Errorf("creating regions table: %w", err)
	}

	return nil
}
