package geocoding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrRegionNotFound is returned when a region name has no abbreviation
var ErrRegionNotFound = errors.New("region not found")

// RegionLookup maps a region name ("Ohio") to its abbreviation ("OH")
type RegionLookup interface {
	Abbreviation(ctx context.Context, name string) (string, error)
}

// RegionStore reads the regions table
type RegionStore struct {
	db *sql.DB
}

// NewRegionStore creates a store over an open database with the schema applied
func NewRegionStore(db *sql.DB) *RegionStore {
	return &RegionStore{db: db}
}

// Abbreviation looks up a region name, case-insensitively
func (s *RegionStore) Abbreviation(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrRegionNotFound
	}

	var abbr string
	err := s.db.QueryRowContext(ctx,
		"SELECT abbreviation FROM regions WHERE name = ?",
		name,
	).Scan(&abbr)

	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %s", ErrRegionNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("querying region: %w", err)
	}

	return abbr, nil
}

// Count returns the number of regions stored
func (s *RegionStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM regions").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting regions: %w", err)
	}
	return count, nil
}

// abbreviate fills in the region code, leaving it empty if unknown
func abbreviate(ctx context.Context, regions RegionLookup, region string) string {
	if regions == nil || region == "" {
		return ""
	}
	// Already an abbreviation
	if len(region) == 2 && strings.ToUpper(region) == region {
		return region
	}
	abbr, err := regions.Abbreviation(ctx, region)
	if err != nil {
		return ""
	}
	return abbr
}
