package geocoding

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/database"
	"github.com/ngmaloney/weather-terminal/internal/logger"
)

// StatesCSVURL lists US states with their postal abbreviations
const StatesCSVURL = "https://raw.githubusercontent.com/jasonong/List-of-US-States/master/states.csv"

// NeedsProvisioning reports whether the regions table is empty or missing
func NeedsProvisioning(db *sql.DB) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='regions'").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for regions table: %w", err)
	}
	if count == 0 {
		return true, nil
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM regions").Scan(&count); err != nil {
		return false, fmt.Errorf("counting regions: %w", err)
	}
	return count == 0, nil
}

// ProvisionRegions downloads the states CSV from source and fills the regions
// table. It does nothing when the table already has rows.
func ProvisionRegions(ctx context.Context, db *sql.DB, source string, log logger.Logger) error {
	log = logger.Component(log, "provision")

	if err := database.EnsureSchema(db); err != nil {
		return err
	}

	needed, err := NeedsProvisioning(db)
	if err != nil {
		return err
	}
	if !needed {
		return nil
	}

	log.Infof("Regions table empty, downloading %s", source)

	req, err := http.NewRequestWithContext(ctx, "GET", source, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading regions CSV: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading regions CSV: HTTP error: %d", resp.StatusCode)
	}

	count, err := loadRegions(ctx, db, resp.Body)
	if err != nil {
		return fmt.Errorf("building regions table: %w", err)
	}

	log.Infof("Provisioned %d regions", count)
	return nil
}

// loadRegions imports "State","Abbreviation" rows
func loadRegions(ctx context.Context, db *sql.DB, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("reading header: %w", err)
	}
	nameCol, abbrCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "state":
			nameCol = i
		case "abbreviation":
			abbrCol = i
		}
	}
	if nameCol < 0 || abbrCol < 0 {
		return 0, fmt.Errorf("unexpected header %v", header)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO regions (name, abbreviation) VALUES (?, ?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip invalid records
		}
		if len(record) <= nameCol || len(record) <= abbrCol {
			continue
		}

		name := strings.TrimSpace(record[nameCol])
		abbr := strings.ToUpper(strings.TrimSpace(record[abbrCol]))
		if name == "" || abbr == "" {
			continue
		}

		if _, err := stmt.ExecContext(ctx, name, abbr); err != nil {
			continue
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}
