package models

import (
	"fmt"
	"strings"
	"time"
)

// Location represents a resolved place. It is replaced wholesale whenever the
// dashboard's location changes and is never mutated in place.
type Location struct {
	City       string  `json:"city"`
	Region     string  `json:"region"`      // e.g., "Ohio"
	RegionCode string  `json:"region_code"` // e.g., "OH" (empty if unknown)
	Country    string  `json:"country"`     // ISO code, e.g., "US"
	TimezoneID string  `json:"timezone"`    // IANA id, e.g., "America/New_York"
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// Zone loads the location's time zone, falling back to UTC
func (l Location) Zone() *time.Location {
	if l.TimezoneID == "" {
		return time.UTC
	}
	zone, err := time.LoadLocation(l.TimezoneID)
	if err != nil {
		return time.UTC
	}
	return zone
}

// Label returns the display name, e.g. "Dayton, OH"
func (l Location) Label() string {
	region := l.RegionCode
	if region == "" {
		region = l.Region
	}
	if region == "" {
		return l.City
	}
	return fmt.Sprintf("%s, %s", l.City, region)
}

// Query returns the place query understood by the weather provider
func (l Location) Query() string {
	parts := []string{l.City}
	if l.Country == "US" && l.RegionCode != "" {
		parts = append(parts, l.RegionCode)
	}
	if l.Country != "" {
		parts = append(parts, l.Country)
	}
	return strings.Join(parts, ",")
}

// Equal reports whether two locations describe the same place
func (l Location) Equal(other Location) bool {
	return l.City == other.City &&
		l.Region == other.Region &&
		l.Country == other.Country &&
		l.Latitude == other.Latitude &&
		l.Longitude == other.Longitude
}
