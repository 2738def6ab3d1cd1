package models

import (
	"fmt"
	"time"
)

// Alert represents an active weather warning issued for a location
type Alert struct {
	Issuer      string    `json:"issuer"` // e.g., "NWS Wilmington OH"
	Event       string    `json:"event"`  // e.g., "Flood Warning"
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description"`
}

// IsActive checks if the alert is in effect at the given time
func (a Alert) IsActive(at time.Time) bool {
	return !at.Before(a.Start) && at.Before(a.End)
}

// Message renders the banner text for the alert in the given zone
func (a Alert) Message(zone *time.Location) string {
	if zone == nil {
		zone = time.UTC
	}
	return fmt.Sprintf("%s has issued a %s in effect from %s until %s.\n\n%s",
		a.Issuer,
		a.Event,
		a.Start.In(zone).Format("03:04 PM"),
		a.End.In(zone).Format("03:04 PM"),
		a.Description,
	)
}
