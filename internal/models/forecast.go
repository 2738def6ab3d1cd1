package models

import (
	"fmt"
	"time"
)

const (
	// HourlyPoints is the fixed length of an hourly forecast (3h steps)
	HourlyPoints = 8
	// DailyPoints is the fixed length of a daily forecast
	DailyPoints = 7
)

// HourlyPoint is a single near-term forecast step
type HourlyPoint struct {
	Time         time.Time `json:"time"`
	Label        string    `json:"label"` // e.g., "3 PM"
	TemperatureF float64   `json:"temperature_f"`
	PrecipMm     float64   `json:"precip_mm"`
	HumidityPct  int       `json:"humidity_pct"`
}

// HourlyForecast contains the next HourlyPoints forecast steps
type HourlyForecast struct {
	Points    []HourlyPoint `json:"points"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Labels returns the time labels of each point
func (h HourlyForecast) Labels() []string {
	labels := make([]string, len(h.Points))
	for i, p := range h.Points {
		labels[i] = p.Label
	}
	return labels
}

// Temperatures returns the temperature series
func (h HourlyForecast) Temperatures() []float64 {
	values := make([]float64, len(h.Points))
	for i, p := range h.Points {
		values[i] = p.TemperatureF
	}
	return values
}

// Precipitation returns the rain volume series in millimetres
func (h HourlyForecast) Precipitation() []float64 {
	values := make([]float64, len(h.Points))
	for i, p := range h.Points {
		values[i] = p.PrecipMm
	}
	return values
}

// Humidity returns the relative humidity series
func (h HourlyForecast) Humidity() []float64 {
	values := make([]float64, len(h.Points))
	for i, p := range h.Points {
		values[i] = float64(p.HumidityPct)
	}
	return values
}

// HourLabel formats a forecast time as "3 PM"
func HourLabel(t time.Time) string {
	return t.Format("3 PM")
}

// DailyPoint is a single day of the week forecast
type DailyPoint struct {
	Date    time.Time `json:"date"`
	Weekday string    `json:"weekday"` // e.g., "Monday"
	HighF   int       `json:"high_f"`
	LowF    int       `json:"low_f"`
	Icon    string    `json:"icon"`
}

// Short returns the three letter weekday label
func (d DailyPoint) Short() string {
	if len(d.Weekday) <= 3 {
		return d.Weekday
	}
	return d.Weekday[:3]
}

// HiLoText formats the high and low temperatures, e.g. "75° 58°"
func (d DailyPoint) HiLoText() string {
	return fmt.Sprintf("%d° %d°", d.HighF, d.LowF)
}

// DailyForecast contains the next DailyPoints days
type DailyForecast struct {
	Days      []DailyPoint `json:"days"`
	UpdatedAt time.Time    `json:"updated_at"`
}
