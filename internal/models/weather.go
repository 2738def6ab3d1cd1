package models

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
)

// WeatherSnapshot represents current conditions at a location
type WeatherSnapshot struct {
	TemperatureF      float64   `json:"temperature_f"`
	PrecipProbability int       `json:"precip_probability"` // percent
	HumidityPct       int       `json:"humidity_pct"`
	WindMph           float64   `json:"wind_mph"`
	Status            string    `json:"status"` // e.g., "Light Rain"
	Icon              string    `json:"icon"`   // provider icon code, e.g., "10d"
	ObservedAt        time.Time `json:"observed_at"`
}

// TemperatureText formats the temperature, e.g. "72 °F"
func (w WeatherSnapshot) TemperatureText() string {
	return fmt.Sprintf("%.0f °F", math.Round(w.TemperatureF))
}

// PrecipitationText formats the precipitation probability, e.g. "40%"
func (w WeatherSnapshot) PrecipitationText() string {
	return fmt.Sprintf("%d%%", w.PrecipProbability)
}

// HumidityText formats the relative humidity, e.g. "55%"
func (w WeatherSnapshot) HumidityText() string {
	return fmt.Sprintf("%d%%", w.HumidityPct)
}

// WindText formats the wind speed, e.g. "8 mph"
func (w WeatherSnapshot) WindText() string {
	return fmt.Sprintf("%.0f mph", math.Round(w.WindMph))
}

// IconURL returns the provider's large icon image for an icon code
func IconURL(icon string) string {
	if icon == "" {
		return ""
	}
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@4x.png", icon)
}

// TitleCase capitalizes each word of a provider description
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
