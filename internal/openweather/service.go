package openweather

import (
	"context"
	"errors"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

// ErrProviderUnavailable wraps every failure talking to the weather provider
var ErrProviderUnavailable = errors.New("weather provider unavailable")

// WeatherService defines the interface for fetching weather data for a location
type WeatherService interface {
	// CurrentConditions retrieves current conditions for the location's place name
	CurrentConditions(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, error)

	// HourlyForecast retrieves the next 8 three-hour forecast steps
	HourlyForecast(ctx context.Context, loc models.Location) (*models.HourlyForecast, error)

	// DailyForecast retrieves the 7 day forecast by coordinates
	DailyForecast(ctx context.Context, loc models.Location) (*models.DailyForecast, error)

	// Alerts retrieves active alerts by coordinates. No alerts is an empty slice.
	Alerts(ctx context.Context, loc models.Location) ([]models.Alert, error)
}

// TimezoneResolver looks up the IANA zone for coordinates
type TimezoneResolver interface {
	Timezone(ctx context.Context, lat, lon float64) (string, error)
}
