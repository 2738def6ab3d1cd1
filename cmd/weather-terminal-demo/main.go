package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/weather-terminal/internal/logger"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/refresh"
	"github.com/ngmaloney/weather-terminal/internal/scheduler"
	"github.com/ngmaloney/weather-terminal/internal/tiles"
	"github.com/ngmaloney/weather-terminal/internal/ui"
)

var seattle = models.Location{
	City:       "Seattle",
	Region:     "Washington",
	RegionCode: "WA",
	Country:    "US",
	TimezoneID: "America/Los_Angeles",
	Latitude:   47.6062,
	Longitude:  -122.3321,
}

// cannedWeather serves fixed data so the dashboard runs without network
type cannedWeather struct{}

func (cannedWeather) CurrentConditions(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, error) {
	return &models.WeatherSnapshot{
		TemperatureF:      58,
		PrecipProbability: 40,
		HumidityPct:       72,
		WindMph:           12,
		Status:            "Light Rain",
		Icon:              "10d",
		ObservedAt:        time.Now(),
	}, nil
}

func (cannedWeather) HourlyForecast(ctx context.Context, loc models.Location) (*models.HourlyForecast, error) {
	temps := []float64{58, 57, 55, 52, 51, 53, 57, 60}
	rain := []float64{0.4, 1.2, 2.5, 0.8, 0, 0, 0.2, 0}
	humidity := []int{72, 78, 85, 88, 90, 84, 75, 68}

	start := time.Now().In(loc.Zone()).Truncate(time.Hour)
	h := &models.HourlyForecast{UpdatedAt: time.Now()}
	for i := range temps {
		at := start.Add(time.Duration(3*i) * time.Hour)
		h.Points = append(h.Points, models.HourlyPoint{
			Time:         at,
			Label:        models.HourLabel(at),
			TemperatureF: temps[i],
			PrecipMm:     rain[i],
			HumidityPct:  humidity[i],
		})
	}
	return h, nil
}

func (cannedWeather) DailyForecast(ctx context.Context, loc models.Location) (*models.DailyForecast, error) {
	icons := []string{"10d", "04d", "02d", "01d", "01d", "03d", "09d"}
	highs := []int{61, 63, 66, 70, 72, 67, 60}
	lows := []int{49, 50, 52, 55, 56, 53, 50}

	today := time.Now().In(loc.Zone())
	d := &models.DailyForecast{UpdatedAt: time.Now()}
	for i := range icons {
		date := today.AddDate(0, 0, i)
		d.Days = append(d.Days, models.DailyPoint{
			Date:    date,
			Weekday: date.Weekday().String(),
			HighF:   highs[i],
			LowF:    lows[i],
			Icon:    icons[i],
		})
	}
	return d, nil
}

func (cannedWeather) Alerts(ctx context.Context, loc models.Location) ([]models.Alert, error) {
	now := time.Now()
	return []models.Alert{{
		Issuer:      "NWS Seattle WA",
		Event:       "Wind Advisory",
		Start:       now.Add(-time.Hour),
		End:         now.Add(6 * time.Hour),
		Description: "South winds 25 to 35 mph with gusts up to 50 mph expected.",
	}}, nil
}

type fixedLocator struct{}

func (fixedLocator) LocateOrDefault(ctx context.Context, ip string) models.Location {
	return seattle
}

// This demo shows the dashboard with canned data
func main() {
	log := logger.NewNop()

	controller := refresh.NewController(seattle,
		refresh.WithSelector(tiles.NewSelector("demo", tiles.DefaultMode, tiles.DefaultMaxZoom)),
		refresh.WithLogger(log),
	)

	model := ui.NewModel(ui.Deps{
		Controller: controller,
		Fetcher:    refresh.NewFetcher(cannedWeather{}, time.Second, log),
		Locator:    fixedLocator{},
		Logger:     log,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	cron := scheduler.NewCronScheduler(log)
	if err := cron.Dashboard(
		func(at time.Time) { p.Send(ui.MinuteTickMsg{Time: at}) },
		func(at time.Time) { p.Send(ui.HalfHourTickMsg{Time: at}) },
	); err != nil {
		fmt.Printf("Error scheduling refresh: %v\n", err)
		os.Exit(1)
	}
	cron.Start()
	defer cron.Stop()

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running demo: %v\n", err)
		os.Exit(1)
	}
}
