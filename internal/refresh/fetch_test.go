package refresh

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/openweather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWeatherService struct {
	mock.Mock
}

func (m *MockWeatherService) CurrentConditions(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeatherSnapshot), args.Error(1)
}

func (m *MockWeatherService) HourlyForecast(ctx context.Context, loc models.Location) (*models.HourlyForecast, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HourlyForecast), args.Error(1)
}

func (m *MockWeatherService) DailyForecast(ctx context.Context, loc models.Location) (*models.DailyForecast, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyForecast), args.Error(1)
}

func (m *MockWeatherService) Alerts(ctx context.Context, loc models.Location) ([]models.Alert, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Alert), args.Error(1)
}

func TestFetcherExecute(t *testing.T) {
	service := new(MockWeatherService)
	current := &models.WeatherSnapshot{TemperatureF: 72}
	hourly := &models.HourlyForecast{Points: make([]models.HourlyPoint, models.HourlyPoints)}
	alerts := []models.Alert{{Event: "Flood Warning"}}

	service.On("CurrentConditions", mock.Anything, testLocation).Return(current, nil)
	service.On("HourlyForecast", mock.Anything, testLocation).Return(hourly, nil)
	service.On("DailyForecast", mock.Anything, testLocation).
		Return(nil, fmt.Errorf("onecall: %w", openweather.ErrProviderUnavailable))
	service.On("Alerts", mock.Anything, testLocation).Return(alerts, nil)

	c := NewController(testLocation)
	plan := c.OnLocationChanged(testLocation)

	batch := NewFetcher(service, time.Second, nil).Execute(context.Background(), plan)

	assert.Equal(t, plan.ID, batch.PlanID)
	require.Len(t, batch.Results, 4)
	for i, r := range batch.Results {
		assert.Equal(t, plan.Tickets[i], r.Ticket)
	}
	assert.Same(t, current, batch.Results[0].Current)
	assert.Same(t, hourly, batch.Results[1].Hourly)
	assert.ErrorIs(t, batch.Results[2].Err, openweather.ErrProviderUnavailable)
	assert.Equal(t, alerts, batch.Results[3].Alerts)

	outcomes := c.Apply(batch)
	assert.Equal(t, Updated, outcomes[SubsystemCurrent])
	assert.Equal(t, NoUpdate, outcomes[SubsystemDaily])
	assert.True(t, c.Display().Banner.Visible)

	service.AssertExpectations(t)
}

func TestFetcherOnlyCallsPlannedSubsystems(t *testing.T) {
	service := new(MockWeatherService)
	service.On("Alerts", mock.Anything, testLocation).Return([]models.Alert{}, nil)

	c := NewController(testLocation)
	batch := NewFetcher(service, 0, nil).Execute(context.Background(), c.OnHalfHourTick())

	require.Len(t, batch.Results, 1)
	assert.Equal(t, SubsystemAlerts, batch.Results[0].Subsystem)
	service.AssertNotCalled(t, "CurrentConditions", mock.Anything, mock.Anything)
	service.AssertExpectations(t)
}

type blockingService struct {
	staticService
}

func (blockingService) CurrentConditions(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFetcherTimeout(t *testing.T) {
	c := NewController(testLocation)
	plan := c.OnLocationChanged(testLocation)

	start := time.Now()
	batch := NewFetcher(blockingService{}, 50*time.Millisecond, nil).Execute(context.Background(), plan)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.ErrorIs(t, batch.Results[0].Err, context.DeadlineExceeded)
	assert.NoError(t, batch.Results[1].Err)

	outcomes := c.Apply(batch)
	assert.Equal(t, NoUpdate, outcomes[SubsystemCurrent])
	assert.Equal(t, Updated, outcomes[SubsystemHourly])
}
