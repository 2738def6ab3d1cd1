package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

type weatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Dt int64 `json:"dt"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Rain struct {
			ThreeHour float64 `json:"3h"`
		} `json:"rain"`
		Pop float64 `json:"pop"`
	} `json:"list"`
}

type oneCallResponse struct {
	Timezone string `json:"timezone"`
	Daily    []struct {
		Dt   int64 `json:"dt"`
		Temp struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temp"`
		Weather []struct {
			Icon string `json:"icon"`
		} `json:"weather"`
	} `json:"daily"`
	Alerts []struct {
		SenderName  string `json:"sender_name"`
		Event       string `json:"event"`
		Start       int64  `json:"start"`
		End         int64  `json:"end"`
		Description string `json:"description"`
	} `json:"alerts"`
}

func decode(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrProviderUnavailable, err)
	}
	return nil
}

// CurrentConditions retrieves current conditions by place name. The
// precipitation probability comes from the first forecast step.
func (c *Client) CurrentConditions(ctx context.Context, loc models.Location) (*models.WeatherSnapshot, error) {
	body, err := c.get(ctx, "/data/2.5/weather", url.Values{"q": {loc.Query()}}, false)
	if err != nil {
		return nil, err
	}

	var resp weatherResponse
	if err := decode(body, &resp); err != nil {
		return nil, err
	}

	snapshot := &models.WeatherSnapshot{
		TemperatureF: resp.Main.Temp,
		HumidityPct:  resp.Main.Humidity,
		WindMph:      resp.Wind.Speed,
		ObservedAt:   time.Unix(resp.Dt, 0).In(loc.Zone()),
	}
	if len(resp.Weather) > 0 {
		snapshot.Status = models.TitleCase(resp.Weather[0].Description)
		snapshot.Icon = resp.Weather[0].Icon
	}

	forecast, err := c.forecast(ctx, loc)
	if err != nil {
		c.log.WithField("location", loc.Label()).Warnf("no precipitation probability: %v", err)
	} else if len(forecast.List) > 0 {
		snapshot.PrecipProbability = int(math.Round(forecast.List[0].Pop * 100))
	}

	return snapshot, nil
}

func (c *Client) forecast(ctx context.Context, loc models.Location) (*forecastResponse, error) {
	params := url.Values{
		"q":   {loc.Query()},
		"cnt": {strconv.Itoa(models.HourlyPoints)},
	}
	body, err := c.get(ctx, "/data/2.5/forecast", params, true)
	if err != nil {
		return nil, err
	}

	var resp forecastResponse
	if err := decode(body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HourlyForecast retrieves the next 8 three-hour steps
func (c *Client) HourlyForecast(ctx context.Context, loc models.Location) (*models.HourlyForecast, error) {
	resp, err := c.forecast(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(resp.List) < models.HourlyPoints {
		return nil, fmt.Errorf("%w: forecast has %d steps, want %d", ErrProviderUnavailable, len(resp.List), models.HourlyPoints)
	}

	zone := loc.Zone()
	hourly := &models.HourlyForecast{
		Points:    make([]models.HourlyPoint, 0, models.HourlyPoints),
		UpdatedAt: time.Now(),
	}
	for _, entry := range resp.List[:models.HourlyPoints] {
		at := time.Unix(entry.Dt, 0).In(zone)
		hourly.Points = append(hourly.Points, models.HourlyPoint{
			Time:         at,
			Label:        models.HourLabel(at),
			TemperatureF: entry.Main.Temp,
			PrecipMm:     entry.Rain.ThreeHour,
			HumidityPct:  entry.Main.Humidity,
		})
	}

	return hourly, nil
}

// oneCall requests the onecall endpoint. Daily forecasts pass cached false so
// the midnight recompute sees the new day.
func (c *Client) oneCall(ctx context.Context, lat, lon float64, exclude string, cached bool) (*oneCallResponse, error) {
	params := url.Values{
		"lat":     {strconv.FormatFloat(lat, 'f', 4, 64)},
		"lon":     {strconv.FormatFloat(lon, 'f', 4, 64)},
		"exclude": {exclude},
	}
	body, err := c.get(ctx, "/data/2.5/onecall", params, cached)
	if err != nil {
		return nil, err
	}

	var resp oneCallResponse
	if err := decode(body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DailyForecast retrieves the next 7 days by coordinates
func (c *Client) DailyForecast(ctx context.Context, loc models.Location) (*models.DailyForecast, error) {
	resp, err := c.oneCall(ctx, loc.Latitude, loc.Longitude, "current,minutely,hourly,alerts", false)
	if err != nil {
		return nil, err
	}
	if len(resp.Daily) < models.DailyPoints {
		return nil, fmt.Errorf("%w: forecast has %d days, want %d", ErrProviderUnavailable, len(resp.Daily), models.DailyPoints)
	}

	zone := loc.Zone()
	daily := &models.DailyForecast{
		Days:      make([]models.DailyPoint, 0, models.DailyPoints),
		UpdatedAt: time.Now(),
	}
	for _, day := range resp.Daily[:models.DailyPoints] {
		date := time.Unix(day.Dt, 0).In(zone)
		point := models.DailyPoint{
			Date:    date,
			Weekday: date.Weekday().String(),
			HighF:   int(math.Round(day.Temp.Max)),
			LowF:    int(math.Round(day.Temp.Min)),
		}
		if len(day.Weather) > 0 {
			point.Icon = day.Weather[0].Icon
		}
		daily.Days = append(daily.Days, point)
	}

	return daily, nil
}

// Alerts retrieves active alerts by coordinates
func (c *Client) Alerts(ctx context.Context, loc models.Location) ([]models.Alert, error) {
	resp, err := c.oneCall(ctx, loc.Latitude, loc.Longitude, "current,minutely,hourly,daily", true)
	if err != nil {
		return nil, err
	}

	alerts := make([]models.Alert, 0, len(resp.Alerts))
	for _, a := range resp.Alerts {
		alerts = append(alerts, models.Alert{
			Issuer:      a.SenderName,
			Event:       a.Event,
			Start:       time.Unix(a.Start, 0),
			End:         time.Unix(a.End, 0),
			Description: a.Description,
		})
	}
	return alerts, nil
}

// Timezone looks up the IANA zone for coordinates
func (c *Client) Timezone(ctx context.Context, lat, lon float64) (string, error) {
	resp, err := c.oneCall(ctx, lat, lon, "current,minutely,hourly,daily,alerts", true)
	if err != nil {
		return "", err
	}
	if resp.Timezone == "" {
		return "", fmt.Errorf("%w: no timezone for %.4f,%.4f", ErrProviderUnavailable, lat, lon)
	}
	return resp.Timezone, nil
}
