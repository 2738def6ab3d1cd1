package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/logger"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/openweather"
)

// DefaultTimeout bounds all fetches of one plan
const DefaultTimeout = 20 * time.Second

// Fetcher runs a plan's tickets against the weather service
type Fetcher struct {
	service openweather.WeatherService
	timeout time.Duration
	log     logger.Logger
}

// NewFetcher creates a fetcher. A zero timeout uses DefaultTimeout.
func NewFetcher(service openweather.WeatherService, timeout time.Duration, log logger.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		service: service,
		timeout: timeout,
		log:     logger.Component(log, "fetcher"),
	}
}

// Execute fetches every ticket concurrently and returns once all are done or
// the timeout expired. Failures are carried in the results.
func (f *Fetcher) Execute(ctx context.Context, plan Plan) Batch {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	results := make([]Result, len(plan.Tickets))
	var wg sync.WaitGroup
	for i, t := range plan.Tickets {
		wg.Add(1)
		go func(i int, t Ticket) {
			defer wg.Done()
			results[i] = f.fetch(ctx, plan.Location, t)
		}(i, t)
	}
	wg.Wait()

	return Batch{PlanID: plan.ID, Results: results}
}

func (f *Fetcher) fetch(ctx context.Context, loc models.Location, t Ticket) Result {
	start := time.Now()
	r := Result{Ticket: t}

	switch t.Subsystem {
	case SubsystemCurrent:
		r.Current, r.Err = f.service.CurrentConditions(ctx, loc)
	case SubsystemHourly:
		r.Hourly, r.Err = f.service.HourlyForecast(ctx, loc)
	case SubsystemDaily:
		r.Daily, r.Err = f.service.DailyForecast(ctx, loc)
	case SubsystemAlerts:
		r.Alerts, r.Err = f.service.Alerts(ctx, loc)
	default:
		r.Err = fmt.Errorf("unknown subsystem %q", t.Subsystem)
	}

	fields := map[string]interface{}{
		"subsystem": string(t.Subsystem),
		"seq":       t.Seq,
		"location":  loc.Label(),
		"elapsed":   time.Since(start).String(),
	}
	if r.Err != nil {
		f.log.WithFields(fields).Warnf("fetch failed: %v", r.Err)
	} else {
		f.log.WithFields(fields).Debug("fetched")
	}
	return r
}
