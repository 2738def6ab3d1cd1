package refresh

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ngmaloney/weather-terminal/internal/logger"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/tiles"
)

// Subsystem is an independently refreshed piece of the dashboard
type Subsystem string

const (
	SubsystemCurrent Subsystem = "current"
	SubsystemHourly  Subsystem = "hourly"
	SubsystemDaily   Subsystem = "daily"
	SubsystemAlerts  Subsystem = "alerts"
)

// Outcome is the result of applying one fetched result
type Outcome int

const (
	// NoUpdate keeps the previous value
	NoUpdate Outcome = iota
	Updated
	// Stale results were superseded by a newer ticket and are dropped
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case Stale:
		return "stale"
	default:
		return "no_update"
	}
}

// Ticket authorizes one fetch. Only the latest Seq issued for a subsystem
// may be applied.
type Ticket struct {
	Subsystem Subsystem `json:"subsystem"`
	Seq       uint64    `json:"seq"`
}

// Plan is the set of fetches a trigger needs
type Plan struct {
	ID       string          `json:"id"`
	Trigger  Trigger         `json:"trigger"`
	Location models.Location `json:"location"`
	Tickets  []Ticket        `json:"tickets"`
}

// Empty reports whether nothing needs fetching
func (p Plan) Empty() bool {
	return len(p.Tickets) == 0
}

// Has reports whether the plan fetches the subsystem
func (p Plan) Has(s Subsystem) bool {
	for _, t := range p.Tickets {
		if t.Subsystem == s {
			return true
		}
	}
	return false
}

// Result is the fetched value for a ticket. Exactly one value field is set
// when Err is nil.
type Result struct {
	Ticket
	Current *models.WeatherSnapshot
	Hourly  *models.HourlyForecast
	Daily   *models.DailyForecast
	Alerts  []models.Alert
	Err     error
}

// Batch holds every result of a plan, applied together
type Batch struct {
	PlanID  string
	Results []Result
}

// Display is everything the presentation layer renders
type Display struct {
	Location models.Location         `json:"location"`
	Status   string                  `json:"status"`
	Current  *models.WeatherSnapshot `json:"current,omitempty"`
	Hourly   *models.HourlyForecast  `json:"hourly,omitempty"`
	Daily    *models.DailyForecast   `json:"daily,omitempty"`
	Alerts   []models.Alert          `json:"alerts"`
	Banner   BannerLayout            `json:"banner"`
	Layers   []tiles.Layer           `json:"layers,omitempty"`
}

// Controller holds the dashboard state and decides what each trigger
// refreshes. It is safe for concurrent use.
type Controller struct {
	mu        sync.RWMutex
	now       func() time.Time
	selector  *tiles.Selector
	log       logger.Logger
	seq       map[Subsystem]uint64
	lastDaily time.Time
	display   Display
}

// Option configures a Controller
type Option func(*Controller)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithSelector sets the tile selector used for viewport changes
func WithSelector(s *tiles.Selector) Option {
	return func(c *Controller) {
		c.selector = s
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// NewController creates a controller showing loc with no weather data yet
func NewController(loc models.Location, opts ...Option) *Controller {
	c := &Controller{
		now:      time.Now,
		selector: tiles.NewSelector("", tiles.DefaultMode, tiles.DefaultMaxZoom),
		seq:      make(map[Subsystem]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.Component(c.log, "refresh")
	c.reset(loc)
	return c
}

// reset replaces the location and drops everything derived from the old one
func (c *Controller) reset(loc models.Location) {
	zone := loc.Zone()
	c.lastDaily = time.Time{}
	c.display = Display{
		Location: loc,
		Status:   FormatStatus(c.now().In(zone)),
		Alerts:   []models.Alert{},
		Banner:   Banner(nil, zone),
	}
}

// OnLocationChanged switches to a new location. All four subsystems are
// refetched and in-flight results for the old location become stale.
func (c *Controller) OnLocationChanged(loc models.Location) Plan {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset(loc)
	d, _ := Decide(TriggerLocationChanged, State{})
	return c.issue(TriggerLocationChanged, d)
}

// RefreshAll refetches everything for the current location without clearing
// what is on screen.
func (c *Controller) RefreshAll() Plan {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, _ := Decide(TriggerLocationChanged, State{})
	return c.issue(TriggerLocationChanged, d)
}

// OnMinuteTick updates the status line and plans the current, hourly and,
// when due, daily refetch.
func (c *Controller) OnMinuteTick() (Plan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().In(c.display.Location.Zone())
	c.display.Status = FormatStatus(now)

	d, err := Decide(TriggerMinuteTick, State{
		Status:    c.display.Status,
		LastDaily: c.lastDaily,
		Now:       now,
	})
	if err != nil {
		return Plan{}, err
	}
	return c.issue(TriggerMinuteTick, d), nil
}

// OnHalfHourTick plans the alerts refetch
func (c *Controller) OnHalfHourTick() Plan {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, _ := Decide(TriggerHalfHourTick, State{})
	return c.issue(TriggerHalfHourTick, d)
}

// OnViewportChanged selects overlay layers for the viewport and keeps them
// for the display.
func (c *Controller) OnViewportChanged(vp models.Viewport) ([]tiles.Layer, error) {
	layers, err := c.selector.Select(vp)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.display.Layers = layers
	c.mu.Unlock()

	return slices.Clone(layers), nil
}

// issue bumps the sequence of every subsystem in d. Caller holds the lock.
func (c *Controller) issue(trigger Trigger, d Decision) Plan {
	plan := Plan{
		ID:       uuid.NewString(),
		Trigger:  trigger,
		Location: c.display.Location,
	}

	for _, s := range []struct {
		sub  Subsystem
		want bool
	}{
		{SubsystemCurrent, d.Current},
		{SubsystemHourly, d.Hourly},
		{SubsystemDaily, d.Daily},
		{SubsystemAlerts, d.Alerts},
	} {
		if !s.want {
			continue
		}
		c.seq[s.sub]++
		plan.Tickets = append(plan.Tickets, Ticket{Subsystem: s.sub, Seq: c.seq[s.sub]})
	}

	c.log.WithFields(map[string]interface{}{
		"plan":    plan.ID,
		"trigger": trigger.String(),
		"tickets": len(plan.Tickets),
	}).Debug("refresh planned")

	return plan
}

// Apply applies every result of a batch under one lock so readers never see
// a half updated display.
func (c *Controller) Apply(b Batch) map[Subsystem]Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	outcomes := make(map[Subsystem]Outcome, len(b.Results))
	for _, r := range b.Results {
		outcome := c.apply(r)
		outcomes[r.Subsystem] = outcome

		if outcome != Updated {
			entry := c.log.WithFields(map[string]interface{}{
				"plan":      b.PlanID,
				"subsystem": string(r.Subsystem),
				"seq":       r.Seq,
				"outcome":   outcome.String(),
			})
			if r.Err != nil {
				entry.Warnf("keeping previous value: %s", logger.FormatError(r.Err))
			} else {
				entry.Debug("result dropped")
			}
		}
	}
	return outcomes
}

func (c *Controller) apply(r Result) Outcome {
	if r.Seq == 0 || r.Seq != c.seq[r.Subsystem] {
		return Stale
	}
	if r.Err != nil {
		return NoUpdate
	}

	switch r.Subsystem {
	case SubsystemCurrent:
		if r.Current == nil {
			return NoUpdate
		}
		c.display.Current = r.Current
	case SubsystemHourly:
		if r.Hourly == nil {
			return NoUpdate
		}
		c.display.Hourly = r.Hourly
	case SubsystemDaily:
		if r.Daily == nil {
			return NoUpdate
		}
		c.display.Daily = r.Daily
		c.lastDaily = c.now()
	case SubsystemAlerts:
		alerts := r.Alerts
		if alerts == nil {
			alerts = []models.Alert{}
		}
		c.display.Alerts = alerts
		c.display.Banner = Banner(alerts, c.display.Location.Zone())
	default:
		return NoUpdate
	}
	return Updated
}

// Location returns the current location
func (c *Controller) Location() models.Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.display.Location
}

// LastDaily returns when the daily forecast was last applied
func (c *Controller) LastDaily() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastDaily
}

// Display returns a copy of the dashboard state
func (c *Controller) Display() Display {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d := c.display
	if d.Current != nil {
		cur := *d.Current
		d.Current = &cur
	}
	if d.Hourly != nil {
		h := *d.Hourly
		h.Points = slices.Clone(h.Points)
		d.Hourly = &h
	}
	if d.Daily != nil {
		daily := *d.Daily
		daily.Days = slices.Clone(daily.Days)
		d.Daily = &daily
	}
	d.Alerts = slices.Clone(d.Alerts)
	d.Banner = d.Banner.clone()
	d.Layers = slices.Clone(d.Layers)
	return d
}
