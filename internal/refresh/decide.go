// Package refresh decides which weather data to recompute for each trigger
// and applies fetched results to the dashboard state in order.
package refresh

import "time"

// Trigger identifies the input that started a refresh
type Trigger int

const (
	TriggerLocationChanged Trigger = iota
	TriggerMinuteTick
	TriggerHalfHourTick
)

func (t Trigger) String() string {
	switch t {
	case TriggerLocationChanged:
		return "location_changed"
	case TriggerMinuteTick:
		return "minute_tick"
	case TriggerHalfHourTick:
		return "half_hour_tick"
	default:
		return "unknown"
	}
}

// State is what the decision depends on
type State struct {
	Status    string    // last rendered status line
	LastDaily time.Time // when the daily forecast was last applied, zero if never
	Now       time.Time // in the location's zone
}

// Decision lists the subsystems to recompute
type Decision struct {
	Current bool
	Hourly  bool
	Daily   bool
	Alerts  bool
}

// Any reports whether anything needs fetching
func (d Decision) Any() bool {
	return d.Current || d.Hourly || d.Daily || d.Alerts
}

// Decide maps a trigger and state to the subsystems to recompute. A minute
// tick recomputes the daily forecast at midnight, or on the first tick of a
// local date that has no daily forecast yet.
func Decide(trigger Trigger, st State) (Decision, error) {
	switch trigger {
	case TriggerLocationChanged:
		return Decision{Current: true, Hourly: true, Daily: true, Alerts: true}, nil

	case TriggerMinuteTick:
		daily, err := ShouldRecomputeDaily(false, st.Status)
		if err != nil {
			return Decision{}, err
		}
		if !daily {
			daily = dateAfter(st.Now, st.LastDaily)
		}
		return Decision{Current: true, Hourly: true, Daily: daily}, nil

	case TriggerHalfHourTick:
		return Decision{Alerts: true}, nil
	}

	return Decision{}, nil
}

// dateAfter reports whether now falls on a later calendar date than last,
// both read in now's zone.
func dateAfter(now, last time.Time) bool {
	if last.IsZero() {
		return true
	}
	ny, nm, nd := now.Date()
	ly, lm, ld := last.In(now.Location()).Date()
	if ny != ly {
		return ny > ly
	}
	if nm != lm {
		return nm > lm
	}
	return nd > ld
}
