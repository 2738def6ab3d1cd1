// Package charts renders the hourly forecast as terminal line charts.
package charts

import (
	"fmt"
	"math"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

// Kind selects one of the three hourly charts
type Kind int

const (
	Temperature Kind = iota
	Precipitation
	Humidity
)

// Kinds lists the charts in tab order
var Kinds = []Kind{Temperature, Precipitation, Humidity}

func (k Kind) String() string {
	switch k {
	case Precipitation:
		return "Precipitation"
	case Humidity:
		return "Humidity"
	default:
		return "Temperature"
	}
}

// Series is one chart's data. Labels and Values are parallel.
type Series struct {
	Kind      Kind
	Unit      string
	Labels    []string
	Values    []float64
	ClampZero bool
}

// NewSeries extracts the series for kind from an hourly forecast
func NewSeries(kind Kind, h models.HourlyForecast) Series {
	s := Series{Kind: kind, Labels: h.Labels()}
	switch kind {
	case Precipitation:
		s.Unit = "mm"
		s.Values = h.Precipitation()
		s.ClampZero = true
	case Humidity:
		s.Unit = "%"
		s.Values = h.Humidity()
		s.ClampZero = true
	default:
		s.Unit = "°F"
		s.Values = h.Temperatures()
	}
	return s
}

// AxisRange returns the y axis limits for values, leaving half the data span
// of headroom on each side. A flat series is padded by one unit and an empty
// one gets 0..1. Quantities that cannot be negative clamp the low end at 0.
func AxisRange(values []float64, clampZero bool) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 1
	}

	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}

	if minV == maxV {
		lo, hi = minV-1, maxV+1
	} else {
		lo = 0.5 * (3*minV - maxV)
		hi = 0.5 * (3*maxV - minV)
	}

	if clampZero && lo < 0 {
		lo = 0
	}
	return lo, hi
}

// PointLabels returns the rounded value text drawn above each point. The
// first and last points are left blank so labels do not run off the edges.
func PointLabels(values []float64) []string {
	labels := make([]string, len(values))
	for i, v := range values {
		if i == 0 || i == len(values)-1 {
			continue
		}
		labels[i] = fmt.Sprintf("%.0f", math.Round(v))
	}
	return labels
}
