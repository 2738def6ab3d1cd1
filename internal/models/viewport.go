package models

// Viewport is a map bounding box, center and zoom as reported by a map widget.
// Bounds holds two opposite [lat, lon] corners and may be nil when the widget
// has not reported its extent yet.
type Viewport struct {
	Center [2]float64  `json:"center"` // [lat, lon]
	Zoom   int         `json:"zoom"`
	Bounds [][]float64 `json:"bounds,omitempty"`
}

// HasBounds reports whether a bounding box was supplied
func (v Viewport) HasBounds() bool {
	return len(v.Bounds) > 0
}

// ViewportAround builds a viewport centered on a location extending span
// degrees in each direction.
func ViewportAround(loc Location, zoom int, span float64) Viewport {
	return Viewport{
		Center: [2]float64{loc.Latitude, loc.Longitude},
		Zoom:   zoom,
		Bounds: [][]float64{
			{loc.Latitude - span, loc.Longitude - span},
			{loc.Latitude + span, loc.Longitude + span},
		},
	}
}
