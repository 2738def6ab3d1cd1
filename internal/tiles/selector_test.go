package tiles

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

var dayton = models.Location{
	City:       "Dayton",
	Region:     "Ohio",
	RegionCode: "OH",
	Country:    "US",
	TimezoneID: "America/New_York",
	Latitude:   39.7589,
	Longitude:  -84.1916,
}

func overlays(layers []Layer) []Layer {
	var out []Layer
	for _, l := range layers {
		if l.Kind == LayerOverlay {
			out = append(out, l)
		}
	}
	return out
}

// clampLatitude pulls a latitude just inside the mercator range
func clampLatitude(lat float64) float64 {
	limit := MaxLatitude - 1e-9
	return math.Max(-limit, math.Min(limit, lat))
}

func TestSelectWithoutBounds(t *testing.T) {
	s := NewSelector("key", "precipitation", 18)

	layers, err := s.Select(models.Viewport{Center: [2]float64{39.7589, -84.1916}, Zoom: 11})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if len(layers) != 1 {
		t.Fatalf("got %d layers, want only the base layer", len(layers))
	}
	if layers[0].Kind != LayerBase {
		t.Errorf("Kind = %s, want base", layers[0].Kind)
	}
	if layers[0].URL != DefaultBaseURL {
		t.Errorf("URL = %s, want %s", layers[0].URL, DefaultBaseURL)
	}
}

func TestSelectInvalidBounds(t *testing.T) {
	tests := []struct {
		name   string
		bounds [][]float64
	}{
		{"one corner", [][]float64{{39.5, -84.4}}},
		{"three corners", [][]float64{{39.5, -84.4}, {40, -83.9}, {41, -83}}},
		{"short pair", [][]float64{{39.5}, {40, -83.9}}},
		{"long pair", [][]float64{{39.5, -84.4, 1}, {40, -83.9}}},
	}

	s := NewSelector("key", "precipitation", 18)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Select(models.Viewport{Zoom: 11, Bounds: tt.bounds})
			if !errors.Is(err, ErrInvalidViewport) {
				t.Errorf("Select() error = %v, want ErrInvalidViewport", err)
			}
		})
	}
}

func TestSelectDayton(t *testing.T) {
	s := NewSelector("key", "precipitation", 18)
	vp := models.ViewportAround(dayton, 11, 0.25)

	layers, err := s.Select(vp)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if layers[0].Kind != LayerBase {
		t.Fatalf("first layer = %s, want base", layers[0].Kind)
	}

	got := overlays(layers)
	if len(got) != 2 {
		t.Fatalf("got %d overlays, want 2", len(got))
	}

	want := []struct{ x, y int }{{34, 48}, {33, 48}}
	for i, l := range got {
		if l.Zoom != 7 {
			t.Errorf("overlay %d zoom = %d, want 7", i, l.Zoom)
		}
		if l.X != want[i].x || l.Y != want[i].y {
			t.Errorf("overlay %d = (%d, %d), want (%d, %d)", i, l.X, l.Y, want[i].x, want[i].y)
		}
	}
}

func TestSelectCoversReferencePoints(t *testing.T) {
	s := NewSelector("key", "clouds", 18)

	viewports := []models.Viewport{
		models.ViewportAround(dayton, 11, 0.25),
		models.ViewportAround(dayton, 14, 0.01),
		models.ViewportAround(dayton, 9, 3),
		{Center: [2]float64{-33.8688, 151.2093}, Zoom: 12, Bounds: [][]float64{{-34.1, 150.9}, {-33.6, 151.5}}},
		{Center: [2]float64{51.5074, -0.1278}, Zoom: 10, Bounds: [][]float64{{51.3, -0.5}, {51.7, 0.3}}},
		// North of the mercator limit
		{Center: [2]float64{86, 10}, Zoom: 6, Bounds: [][]float64{{85.5, 9}, {86.5, 11}}},
	}

	for _, vp := range viewports {
		layers, err := s.Select(vp)
		if err != nil {
			t.Fatalf("Select(%v) error = %v", vp, err)
		}

		got := overlays(layers)
		if len(got) < 1 || len(got) > 2 {
			t.Fatalf("Select(%v) returned %d overlays, want 1 or 2", vp, len(got))
		}

		lat1, lon1 := vp.Bounds[0][0], vp.Bounds[0][1]
		lat2, lon2 := vp.Bounds[1][0], vp.Bounds[1][1]
		points := [][2]float64{vp.Center, {lat1, lon1}, {lat1, lon2}, {lat2, lon1}, {lat2, lon2}}

		for _, p := range points {
			lat := clampLatitude(p[0])
			covered := false
			for _, l := range got {
				if Contains(l.Bounds, lat, p[1]) {
					covered = true
					break
				}
			}
			if !covered {
				t.Errorf("point %v not covered by overlays %v", p, got)
			}
		}

		// The chosen zoom is the highest one that fits
		zoom := got[0].Zoom
		if zoom < vp.Zoom && len(distinctTiles(points, zoom+1)) <= maxOverlayTiles {
			t.Errorf("zoom %d is not maximal for %v", zoom, vp)
		}
	}
}

func TestSelectZoomMonotonic(t *testing.T) {
	s := NewSelector("key", "precipitation", 18)

	prev := 19
	for _, span := range []float64{0.001, 0.01, 0.05, 0.25, 1, 5, 20, 60} {
		layers, err := s.Select(models.ViewportAround(dayton, 18, span))
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		zoom := overlays(layers)[0].Zoom
		if zoom > prev {
			t.Errorf("span %v selected zoom %d, larger than %d for a smaller box", span, zoom, prev)
		}
		prev = zoom
	}
}

func TestSelectSmallBoxKeepsZoom(t *testing.T) {
	s := NewSelector("key", "precipitation", 18)

	layers, err := s.Select(models.ViewportAround(dayton, 11, 0.001))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	got := overlays(layers)
	if len(got) != 1 {
		t.Fatalf("got %d overlays, want 1", len(got))
	}
	if got[0].Zoom != 11 || got[0].X != 545 || got[0].Y != 777 {
		t.Errorf("overlay = %+v, want zoom 11 tile (545, 777)", got[0])
	}
}

func TestSelectWorldCollapsesToZoomZero(t *testing.T) {
	s := NewSelector("key", "precipitation", 18)

	layers, err := s.Select(models.Viewport{
		Center: [2]float64{0, 0},
		Zoom:   5,
		Bounds: [][]float64{{-80, -170}, {80, 170}},
	})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	got := overlays(layers)
	if len(got) != 1 {
		t.Fatalf("got %d overlays, want 1", len(got))
	}
	if got[0].Zoom != 0 || got[0].X != 0 || got[0].Y != 0 {
		t.Errorf("overlay = %+v, want tile (0, 0) at zoom 0", got[0])
	}
}

func TestSelectZoomClamp(t *testing.T) {
	s := NewSelector("key", "precipitation", 12)

	layers, err := s.Select(models.ViewportAround(dayton, 25, 0.0001))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	for _, l := range overlays(layers) {
		if l.Zoom > 12 {
			t.Errorf("zoom = %d, want at most 12", l.Zoom)
		}
	}

	layers, err = s.Select(models.ViewportAround(dayton, -3, 0.25))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	for _, l := range overlays(layers) {
		if l.Zoom != 0 {
			t.Errorf("zoom = %d, want 0", l.Zoom)
		}
	}
}

func TestSelectMaxZoomZero(t *testing.T) {
	s := NewSelector("key", "precipitation", 0)

	layers, err := s.Select(models.ViewportAround(dayton, 15, 0.01))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	got := overlays(layers)
	if len(got) != 1 {
		t.Fatalf("got %d overlays, want 1", len(got))
	}
	if got[0].Zoom != 0 || got[0].X != 0 || got[0].Y != 0 {
		t.Errorf("overlay = %+v, want tile (0, 0) at zoom 0", got[0])
	}
}

func TestNewSelectorNegativeMaxZoom(t *testing.T) {
	s := NewSelector("key", "precipitation", -1)
	if s.MaxZoom != DefaultMaxZoom {
		t.Errorf("MaxZoom = %d, want %d", s.MaxZoom, DefaultMaxZoom)
	}
}

func TestSelectOverlayURL(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{"clouds", "https://tiles.test/map/clouds/0/0/0.png?appid=secret"},
		{"temp_new", "https://tiles.test/map/temp_new/0/0/0.png?appid=secret"},
		{"snow", "https://tiles.test/map/precipitation/0/0/0.png?appid=secret"},
		{"", "https://tiles.test/map/precipitation/0/0/0.png?appid=secret"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			s := &Selector{OverlayURL: "https://tiles.test/map", APIKey: "secret", Mode: tt.mode}
			layers, err := s.Select(models.Viewport{Zoom: 0, Bounds: [][]float64{{-10, -10}, {10, 10}}})
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			got := overlays(layers)
			if len(got) != 1 {
				t.Fatalf("got %d overlays, want 1", len(got))
			}
			if got[0].URL != tt.want {
				t.Errorf("URL = %s, want %s", got[0].URL, tt.want)
			}
		})
	}
}

func TestSelectDefaultsOverlayEndpoint(t *testing.T) {
	s := &Selector{APIKey: "k"}
	layers, err := s.Select(models.Viewport{Bounds: [][]float64{{-10, -10}, {10, 10}}})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if !strings.HasPrefix(overlays(layers)[0].URL, DefaultOverlayURL+"/precipitation/") {
		t.Errorf("URL = %s, want default overlay endpoint", overlays(layers)[0].URL)
	}
}
