package tiles

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

// ErrInvalidViewport is returned when a viewport's bounding box is not two
// [lat, lon] pairs.
var ErrInvalidViewport = errors.New("invalid viewport")

// maxOverlayTiles bounds the overlay image requests for any viewport size
const maxOverlayTiles = 2

const (
	DefaultBaseURL    = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultOverlayURL = "https://tile.openweathermap.org/map"
	DefaultMode       = "precipitation"
	DefaultMaxZoom    = 18
)

// Weather layer modes served by the overlay endpoint
var modes = map[string]bool{
	"clouds":            true,
	"clouds_new":        true,
	"precipitation":     true,
	"precipitation_new": true,
	"pressure":          true,
	"pressure_new":      true,
	"wind":              true,
	"wind_new":          true,
	"temp":              true,
	"temp_new":          true,
}

// ValidMode reports whether mode is a known weather layer
func ValidMode(mode string) bool {
	return modes[mode]
}

// LayerKind distinguishes the base map from weather overlays
type LayerKind string

const (
	LayerBase    LayerKind = "base"
	LayerOverlay LayerKind = "overlay"
)

// Layer is a single map layer. Overlays carry the tile they were cut from.
type Layer struct {
	Kind   LayerKind     `json:"kind"`
	URL    string        `json:"url"`
	Zoom   int           `json:"zoom,omitempty"`
	X      int           `json:"x,omitempty"`
	Y      int           `json:"y,omitempty"`
	Bounds [2][2]float64 `json:"bounds,omitempty"`
}

// Selector picks the overlay tiles for a viewport
type Selector struct {
	BaseURL    string
	OverlayURL string
	APIKey     string
	Mode       string
	// MaxZoom caps the overlay zoom. Zero is a valid cap; negative means
	// DefaultMaxZoom.
	MaxZoom int
}

// NewSelector creates a selector with the default endpoints. A negative
// maxZoom selects DefaultMaxZoom.
func NewSelector(apiKey, mode string, maxZoom int) *Selector {
	if maxZoom < 0 {
		maxZoom = DefaultMaxZoom
	}
	return &Selector{
		BaseURL:    DefaultBaseURL,
		OverlayURL: DefaultOverlayURL,
		APIKey:     apiKey,
		Mode:       mode,
		MaxZoom:    maxZoom,
	}
}

type tile struct {
	x, y int
}

// Select returns the base layer plus the overlays covering the viewport. The
// zoom starts at the viewport zoom and is lowered until the five reference
// points (center and the four corners) fall on at most two tiles.
func (s *Selector) Select(vp models.Viewport) ([]Layer, error) {
	layers := []Layer{s.baseLayer()}

	if !vp.HasBounds() {
		return layers, nil
	}

	corners, err := parseBounds(vp.Bounds)
	if err != nil {
		return nil, err
	}
	lat1, lon1 := corners[0][0], corners[0][1]
	lat2, lon2 := corners[1][0], corners[1][1]

	points := [][2]float64{
		vp.Center,
		{lat1, lon1},
		{lat1, lon2},
		{lat2, lon1},
		{lat2, lon2},
	}

	zoom := s.startZoom(vp.Zoom)
	unique := distinctTiles(points, zoom)
	for len(unique) > maxOverlayTiles && zoom > 0 {
		zoom--
		unique = distinctTiles(points, zoom)
	}

	for _, t := range unique {
		layers = append(layers, Layer{
			Kind:   LayerOverlay,
			URL:    s.overlayURL(t, zoom),
			Zoom:   zoom,
			X:      t.x,
			Y:      t.y,
			Bounds: TileBounds(t.x, t.y, zoom),
		})
	}

	return layers, nil
}

func (s *Selector) startZoom(zoom int) int {
	maxZoom := s.MaxZoom
	if maxZoom < 0 {
		maxZoom = DefaultMaxZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	if zoom < 0 {
		zoom = 0
	}
	return zoom
}

func (s *Selector) baseLayer() Layer {
	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return Layer{Kind: LayerBase, URL: base}
}

func (s *Selector) overlayURL(t tile, zoom int) string {
	base := s.OverlayURL
	if base == "" {
		base = DefaultOverlayURL
	}
	mode := s.Mode
	if !ValidMode(mode) {
		mode = DefaultMode
	}
	return fmt.Sprintf("%s/%s/%d/%d/%d.png?appid=%s", base, mode, zoom, t.x, t.y, url.QueryEscape(s.APIKey))
}

// distinctTiles maps points to tiles, keeping first-seen order
func distinctTiles(points [][2]float64, zoom int) []tile {
	seen := make(map[tile]bool, len(points))
	var unique []tile
	for _, p := range points {
		x, y := TileCoords(p[0], p[1], zoom)
		t := tile{x, y}
		if seen[t] {
			continue
		}
		seen[t] = true
		unique = append(unique, t)
	}
	return unique
}

func parseBounds(bounds [][]float64) ([2][2]float64, error) {
	var corners [2][2]float64
	if len(bounds) != 2 {
		return corners, fmt.Errorf("%w: expected 2 corners, got %d", ErrInvalidViewport, len(bounds))
	}
	for i, pair := range bounds {
		if len(pair) != 2 {
			return corners, fmt.Errorf("%w: corner %d has %d coordinates", ErrInvalidViewport, i, len(pair))
		}
		corners[i] = [2]float64{pair[0], pair[1]}
	}
	return corners, nil
}
