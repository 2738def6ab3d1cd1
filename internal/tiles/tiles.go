// Package tiles selects weather map overlay tiles for a map viewport using the
// standard web-mercator slippy-map tile scheme.
package tiles

import "math"

// MaxLatitude is the northern limit of the web-mercator projection
const MaxLatitude = 85.0511287798066

// TileCoords converts a latitude and longitude to the slippy-map tile index
// at the given zoom. Points outside the mercator range are clamped to the
// edge tiles, so a latitude beyond MaxLatitude maps to row 0 (or the last
// row) but is not inside that tile's TileBounds. Callers testing coverage
// with Contains must clamp the latitude first.
func TileCoords(lat, lon float64, zoom int) (x, y int) {
	n := math.Exp2(float64(zoom))
	lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
	latRad := lat * math.Pi / 180

	fx := math.Floor((lon + 180) / 360 * n)
	fy := math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n)

	return clampIndex(fx, n), clampIndex(fy, n)
}

// TileBounds returns the geographic box covered by a tile as
// [[latSouth, lonWest], [latNorth, lonEast]].
func TileBounds(x, y, zoom int) [2][2]float64 {
	west := tileLon(x, zoom)
	east := tileLon(x+1, zoom)
	north := tileLat(y, zoom)
	south := tileLat(y+1, zoom)
	return [2][2]float64{{south, west}, {north, east}}
}

// Contains reports whether a point lies inside a tile bounds box
func Contains(bounds [2][2]float64, lat, lon float64) bool {
	return lat >= bounds[0][0] && lat <= bounds[1][0] &&
		lon >= bounds[0][1] && lon <= bounds[1][1]
}

func tileLon(x, zoom int) float64 {
	return float64(x)/math.Exp2(float64(zoom))*360 - 180
}

func tileLat(y, zoom int) float64 {
	n := math.Pi * (1 - 2*float64(y)/math.Exp2(float64(zoom)))
	return math.Atan(math.Sinh(n)) * 180 / math.Pi
}

func clampIndex(v, n float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > n-1 {
		return int(n - 1)
	}
	return int(v)
}
