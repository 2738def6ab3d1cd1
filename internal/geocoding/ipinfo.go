package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/logger"
	"github.com/ngmaloney/weather-terminal/internal/models"
)

// ErrLocationUnavailable is returned when the IP lookup fails
var ErrLocationUnavailable = errors.New("location unavailable")

const ipinfoURL = "https://ipinfo.io"

// Locator resolves a client IP to a location through ipinfo.io
type Locator struct {
	baseURL    string
	token      string
	httpClient *http.Client
	regions    RegionLookup
	fallback   models.Location
	log        logger.Logger
}

// NewLocator creates a locator. fallback is used by LocateOrDefault and
// regions may be nil.
func NewLocator(token string, fallback models.Location, regions RegionLookup, log logger.Logger) *Locator {
	return &Locator{
		baseURL: ipinfoURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		regions:  regions,
		fallback: fallback,
		log:      logger.Component(log, "geolocator"),
	}
}

type ipinfoResponse struct {
	IP       string `json:"ip"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"` // "lat,lon"
	Timezone string `json:"timezone"`
	Bogon    bool   `json:"bogon"`
}

// ParseIPInfo parses an ipinfo.io response. It reports false for bogon
// addresses, missing cities and unparseable coordinates.
func ParseIPInfo(body []byte) (models.Location, bool) {
	var resp ipinfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.Location{}, false
	}
	if resp.Bogon || resp.City == "" {
		return models.Location{}, false
	}

	lat, lon, ok := parseLatLon(resp.Loc)
	if !ok {
		return models.Location{}, false
	}

	return models.Location{
		City:       resp.City,
		Region:     resp.Region,
		Country:    resp.Country,
		TimezoneID: resp.Timezone,
		Latitude:   lat,
		Longitude:  lon,
	}, true
}

func parseLatLon(s string) (float64, float64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

// Locate looks up ip. An empty ip locates the caller's own address.
func (l *Locator) Locate(ctx context.Context, ip string) (models.Location, error) {
	path := "/json"
	if ip != "" {
		path = "/" + url.PathEscape(ip)
	}
	reqURL := l.baseURL + path
	if l.token != "" {
		reqURL += "?" + url.Values{"token": {l.token}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return models.Location{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return models.Location{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Location{}, fmt.Errorf("%w: ipinfo returned status %d", ErrLocationUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Location{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}

	loc, ok := ParseIPInfo(body)
	if !ok {
		return models.Location{}, fmt.Errorf("%w: no usable location for %q", ErrLocationUnavailable, ip)
	}
	loc.RegionCode = abbreviate(ctx, l.regions, loc.Region)

	return loc, nil
}

// LocateOrDefault is Locate with the fallback location substituted on any
// failure.
func (l *Locator) LocateOrDefault(ctx context.Context, ip string) models.Location {
	loc, err := l.Locate(ctx, ip)
	if err != nil {
		l.log.WithField("ip", ip).Warnf("using default location %s: %v", l.fallback.Label(), err)
		return l.fallback
	}
	return loc
}
