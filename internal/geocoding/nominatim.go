package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/logger"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/openweather"
	"golang.org/x/time/rate"
)

const (
	nominatimURL = "https://nominatim.openstreetmap.org"
	userAgent    = "WeatherTerminal/1.0" // Required by Nominatim ToS
)

// ErrNoResults is returned when a search matches nothing
var ErrNoResults = errors.New("no results found")

// Searcher turns free text ("Chatham, MA", "02633") into a location
type Searcher struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timezones  openweather.TimezoneResolver
	regions    RegionLookup
	log        logger.Logger
}

// NewSearcher creates a Nominatim searcher. timezones and regions may be nil,
// leaving those fields empty.
func NewSearcher(timezones openweather.TimezoneResolver, regions RegionLookup, log logger.Logger) *Searcher {
	return &Searcher{
		baseURL: nominatimURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		// Nominatim requires 1 req/sec max
		limiter:   rate.NewLimiter(rate.Limit(1), 1),
		timezones: timezones,
		regions:   regions,
		log:       logger.Component(log, "search"),
	}
}

// nominatimResponse represents the Nominatim API response
type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		Hamlet      string `json:"hamlet"`
		County      string `json:"county"`
		State       string `json:"state"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

func (r nominatimResponse) city() string {
	for _, name := range []string{r.Address.City, r.Address.Town, r.Address.Village, r.Address.Hamlet, r.Address.County} {
		if name != "" {
			return name
		}
	}
	name, _, _ := strings.Cut(r.DisplayName, ",")
	return strings.TrimSpace(name)
}

// Search converts a query to a location
func (s *Searcher) Search(ctx context.Context, query string) (models.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.Location{}, fmt.Errorf("query cannot be empty")
	}

	params := url.Values{}
	params.Add("format", "json")
	params.Add("addressdetails", "1")
	params.Add("limit", "1")
	if isZipcode(query) {
		params.Add("postalcode", query[:5])
		params.Add("countrycodes", "us")
	} else {
		params.Add("q", query)
	}

	reqURL := fmt.Sprintf("%s/search?%s", s.baseURL, params.Encode())

	if err := s.limiter.Wait(ctx); err != nil {
		return models.Location{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return models.Location{}, fmt.Errorf("creating request: %w", err)
	}

	// Set required User-Agent header (Nominatim ToS requirement)
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.Location{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Location{}, fmt.Errorf("nominatim API returned status %d", resp.StatusCode)
	}

	var results []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return models.Location{}, fmt.Errorf("decoding response: %w", err)
	}

	if len(results) == 0 {
		return models.Location{}, fmt.Errorf("%w for '%s'", ErrNoResults, query)
	}

	result := results[0]

	lat, err := strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("parsing longitude: %w", err)
	}

	loc := models.Location{
		City:      result.city(),
		Region:    result.Address.State,
		Country:   strings.ToUpper(result.Address.CountryCode),
		Latitude:  lat,
		Longitude: lon,
	}
	loc.RegionCode = abbreviate(ctx, s.regions, loc.Region)

	if s.timezones != nil {
		zone, err := s.timezones.Timezone(ctx, lat, lon)
		if err != nil {
			s.log.WithField("query", query).Warnf("timezone lookup failed, using UTC: %v", err)
		} else {
			loc.TimezoneID = zone
		}
	}

	return loc, nil
}

// isZipcode checks if a string looks like a US zipcode
func isZipcode(s string) bool {
	// Match 5-digit or 9-digit (with hyphen) zipcodes
	matched, _ := regexp.MatchString(`^\d{5}(-\d{4})?$`, s)
	return matched
}
