package openweather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/logger"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.openweathermap.org"
	DefaultRPS       = 1.0
	DefaultBurst     = 5
	DefaultCacheTTL  = 5 * time.Minute
	defaultUserAgent = "WeatherTerminal/1.0 (github.com/ngmaloney/weather-terminal)"
)

type cacheEntry struct {
	body      []byte
	fetchedAt time.Time
}

// Client implements WeatherService and TimezoneResolver against the
// OpenWeatherMap API. Requests are rate limited and forecast responses are
// cached per URL.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	cacheTTL   time.Duration
	cache      map[string]cacheEntry
	mu         sync.RWMutex
	log        logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithRateLimit sets the request rate. rps may be fractional.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCacheTTL sets how long forecast responses are reused. Zero disables
// the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithBaseURL points the client at another API host. Empty keeps the default.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new OpenWeatherMap client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: defaultUserAgent,
		limiter:   rate.NewLimiter(rate.Limit(DefaultRPS), DefaultBurst),
		cacheTTL:  DefaultCacheTTL,
		cache:     make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.Component(c.log, "openweather")
	return c
}

// get fetches path with params and returns the body. Cached responses younger
// than the TTL are returned without a request when cached is true.
func (c *Client) get(ctx context.Context, path string, params url.Values, cached bool) ([]byte, error) {
	params.Set("appid", c.apiKey)
	params.Set("units", "imperial")
	endpoint := c.baseURL + path + "?" + params.Encode()

	if cached && c.cacheTTL > 0 {
		c.mu.RLock()
		entry, ok := c.cache[endpoint]
		c.mu.RUnlock()

		if ok && time.Since(entry.fetchedAt) < c.cacheTTL {
			return entry.body, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait canceled: %v", ErrProviderUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrProviderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrProviderUnavailable, path, resp.StatusCode)
	}

	if cached && c.cacheTTL > 0 {
		now := time.Now()
		c.mu.Lock()
		for key, entry := range c.cache {
			if now.Sub(entry.fetchedAt) >= c.cacheTTL {
				delete(c.cache, key)
			}
		}
		c.cache[endpoint] = cacheEntry{body: body, fetchedAt: now}
		c.mu.Unlock()
	}

	c.log.WithField("path", path).Debug("provider request")
	return body, nil
}

// Verify that the client implements the service interfaces
var (
	_ WeatherService   = (*Client)(nil)
	_ TimezoneResolver = (*Client)(nil)
)
