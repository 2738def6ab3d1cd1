package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no config in the environment
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("OWM_API_KEY", "")
	t.Setenv("IPINFO_TOKEN", "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("OWM_API_KEY", "env-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.OpenWeather.APIKey)
	assert.Equal(t, 1.0, cfg.OpenWeather.RPS)
	assert.Equal(t, 5, cfg.OpenWeather.Burst)
	assert.Equal(t, 5*time.Minute, cfg.OpenWeather.CacheTTL)
	assert.Equal(t, 11, cfg.Map.Zoom)
	assert.Equal(t, 18, cfg.Map.MaxZoom)
	assert.Equal(t, "precipitation", cfg.Map.Mode)
	assert.Equal(t, 20*time.Second, cfg.Refresh.Timeout)
	assert.Equal(t, "data/weather-terminal.log", cfg.App.LogFile)

	loc := cfg.Location.Location()
	assert.Equal(t, "Dayton, OH", loc.Label())
	assert.Equal(t, "America/New_York", loc.TimezoneID)
	assert.Equal(t, 39.7589, loc.Latitude)
	assert.Equal(t, -84.1916, loc.Longitude)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	isolate(t)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
openweather:
  api_key: file-key
  rps: 2.5
map:
  zoom: 9
  mode: clouds
location:
  city: Chatham
  region: Massachusetts
  region_code: MA
  latitude: 41.6821
  longitude: -69.9597
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.OpenWeather.APIKey)
	assert.Equal(t, 2.5, cfg.OpenWeather.RPS)
	assert.Equal(t, 9, cfg.Map.Zoom)
	assert.Equal(t, "clouds", cfg.Map.Mode)
	assert.Equal(t, "Chatham, MA", cfg.Location.Location().Label())
	// Unset keys keep their defaults
	assert.Equal(t, 18, cfg.Map.MaxZoom)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("OWM_API_KEY", "env-key")

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("config.yaml", []byte("openweather:\n  api_key: file-key\nmap:\n  zoom: 9\n"), 0644))

	t.Setenv("OWM_API_KEY", "env-key")
	t.Setenv("IPINFO_TOKEN", "tok")
	t.Setenv("WEATHER_TERMINAL_MAP_ZOOM", "13")
	t.Setenv("WEATHER_TERMINAL_APP_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.OpenWeather.APIKey)
	assert.Equal(t, "tok", cfg.IPInfo.Token)
	assert.Equal(t, 13, cfg.Map.Zoom)
	assert.Equal(t, "debug", cfg.App.LogLevel)
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	// godotenv never overrides variables that are already set
	os.Unsetenv("OWM_API_KEY")
	require.NoError(t, os.WriteFile(".env", []byte("OWM_API_KEY=dotenv-key\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("OWM_API_KEY") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.OpenWeather.APIKey)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			OpenWeather: OpenWeatherConfig{APIKey: "k", RPS: 1, Burst: 5},
			Location:    LocationConfig{Latitude: 39.7589, Longitude: -84.1916},
			Map:         MapConfig{Zoom: 11, MaxZoom: 18, Mode: "precipitation", Span: 0.25},
			Refresh:     RefreshConfig{Timeout: 20 * time.Second},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.OpenWeather.APIKey = "" }},
		{"zero rps", func(c *Config) { c.OpenWeather.RPS = 0 }},
		{"zero burst", func(c *Config) { c.OpenWeather.Burst = 0 }},
		{"zoom above max", func(c *Config) { c.Map.Zoom = 19 }},
		{"negative zoom", func(c *Config) { c.Map.Zoom = -1 }},
		{"max zoom too large", func(c *Config) { c.Map.MaxZoom = 30 }},
		{"unknown mode", func(c *Config) { c.Map.Mode = "snow" }},
		{"zero span", func(c *Config) { c.Map.Span = 0 }},
		{"latitude out of range", func(c *Config) { c.Location.Latitude = 91 }},
		{"zero refresh timeout", func(c *Config) { c.Refresh.Timeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
