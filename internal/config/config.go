package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/tiles"
	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	OpenWeather OpenWeatherConfig `mapstructure:"openweather"`
	IPInfo      IPInfoConfig      `mapstructure:"ipinfo"`
	Location    LocationConfig    `mapstructure:"location"`
	Map         MapConfig         `mapstructure:"map"`
	Refresh     RefreshConfig     `mapstructure:"refresh"`
	Database    DatabaseConfig    `mapstructure:"database"`
	API         APIConfig         `mapstructure:"api"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type OpenWeatherConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	RPS      float64       `mapstructure:"rps"`
	Burst    int           `mapstructure:"burst"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type IPInfoConfig struct {
	Token string `mapstructure:"token"`
}

// LocationConfig is the fallback location used when IP lookup fails
type LocationConfig struct {
	City       string  `mapstructure:"city"`
	Region     string  `mapstructure:"region"`
	RegionCode string  `mapstructure:"region_code"`
	Country    string  `mapstructure:"country"`
	Timezone   string  `mapstructure:"timezone"`
	Latitude   float64 `mapstructure:"latitude"`
	Longitude  float64 `mapstructure:"longitude"`
}

type MapConfig struct {
	Zoom       int     `mapstructure:"zoom"`
	MaxZoom    int     `mapstructure:"max_zoom"`
	Mode       string  `mapstructure:"mode"`
	Span       float64 `mapstructure:"span"` // degrees around the location shown in the TUI
	TileURL    string  `mapstructure:"tile_url"`
	OverlayURL string  `mapstructure:"overlay_url"`
}

type RefreshConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Path       string `mapstructure:"path"`
	RegionsURL string `mapstructure:"regions_url"`
}

type APIConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Location returns the configured fallback as a models.Location
func (l LocationConfig) Location() models.Location {
	return models.Location{
		City:       l.City,
		Region:     l.Region,
		RegionCode: l.RegionCode,
		Country:    l.Country,
		TimezoneID: l.Timezone,
		Latitude:   l.Latitude,
		Longitude:  l.Longitude,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "weather-terminal")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "data/weather-terminal.log")

	v.SetDefault("openweather.api_key", "")
	v.SetDefault("openweather.base_url", "https://api.openweathermap.org")
	v.SetDefault("openweather.rps", 1.0)
	v.SetDefault("openweather.burst", 5)
	v.SetDefault("openweather.cache_ttl", 5*time.Minute)
	v.SetDefault("openweather.timeout", 30*time.Second)

	v.SetDefault("ipinfo.token", "")

	v.SetDefault("location.city", "Dayton")
	v.SetDefault("location.region", "Ohio")
	v.SetDefault("location.region_code", "OH")
	v.SetDefault("location.country", "US")
	v.SetDefault("location.timezone", "America/New_York")
	v.SetDefault("location.latitude", 39.7589)
	v.SetDefault("location.longitude", -84.1916)

	v.SetDefault("map.zoom", 11)
	v.SetDefault("map.max_zoom", 18)
	v.SetDefault("map.mode", tiles.DefaultMode)
	v.SetDefault("map.span", 0.25)
	v.SetDefault("map.tile_url", tiles.DefaultBaseURL)
	v.SetDefault("map.overlay_url", tiles.DefaultOverlayURL)

	v.SetDefault("refresh.timeout", 20*time.Second)

	v.SetDefault("database.path", "data/weather-terminal.db")
	v.SetDefault("database.regions_url", "https://raw.githubusercontent.com/jasonong/List-of-US-States/master/states.csv")

	v.SetDefault("api.addr", "")
	v.SetDefault("api.shutdown_timeout", 5*time.Second)
}

// Load reads configuration from path (or config.yaml in the usual places),
// a .env file and the environment, in increasing precedence.
func Load(path string) (*Config, error) {
	// A missing .env is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/weather-terminal")
		}
	}

	v.SetEnvPrefix("WEATHER_TERMINAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if apiKey := os.Getenv("OWM_API_KEY"); apiKey != "" {
		v.Set("openweather.api_key", apiKey)
	}

	if token := os.Getenv("IPINFO_TOKEN"); token != "" {
		v.Set("ipinfo.token", token)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the dashboard cannot run without
func (c *Config) Validate() error {
	if c.OpenWeather.APIKey == "" {
		return fmt.Errorf("OpenWeather API key is required (set OWM_API_KEY)")
	}

	if c.OpenWeather.RPS <= 0 {
		return fmt.Errorf("openweather.rps must be positive")
	}

	if c.OpenWeather.Burst < 1 {
		return fmt.Errorf("openweather.burst must be at least 1")
	}

	if c.Map.MaxZoom < 0 || c.Map.MaxZoom > 22 {
		return fmt.Errorf("map.max_zoom must be between 0 and 22")
	}

	if c.Map.Zoom < 0 || c.Map.Zoom > c.Map.MaxZoom {
		return fmt.Errorf("map.zoom must be between 0 and map.max_zoom")
	}

	if !tiles.ValidMode(c.Map.Mode) {
		return fmt.Errorf("unknown map.mode %q", c.Map.Mode)
	}

	if c.Map.Span <= 0 {
		return fmt.Errorf("map.span must be positive")
	}

	if c.Location.Latitude < -90 || c.Location.Latitude > 90 ||
		c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return fmt.Errorf("default location coordinates out of range")
	}

	if c.Refresh.Timeout <= 0 {
		return fmt.Errorf("refresh.timeout must be positive")
	}

	return nil
}
