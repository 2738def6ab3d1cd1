package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/weather-terminal/internal/api"
	"github.com/ngmaloney/weather-terminal/internal/config"
	"github.com/ngmaloney/weather-terminal/internal/database"
	"github.com/ngmaloney/weather-terminal/internal/geocoding"
	"github.com/ngmaloney/weather-terminal/internal/logger"
	"github.com/ngmaloney/weather-terminal/internal/openweather"
	"github.com/ngmaloney/weather-terminal/internal/refresh"
	"github.com/ngmaloney/weather-terminal/internal/scheduler"
	"github.com/ngmaloney/weather-terminal/internal/tiles"
	"github.com/ngmaloney/weather-terminal/internal/ui"

	// Zone data for hosts without a system zoneinfo database
	_ "time/tzdata"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file (default: config.yaml in ., ./config or ~/.config/weather-terminal)")
	ip := flag.String("ip", "", "IP address to geolocate instead of this machine's")
	location := flag.String("location", "", "Place to show instead of the IP location (city, state or zipcode)")
	serve := flag.String("serve", "", "Address for the JSON API (e.g. :8080), disabled when empty")
	flag.Parse()

	if err := run(*configPath, *ip, *location, *serve); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, ip, location, serve string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serve != "" {
		cfg.API.Addr = serve
	}

	log, closer, err := logger.NewFile(cfg.App.LogLevel, cfg.App.Env, cfg.App.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	log.Infof("Starting %s", cfg.App.Name)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		return err
	}

	provisionCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := geocoding.ProvisionRegions(provisionCtx, db, cfg.Database.RegionsURL, log); err != nil {
		// Region names are shown unabbreviated without the table
		log.Warnf("Region table unavailable: %s", logger.FormatError(err))
	}
	cancel()

	regions := geocoding.NewRegionStore(db)

	weather := openweather.NewClient(cfg.OpenWeather.APIKey,
		openweather.WithBaseURL(cfg.OpenWeather.BaseURL),
		openweather.WithRateLimit(cfg.OpenWeather.RPS, cfg.OpenWeather.Burst),
		openweather.WithCacheTTL(cfg.OpenWeather.CacheTTL),
		openweather.WithTimeout(cfg.OpenWeather.Timeout),
		openweather.WithLogger(log),
	)

	selector := tiles.NewSelector(cfg.OpenWeather.APIKey, cfg.Map.Mode, cfg.Map.MaxZoom)
	if cfg.Map.TileURL != "" {
		selector.BaseURL = cfg.Map.TileURL
	}
	if cfg.Map.OverlayURL != "" {
		selector.OverlayURL = cfg.Map.OverlayURL
	}

	fallback := cfg.Location.Location()
	controller := refresh.NewController(fallback,
		refresh.WithSelector(selector),
		refresh.WithLogger(log),
	)

	model := ui.NewModel(ui.Deps{
		Controller: controller,
		Fetcher:    refresh.NewFetcher(weather, cfg.Refresh.Timeout, log),
		Locator:    geocoding.NewLocator(cfg.IPInfo.Token, fallback, regions, log),
		Searcher:   geocoding.NewSearcher(weather, regions, log),
		Logger:     log,
		IP:         ip,
		Query:      location,
		MapZoom:    cfg.Map.Zoom,
		MapSpan:    cfg.Map.Span,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	cron := scheduler.NewCronScheduler(log)
	if err := cron.Dashboard(
		func(at time.Time) { p.Send(ui.MinuteTickMsg{Time: at}) },
		func(at time.Time) { p.Send(ui.HalfHourTickMsg{Time: at}) },
	); err != nil {
		return err
	}
	cron.Start()
	defer cron.Stop()

	if cfg.API.Addr != "" {
		server := api.NewServer(cfg.API.Addr, cfg.API.ShutdownTimeout, controller, selector, log)
		if err := server.Start(); err != nil {
			return err
		}
		defer func() {
			if err := server.Stop(context.Background()); err != nil {
				log.Errorf("API shutdown: %v", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}

	log.Info("Stopped")
	return nil
}
