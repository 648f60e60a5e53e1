package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/events"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/state"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/view"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for forecast calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	forecaster := providers.NewOpenMeteoForecaster(httpClient, cfg.ForecastBaseURL)
	geocoder, err := providers.NewGeocoder(cfg.Geocoder())
	if err != nil {
		log.Fatalf("failed to create geocoder: %v", err)
	}
	log.Printf("INFO: using %s geocoder and %s forecaster", geocoder.Name(), forecaster.Name())

	bus := events.NewBus()
	st := state.New(bus, forecaster, cfg.Preferences())

	recent := store.NewRecentCities(cfg.RecentMax, cfg.RecentMaxAge)
	recent.Track(st)

	dashboard := &httpapi.Dashboard{
		Bus:    bus,
		State:  st,
		Panel:  view.NewPanel(st),
		Days:   view.NewDayPicker(st),
		Units:  view.NewUnitsPicker(st),
		Search: view.NewSearch(geocoder, st),
		Recent: recent,
	}

	// Scheduler that periodically refreshes the selected city.
	sched := scheduler.New(st, cfg.RefreshInterval, cfg.HTTPTimeout)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	httpapi.RegisterRoutes(app, dashboard)

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
