package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/resort-picker/internal/api/http"
	"github.com/i474232898/resort-picker/internal/config"
	"github.com/i474232898/resort-picker/internal/recommend"
	"github.com/i474232898/resort-picker/internal/resort"
	"github.com/i474232898/resort-picker/internal/scheduler"
	"github.com/i474232898/resort-picker/internal/snow"
	"github.com/i474232898/resort-picker/internal/store"
	"github.com/i474232898/resort-picker/internal/summary"
	"github.com/i474232898/resort-picker/internal/transport"
	"github.com/i474232898/resort-picker/internal/weather"
	"github.com/i474232898/resort-picker/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	catalog, err := resort.LoadFile(cfg.ResortsFile)
	if err != nil {
		log.Fatalf("failed to load resorts: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	cache := store.NewCache()

	var (
		weatherOpts   = []weather.Option{weather.WithConcurrency(cfg.WeatherConcurrency)}
		snowOpts      = []snow.Option{snow.WithConcurrency(cfg.SnowConcurrency)}
		transportOpts = []transport.Option{transport.WithConcurrency(cfg.TransportConcurrency)}
	)
	if cfg.CacheEnabled {
		weatherOpts = append(weatherOpts, weather.WithCache(cache, cfg.WeatherCacheTTL))
		snowOpts = append(snowOpts, snow.WithCache(cache, cfg.SnowCacheTTL))
		transportOpts = append(transportOpts, transport.WithCache(cache, cfg.TransportCacheTTL))
	}

	// Weather providers in fallback order. Open-Meteo needs no key.
	var provs []weather.Provider
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}
	provs = append(provs, providers.NewOpenMeteoProvider(httpClient))

	weatherSvc := weather.NewService(provs, weatherOpts...)
	snowSvc := snow.NewService([]snow.Source{
		snow.NewSnowForecastScraper(httpClient),
		snow.NewOpenMeteoSource(httpClient),
	}, snowOpts...)
	transportSvc := transport.NewService(transport.NewOpenDataClient(httpClient), transportOpts...)

	orchestratorOpts := []recommend.Option{recommend.WithDefaultOrigin(cfg.StartLocation)}
	sum, err := summary.NewAzure(cfg.Summary, &http.Client{Timeout: 60 * time.Second})
	if err != nil {
		log.Printf("WARN: AI summaries disabled: %v", err)
	} else {
		orchestratorOpts = append(orchestratorOpts, recommend.WithSummarizer(sum))
	}

	orchestrator := recommend.New(catalog, weatherSvc, snowSvc, transportSvc, orchestratorOpts...)

	// Cache maintenance.
	var schedOpts []scheduler.Option
	if cfg.WarmupInterval > 0 {
		schedOpts = append(schedOpts, scheduler.WithWarmup(orchestrator, cfg.WarmupInterval))
	}
	var cleaner scheduler.Cleaner
	if cfg.CacheEnabled {
		cleaner = cache
	}
	sched := scheduler.New(cleaner, cfg.CacheCleanupInterval, schedOpts...)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "resort-picker",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Streamed recommendations can take minutes.
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORSOrigins, ","),
		AllowCredentials: true,
	}))

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Resorts:           catalog,
		Recommender:       orchestrator,
		Weather:           weatherSvc,
		Transport:         transportSvc,
		SummaryConfigured: sum != nil,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s with %d resorts", cfg.Port, catalog.Len())

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
