package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/i474232898/resort-picker/internal/common"
	"github.com/i474232898/resort-picker/internal/summary"
)

type AppConfig struct {
	Port          string
	StartLocation string
	ResortsFile   string
	CORSOrigins   []string

	OpenWeatherAPIKey string
	WeatherAPIKey     string
	Summary           summary.Config

	CacheEnabled         bool
	WeatherCacheTTL      time.Duration
	SnowCacheTTL         time.Duration
	TransportCacheTTL    time.Duration
	CacheCleanupInterval time.Duration

	// WarmupInterval of 0 disables periodic cache warm-up.
	WarmupInterval time.Duration

	HTTPTimeout time.Duration

	// Batch fan-out caps; 0 means unbounded.
	WeatherConcurrency   int
	SnowConcurrency      int
	TransportConcurrency int
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("START_LOCATION", "Geneva")
	v.SetDefault("RESORTS_FILE", "data/resorts.json")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("OPENWEATHER_API_KEY", "")
	v.SetDefault("WEATHERAPI_API_KEY", "")
	v.SetDefault("AZURE_OPENAI_ENDPOINT", "")
	v.SetDefault("AZURE_OPENAI_API_KEY", "")
	v.SetDefault("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-4.1-mini")
	v.SetDefault("AZURE_OPENAI_API_VERSION", "2024-05-01-preview")
	v.SetDefault("CACHE_ENABLED", "true")
	v.SetDefault("WEATHER_CACHE_TTL", "6h")
	v.SetDefault("SNOW_CACHE_TTL", "12h")
	v.SetDefault("TRANSPORT_CACHE_TTL", "24h")
	v.SetDefault("CACHE_CLEANUP_INTERVAL", "30m")
	v.SetDefault("WARMUP_INTERVAL", "0")
	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("WEATHER_CONCURRENCY", "0")
	v.SetDefault("SNOW_CONCURRENCY", "5")
	v.SetDefault("TRANSPORT_CONCURRENCY", "10")
}

// Load reads configuration from the environment (and .env when present) with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	return FromViper(v)
}

// FromViper builds the config from an already populated viper instance.
func FromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		Port:              v.GetString("PORT"),
		StartLocation:     v.GetString("START_LOCATION"),
		ResortsFile:       v.GetString("RESORTS_FILE"),
		CORSOrigins:       common.SplitList(v.GetString("CORS_ORIGINS")),
		OpenWeatherAPIKey: v.GetString("OPENWEATHER_API_KEY"),
		WeatherAPIKey:     v.GetString("WEATHERAPI_API_KEY"),
		Summary: summary.Config{
			Endpoint:   v.GetString("AZURE_OPENAI_ENDPOINT"),
			APIKey:     v.GetString("AZURE_OPENAI_API_KEY"),
			Deployment: v.GetString("AZURE_OPENAI_DEPLOYMENT_NAME"),
			APIVersion: v.GetString("AZURE_OPENAI_API_VERSION"),
		},
	}
	cfg.Summary.Origin = cfg.StartLocation

	var err error
	if cfg.CacheEnabled, err = cast.ToBoolE(v.Get("CACHE_ENABLED")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_ENABLED: %w", err)
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"WEATHER_CACHE_TTL", &cfg.WeatherCacheTTL},
		{"SNOW_CACHE_TTL", &cfg.SnowCacheTTL},
		{"TRANSPORT_CACHE_TTL", &cfg.TransportCacheTTL},
		{"CACHE_CLEANUP_INTERVAL", &cfg.CacheCleanupInterval},
		{"WARMUP_INTERVAL", &cfg.WarmupInterval},
		{"HTTP_TIMEOUT", &cfg.HTTPTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = cast.ToDurationE(v.Get(d.key)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		if *d.dst < 0 {
			return nil, fmt.Errorf("invalid %s: must not be negative", d.key)
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"WEATHER_CONCURRENCY", &cfg.WeatherConcurrency},
		{"SNOW_CONCURRENCY", &cfg.SnowConcurrency},
		{"TRANSPORT_CONCURRENCY", &cfg.TransportConcurrency},
	}
	for _, n := range ints {
		if *n.dst, err = cast.ToIntE(v.Get(n.key)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", n.key, err)
		}
		if *n.dst < 0 {
			return nil, fmt.Errorf("invalid %s: must not be negative", n.key)
		}
	}

	if _, err := cast.ToIntE(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	return cfg, nil
}
