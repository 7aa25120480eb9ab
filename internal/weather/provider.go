package weather

import (
	"context"
	"time"
)

// Provider abstracts a forecast source (e.g. OpenWeatherMap, Open-Meteo, WeatherAPI).
// It returns an error when it has no forecast for the date.
type Provider interface {
	Name() string
	FetchForecast(ctx context.Context, lat, lon float64, date time.Time) (*Forecast, error)
}

// Cache is the subset of the shared TTL cache the service needs.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}
