package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/i474232898/resort-picker/internal/fetch"
	"github.com/i474232898/resort-picker/internal/resort"
)

// ErrNoForecast is returned when no provider produced a forecast.
var ErrNoForecast = errors.New("no forecast available")

const requestTimeout = 10 * time.Second

// Service fetches forecasts from an ordered list of providers, first success wins.
type Service struct {
	providers []Provider
	cache     Cache
	ttl       time.Duration

	// concurrency caps GetForecastsBatch; <= 0 means unbounded.
	concurrency int
}

// Option customises a Service.
type Option func(*Service)

// WithCache enables caching of successful forecasts for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithConcurrency caps in-flight batch fetches.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		s.concurrency = n
	}
}

// NewService creates a new Service.
func NewService(providers []Provider, opts ...Option) *Service {
	s := &Service{providers: providers}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether at least one provider is available.
func (s *Service) Configured() bool {
	return len(s.providers) > 0
}

// GetForecast returns the forecast for the coordinates and date, or nil when unavailable.
func (s *Service) GetForecast(ctx context.Context, lat, lon float64, date time.Time) *Forecast {
	f, err := s.Fetch(ctx, lat, lon, date)
	if err != nil {
		log.Printf("ERROR: weather forecast failed for %.4f,%.4f on %s: %v", lat, lon, date.Format(DateLayout), err)
		return nil
	}
	return f
}

// Fetch is GetForecast with the failure reason exposed.
func (s *Service) Fetch(ctx context.Context, lat, lon float64, date time.Time) (*Forecast, error) {
	key := cacheKey(lat, lon, date)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if f, ok := v.(*Forecast); ok {
				return f, nil
			}
		}
	}

	if len(s.providers) == 0 {
		return nil, fmt.Errorf("no weather providers configured")
	}

	var errs []error
	for _, p := range s.providers {
		pctx, cancel := context.WithTimeout(ctx, requestTimeout)
		f, err := p.FetchForecast(pctx, lat, lon, date)
		cancel()
		if err != nil {
			// Log and continue; the next provider may have data.
			log.Printf("WARN: provider %s forecast failed for %.4f,%.4f: %v", p.Name(), lat, lon, err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if f == nil {
			continue
		}

		if s.cache != nil {
			s.cache.Set(key, f, s.ttl)
		}
		return f, nil
	}

	if len(errs) == 0 {
		return nil, ErrNoForecast
	}
	return nil, fmt.Errorf("%w: %w", ErrNoForecast, errors.Join(errs...))
}

// GetForecastsBatch fetches forecasts for every resort concurrently.
// The result holds one entry per resort id; failures map to nil.
func (s *Service) GetForecastsBatch(ctx context.Context, resorts []resort.Resort, date time.Time, onProgress fetch.ProgressFunc) map[string]*Forecast {
	b := fetch.Batch[resort.Resort, *Forecast]{
		Name:  "weather",
		Limit: s.concurrency,
		Key:   func(r resort.Resort) string { return r.ID },
		Fetch: func(ctx context.Context, r resort.Resort) (*Forecast, error) {
			return s.Fetch(ctx, r.Coordinates.Latitude, r.Coordinates.Longitude, date)
		},
	}
	return b.Run(ctx, resorts, onProgress)
}

func cacheKey(lat, lon float64, date time.Time) string {
	return fmt.Sprintf("weather:%.4f:%.4f:%s", lat, lon, date.Format(DateLayout))
}
