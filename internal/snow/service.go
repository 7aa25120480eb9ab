package snow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/i474232898/resort-picker/internal/fetch"
	"github.com/i474232898/resort-picker/internal/resort"
)

// ErrNoConditions is returned when no source produced conditions.
var ErrNoConditions = errors.New("no snow conditions available")

// DefaultConcurrency caps batch fetches to stay polite with scraped sites.
const DefaultConcurrency = 5

const requestTimeout = 15 * time.Second

// Source is a snow conditions source keyed by resort.
type Source interface {
	Name() string
	FetchConditions(ctx context.Context, r resort.Resort) (*Conditions, error)
}

// Cache is the subset of the shared TTL cache the service needs.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

// Service asks each source in order until one returns conditions.
type Service struct {
	sources     []Source
	cache       Cache
	ttl         time.Duration
	concurrency int
}

// Option customises a Service.
type Option func(*Service)

// WithCache enables caching of successful lookups for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithConcurrency overrides DefaultConcurrency; <= 0 means unbounded.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		s.concurrency = n
	}
}

// NewService creates a Service. Typical order: scraper first, Open-Meteo fallback.
func NewService(sources []Source, opts ...Option) *Service {
	s := &Service{
		sources:     sources,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetConditions returns current conditions for r, or nil when unavailable.
func (s *Service) GetConditions(ctx context.Context, r resort.Resort) *Conditions {
	c, err := s.Fetch(ctx, r)
	if err != nil {
		log.Printf("WARN: snow conditions unavailable for %s: %v", r.ID, err)
		return nil
	}
	return c
}

// Fetch is GetConditions with the failure reason exposed.
func (s *Service) Fetch(ctx context.Context, r resort.Resort) (*Conditions, error) {
	key := "snow:" + r.ID
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if c, ok := v.(*Conditions); ok {
				return c, nil
			}
		}
	}

	var errs []error
	for _, src := range s.sources {
		sctx, cancel := context.WithTimeout(ctx, requestTimeout)
		c, err := src.FetchConditions(sctx, r)
		cancel()
		if errors.Is(err, ErrNoSlug) {
			continue
		}
		if err != nil {
			log.Printf("WARN: %s failed for %s: %v", src.Name(), r.ID, err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if c == nil {
			continue
		}

		log.Printf("DEBUG: got snow data from %s for %s", src.Name(), r.ID)
		if s.cache != nil {
			s.cache.Set(key, c, s.ttl)
		}
		return c, nil
	}

	if len(errs) == 0 {
		return nil, ErrNoConditions
	}
	return nil, fmt.Errorf("%w: %w", ErrNoConditions, errors.Join(errs...))
}

// GetConditionsBatch fetches conditions for every resort, at most
// concurrency at a time. Failures map to nil.
func (s *Service) GetConditionsBatch(ctx context.Context, resorts []resort.Resort, onProgress fetch.ProgressFunc) map[string]*Conditions {
	b := fetch.Batch[resort.Resort, *Conditions]{
		Name:  "snow",
		Limit: s.concurrency,
		Key:   func(r resort.Resort) string { return r.ID },
		Fetch: s.Fetch,
	}
	return b.Run(ctx, resorts, onProgress)
}
