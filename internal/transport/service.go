package transport

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/i474232898/resort-picker/internal/fetch"
	"github.com/i474232898/resort-picker/internal/resort"
)

// DefaultConcurrency caps batch fetches against the timetable API.
const DefaultConcurrency = 10

const requestTimeout = 15 * time.Second

// Planner finds a connection between two named places.
type Planner interface {
	Connection(ctx context.Context, from, to string, date time.Time) (*Journey, error)
}

// Cache is the subset of the shared TTL cache the service needs.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

// Service resolves journeys to resorts.
type Service struct {
	planner     Planner
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

// NewService creates a Service.
func NewService(planner Planner, opts ...Option) *Service {
	s := &Service{
		planner:     planner,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Journey returns a cached or freshly planned connection between two places.
func (s *Service) Journey(ctx context.Context, from, to string, date time.Time) (*Journey, error) {
	key := fmt.Sprintf("transport:%s:%s:%s", from, to, date.Format("2006-01-02"))
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if j, ok := v.(*Journey); ok {
				return j, nil
			}
		}
	}

	pctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	j, err := s.planner.Connection(pctx, from, to, date)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, j, s.ttl)
	}
	return j, nil
}

// FetchResortJourney plans a trip to r: first to the resort by name, then to
// its nearest station plus the connecting bus when one is required.
func (s *Service) FetchResortJourney(ctx context.Context, origin string, r resort.Resort, date time.Time) (*Journey, error) {
	j, err := s.Journey(ctx, origin, r.Name, date)
	if err == nil {
		return j, nil
	}
	log.Printf("DEBUG: no direct connection %s -> %s: %v", origin, r.Name, err)

	if r.Access.NearestStation == "" {
		return nil, fmt.Errorf("no transport route found for %s: %w", r.ID, err)
	}

	j, err = s.Journey(ctx, origin, r.Access.NearestStation, date)
	if err != nil {
		return nil, fmt.Errorf("no transport route found for %s: %w", r.ID, err)
	}

	if r.Access.PostbusRequired && r.Access.PostbusDurationMinutes != nil {
		// Cached station journeys are shared; extend a copy.
		j = j.withExtraMinutes(*r.Access.PostbusDurationMinutes)
	}
	return j, nil
}

// GetResortJourney is FetchResortJourney returning nil when no route is found.
func (s *Service) GetResortJourney(ctx context.Context, origin string, r resort.Resort, date time.Time) *Journey {
	j, err := s.FetchResortJourney(ctx, origin, r, date)
	if err != nil {
		log.Printf("WARN: %v", err)
		return nil
	}
	return j
}

// GetJourneysBatch plans journeys to every resort, at most concurrency at a time.
// Failures map to nil.
func (s *Service) GetJourneysBatch(ctx context.Context, origin string, resorts []resort.Resort, date time.Time, onProgress fetch.ProgressFunc) map[string]*Journey {
	b := fetch.Batch[resort.Resort, *Journey]{
		Name:  "transport",
		Limit: s.concurrency,
		Key:   func(r resort.Resort) string { return r.ID },
		Fetch: func(ctx context.Context, r resort.Resort) (*Journey, error) {
			return s.FetchResortJourney(ctx, origin, r, date)
		},
	}
	return b.Run(ctx, resorts, onProgress)
}
