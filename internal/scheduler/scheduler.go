package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/resort-picker/internal/recommend"
)

// Cleaner purges expired cache entries and reports how many were removed.
type Cleaner interface {
	Cleanup() int
}

// Warmer generates recommendations so their data lands in the cache.
type Warmer interface {
	Generate(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

const warmupTimeout = 2 * time.Minute

// Scheduler runs periodic cache maintenance.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cache     Cleaner
	cleanup   time.Duration
	warmer    Warmer
	warmup    time.Duration
}

type Option func(*Scheduler)

// WithWarmup refreshes the default recommendations every interval. Zero disables it.
func WithWarmup(w Warmer, interval time.Duration) Option {
	return func(s *Scheduler) {
		s.warmer = w
		s.warmup = interval
	}
}

// New creates a new Scheduler.
func New(cache Cleaner, cleanupInterval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		cache:     cache,
		cleanup:   cleanupInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules the jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	jobs := 0

	if s.cache != nil && s.cleanup > 0 {
		if _, err := s.scheduler.Every(s.cleanup).SingletonMode().Do(s.RunCleanup); err != nil {
			return err
		}
		jobs++
	}

	if s.warmer != nil && s.warmup > 0 {
		_, err := s.scheduler.Every(s.warmup).SingletonMode().Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), warmupTimeout)
			defer cancel()
			s.RunWarmup(ctx)
		})
		if err != nil {
			return err
		}
		jobs++
	}

	if jobs == 0 {
		log.Println("scheduler: nothing to schedule")
		return nil
	}

	s.scheduler.StartAsync()
	return nil
}

// RunCleanup removes expired cache entries once.
func (s *Scheduler) RunCleanup() {
	if n := s.cache.Cleanup(); n > 0 {
		log.Printf("scheduler: removed %d expired cache entries", n)
	}
}

// RunWarmup generates the default recommendations once.
func (s *Scheduler) RunWarmup(ctx context.Context) {
	log.Println("scheduler: running cache warm-up")
	resp, err := s.warmer.Generate(ctx, recommend.Request{})
	if err != nil {
		log.Printf("scheduler: warm-up failed: %v", err)
		return
	}
	log.Printf("scheduler: warm-up completed for %s", resp.TargetWeekend)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
