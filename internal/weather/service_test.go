package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/resort-picker/internal/resort"
	"github.com/i474232898/resort-picker/internal/store"
)

type stubProvider struct {
	name  string
	mu    sync.Mutex
	calls int
	fn    func(lat, lon float64) (*Forecast, error)
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) FetchForecast(_ context.Context, lat, lon float64, _ time.Time) (*Forecast, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.fn(lat, lon)
}

var saturday = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

func TestFetchFallsBackToNextProvider(t *testing.T) {
	failing := &stubProvider{name: "first", fn: func(float64, float64) (*Forecast, error) {
		return nil, errors.New("api key missing")
	}}
	working := &stubProvider{name: "second", fn: func(float64, float64) (*Forecast, error) {
		return &Forecast{Conditions: "clear sky", Provider: "second"}, nil
	}}

	svc := NewService([]Provider{failing, working})
	f := svc.GetForecast(context.Background(), 46.1, 7.9, saturday)
	require.NotNil(t, f)
	assert.Equal(t, "second", f.Provider)
}

func TestFetchAllProvidersFail(t *testing.T) {
	failing := &stubProvider{name: "only", fn: func(float64, float64) (*Forecast, error) {
		return nil, errors.New("boom")
	}}

	svc := NewService([]Provider{failing})
	_, err := svc.Fetch(context.Background(), 46.1, 7.9, saturday)
	assert.True(t, errors.Is(err, ErrNoForecast))
	assert.Nil(t, svc.GetForecast(context.Background(), 46.1, 7.9, saturday))
}

func TestFetchWithoutProviders(t *testing.T) {
	svc := NewService(nil)
	assert.False(t, svc.Configured())
	assert.Nil(t, svc.GetForecast(context.Background(), 46.1, 7.9, saturday))
}

func TestFetchUsesCache(t *testing.T) {
	p := &stubProvider{name: "p", fn: func(float64, float64) (*Forecast, error) {
		return &Forecast{Conditions: "snow"}, nil
	}}
	svc := NewService([]Provider{p}, WithCache(store.NewCache(), time.Hour))

	first := svc.GetForecast(context.Background(), 46.1, 7.9, saturday)
	second := svc.GetForecast(context.Background(), 46.1, 7.9, saturday)
	assert.Same(t, first, second)
	assert.Equal(t, 1, p.calls)

	svc.GetForecast(context.Background(), 46.1, 7.9, saturday.AddDate(0, 0, 1))
	assert.Equal(t, 2, p.calls, "a different date is a different cache key")
}

func TestFetchDoesNotCacheFailures(t *testing.T) {
	p := &stubProvider{name: "p", fn: func(float64, float64) (*Forecast, error) {
		return nil, errors.New("down")
	}}
	c := store.NewCache()
	svc := NewService([]Provider{p}, WithCache(c, time.Hour))

	svc.GetForecast(context.Background(), 46.1, 7.9, saturday)
	svc.GetForecast(context.Background(), 46.1, 7.9, saturday)
	assert.Equal(t, 2, p.calls)
	assert.Equal(t, 0, c.Len())
}

func TestGetForecastsBatchIsolatesFailures(t *testing.T) {
	resorts := make([]resort.Resort, 0, 5)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		resorts = append(resorts, resort.Resort{
			ID:          id,
			Coordinates: resort.Coordinates{Latitude: float64(i), Longitude: 7},
		})
	}

	p := &stubProvider{name: "p", fn: func(lat, _ float64) (*Forecast, error) {
		if lat == 2 {
			return nil, errors.New("timeout")
		}
		return &Forecast{Conditions: "snow"}, nil
	}}
	svc := NewService([]Provider{p})

	var (
		mu       sync.Mutex
		progress int
	)
	out := svc.GetForecastsBatch(context.Background(), resorts, saturday, func(current, total int) {
		mu.Lock()
		progress++
		mu.Unlock()
		assert.Equal(t, 5, total)
	})

	require.Len(t, out, 5)
	assert.Nil(t, out["c"])
	for _, id := range []string{"a", "b", "d", "e"} {
		assert.NotNil(t, out[id], id)
	}
	assert.Equal(t, 5, progress)
}
