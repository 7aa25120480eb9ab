package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/i474232898/resort-picker/internal/fetch"
	"github.com/i474232898/resort-picker/internal/progress"
	"github.com/i474232898/resort-picker/internal/resort"
	"github.com/i474232898/resort-picker/internal/scoring"
	"github.com/i474232898/resort-picker/internal/snow"
	"github.com/i474232898/resort-picker/internal/transport"
	"github.com/i474232898/resort-picker/internal/weather"
)

func ip(v int) *int         { return &v }
func fp(v float64) *float64 { return &v }

type fakeResorts []resort.Resort

func (f fakeResorts) All() []resort.Resort { return append([]resort.Resort(nil), f...) }

func (f fakeResorts) ByID(id string) (resort.Resort, error) {
	for _, r := range f {
		if r.ID == id {
			return r, nil
		}
	}
	return resort.Resort{}, resort.ErrNotFound
}

type fakeWeather struct {
	byLat map[float64]*weather.Forecast
	dates []time.Time
	mu    sync.Mutex
}

func (f *fakeWeather) GetForecast(_ context.Context, lat, _ float64, date time.Time) *weather.Forecast {
	f.mu.Lock()
	f.dates = append(f.dates, date)
	f.mu.Unlock()
	return f.byLat[lat]
}

func (f *fakeWeather) GetForecastsBatch(ctx context.Context, resorts []resort.Resort, date time.Time, onProgress fetch.ProgressFunc) map[string]*weather.Forecast {
	out := map[string]*weather.Forecast{}
	for i, r := range resorts {
		out[r.ID] = f.GetForecast(ctx, r.Coordinates.Latitude, r.Coordinates.Longitude, date)
		if onProgress != nil {
			onProgress(i+1, len(resorts))
		}
	}
	return out
}

type fakeSnow map[string]*snow.Conditions

func (f fakeSnow) GetConditions(_ context.Context, r resort.Resort) *snow.Conditions { return f[r.ID] }

func (f fakeSnow) GetConditionsBatch(_ context.Context, resorts []resort.Resort, onProgress fetch.ProgressFunc) map[string]*snow.Conditions {
	out := map[string]*snow.Conditions{}
	for i, r := range resorts {
		out[r.ID] = f[r.ID]
		if onProgress != nil {
			onProgress(i+1, len(resorts))
		}
	}
	return out
}

type fakeTransport struct {
	journeys map[string]*transport.Journey
	origins  []string
	mu       sync.Mutex
}

func (f *fakeTransport) GetResortJourney(_ context.Context, origin string, r resort.Resort, _ time.Time) *transport.Journey {
	f.mu.Lock()
	f.origins = append(f.origins, origin)
	f.mu.Unlock()
	return f.journeys[r.ID]
}

func (f *fakeTransport) GetJourneysBatch(ctx context.Context, origin string, resorts []resort.Resort, date time.Time, onProgress fetch.ProgressFunc) map[string]*transport.Journey {
	out := map[string]*transport.Journey{}
	for i, r := range resorts {
		out[r.ID] = f.GetResortJourney(ctx, origin, r, date)
		if onProgress != nil {
			onProgress(i+1, len(resorts))
		}
	}
	return out
}

type fakeSummarizer struct {
	text    string
	err     error
	weekend string
	got     []Recommendation
}

func (f *fakeSummarizer) Summarize(_ context.Context, top []Recommendation, weekend string) (string, error) {
	f.got = top
	f.weekend = weekend
	return f.text, f.err
}

func (f *fakeSummarizer) Explain(_ context.Context, rec Recommendation) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "because " + rec.Resort.Name, nil
}

type recordingReporter struct {
	mu     sync.Mutex
	stages []progress.Stage
	incs   map[progress.Stage]int
}

func (r *recordingReporter) SetStage(stage progress.Stage, _ string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func (r *recordingReporter) Increment(int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incs == nil {
		r.incs = map[progress.Stage]int{}
	}
	r.incs[r.stages[len(r.stages)-1]]++
}

func (r *recordingReporter) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, progress.StageComplete)
}

// wednesday 2026-01-14; the upcoming Saturday is 2026-01-17.
var wednesday = time.Date(2026, 1, 14, 9, 30, 0, 0, time.UTC)

func mkResort(id string, lat float64, km *float64) resort.Resort {
	return resort.Resort{
		ID:               id,
		Name:             "Resort " + id,
		Coordinates:      resort.Coordinates{Latitude: lat, Longitude: 7},
		Access:           resort.AccessInfo{NearestStation: "Station " + id},
		SkiableTerrainKm: km,
	}
}

// fixture builds three resorts scoring 9.0, 6.5 and 6.5 with nothing else known.
func fixture() (fakeResorts, *fakeWeather, fakeSnow, *fakeTransport) {
	resorts := fakeResorts{
		mkResort("low-a", 46.1, fp(120)),
		mkResort("top", 46.2, fp(210)),
		mkResort("low-b", 46.3, fp(120)),
	}
	sn := fakeSnow{
		"top":   {SnowBase: ip(160), NewSnow24h: ip(25), SnowQuality: "Powder"},
		"low-a": {SnowBase: ip(70), SnowQuality: "Packed"},
		"low-b": {SnowBase: ip(70), SnowQuality: "Packed"},
	}
	tr := &fakeTransport{journeys: map[string]*transport.Journey{
		"top":   {DurationMinutes: 95, Changes: 0},
		"low-a": {DurationMinutes: 130, Changes: 2},
		"low-b": {DurationMinutes: 130, Changes: 2},
	}}
	return resorts, &fakeWeather{}, sn, tr
}

func TestGenerate_RanksWithStableTies(t *testing.T) {
	resorts, wx, sn, tr := fixture()
	o := New(resorts, wx, sn, tr, WithClock(func() time.Time { return wednesday }))

	resp, err := o.Generate(context.Background(), Request{Count: 2})
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 2)

	assert.Equal(t, "top", resp.Recommendations[0].Resort.ID)
	assert.Equal(t, 9.0, resp.Recommendations[0].Score)
	assert.Equal(t, "low-a", resp.Recommendations[1].Resort.ID)
	assert.Equal(t, 6.5, resp.Recommendations[1].Score)

	assert.Equal(t, "Jan 17 - Jan 18", resp.TargetWeekend)
	assert.Equal(t, wednesday, resp.GeneratedAt)
	for _, d := range wx.dates {
		assert.Equal(t, time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC), d)
	}
	for _, origin := range tr.origins {
		assert.Equal(t, DefaultOrigin, origin)
	}
}

func TestGenerate_TruncatesListsButDetailsDoNot(t *testing.T) {
	r := mkResort("big", 46.5, fp(250))
	wx := &fakeWeather{byLat: map[float64]*weather.Forecast{
		46.5: {TemperatureMin: -9, TemperatureMax: -5, SnowfallCM: fp(25), CloudCover: 10, WindSpeed: 5, Conditions: "Snow"},
	}}
	sn := fakeSnow{"big": {SnowBase: ip(200), NewSnow24h: ip(30), NewSnow7d: ip(60), SnowQuality: "powder"}}
	tr := &fakeTransport{journeys: map[string]*transport.Journey{"big": {DurationMinutes: 80}}}

	o := New(fakeResorts{r}, wx, sn, tr, WithClock(func() time.Time { return wednesday }))

	resp, err := o.Generate(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 1)
	assert.Len(t, resp.Recommendations[0].Highlights, MaxListed)

	rec, err := o.Details(context.Background(), "big", "", time.Time{})
	require.NoError(t, err)
	assert.Greater(t, len(rec.Highlights), MaxListed)
	assert.Equal(t, resp.Recommendations[0].Score, rec.Score)
	assert.Equal(t, "Resort big looks excellent this weekend. with great weather, excellent snow conditions, easy access.", rec.Reasoning)
}

func TestGenerate_SummarizerFailureFallsBack(t *testing.T) {
	resorts, wx, sn, tr := fixture()
	sum := &fakeSummarizer{err: errors.New("llm down")}
	o := New(resorts, wx, sn, tr,
		WithSummarizer(sum),
		WithDefaultOrigin("Lausanne"),
		WithClock(func() time.Time { return wednesday }),
	)

	resp, err := o.Generate(context.Background(), Request{Count: 3})
	require.NoError(t, err)
	assert.Equal(t, "Jan 17 - Jan 18", sum.weekend)
	assert.Len(t, sum.got, 3)
	assert.Equal(t,
		"Based on current conditions, Resort top looks like the best choice with a score of 9.0/10. Travel time from Lausanne is approximately 1h 35min.",
		resp.AISummary)
}

func TestGenerate_UsesSummarizerText(t *testing.T) {
	resorts, wx, sn, tr := fixture()
	o := New(resorts, wx, sn, tr, WithSummarizer(&fakeSummarizer{text: "Go to top."}))

	resp, err := o.Generate(context.Background(), Request{Origin: "Bern", Date: time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, "Go to top.", resp.AISummary)
	assert.Equal(t, "Feb 07 - Feb 08", resp.TargetWeekend)
	assert.Contains(t, tr.origins, "Bern")
}

func TestGenerate_CanceledContext(t *testing.T) {
	resorts, wx, sn, tr := fixture()
	o := New(resorts, wx, sn, tr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

// rendezvous blocks each arrival until all expected callers are inside.
// A caller that waits longer than the timeout counts as a miss.
type rendezvous struct {
	wg      sync.WaitGroup
	timeout time.Duration
	misses  atomic.Int32
}

func newRendezvous(n int, timeout time.Duration) *rendezvous {
	r := &rendezvous{timeout: timeout}
	r.wg.Add(n)
	return r
}

func (r *rendezvous) arrive() {
	r.wg.Done()
	all := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(all)
	}()
	select {
	case <-all:
	case <-time.After(r.timeout):
		r.misses.Inc()
	}
}

type gatedWeather struct {
	*fakeWeather
	gate *rendezvous
}

func (g gatedWeather) GetForecastsBatch(ctx context.Context, resorts []resort.Resort, date time.Time, onProgress fetch.ProgressFunc) map[string]*weather.Forecast {
	g.gate.arrive()
	return g.fakeWeather.GetForecastsBatch(ctx, resorts, date, onProgress)
}

type gatedSnow struct {
	fakeSnow
	gate *rendezvous
}

func (g gatedSnow) GetConditionsBatch(ctx context.Context, resorts []resort.Resort, onProgress fetch.ProgressFunc) map[string]*snow.Conditions {
	g.gate.arrive()
	return g.fakeSnow.GetConditionsBatch(ctx, resorts, onProgress)
}

type gatedTransport struct {
	*fakeTransport
	gate *rendezvous
}

func (g gatedTransport) GetJourneysBatch(ctx context.Context, origin string, resorts []resort.Resort, date time.Time, onProgress fetch.ProgressFunc) map[string]*transport.Journey {
	g.gate.arrive()
	return g.fakeTransport.GetJourneysBatch(ctx, origin, resorts, date, onProgress)
}

func TestGenerate_FetchesSourcesConcurrently(t *testing.T) {
	resorts, wx, sn, tr := fixture()
	gate := newRendezvous(3, 2*time.Second)
	o := New(resorts,
		gatedWeather{wx, gate},
		gatedSnow{sn, gate},
		gatedTransport{tr, gate},
		WithClock(func() time.Time { return wednesday }),
	)

	resp, err := o.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Zero(t, gate.misses.Load(), "weather, snow and transport batches must overlap")
	require.NotEmpty(t, resp.Recommendations)
	assert.Equal(t, "top", resp.Recommendations[0].Resort.ID)
}

func TestGenerateWithProgress_StageOrder(t *testing.T) {
	resorts, wx, sn, tr := fixture()
	o := New(resorts, wx, sn, tr, WithClock(func() time.Time { return wednesday }))

	rep := &recordingReporter{}
	resp, err := o.GenerateWithProgress(context.Background(), Request{Count: 2}, rep)
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 2)

	assert.Equal(t, []progress.Stage{
		progress.StageLoadingResorts,
		progress.StageFetchingWeather,
		progress.StageScrapingSnow,
		progress.StageFetchingTransport,
		progress.StageScoring,
		progress.StageGeneratingAI,
		progress.StageComplete,
	}, rep.stages)
	assert.Equal(t, map[progress.Stage]int{
		progress.StageFetchingWeather:   3,
		progress.StageScrapingSnow:      3,
		progress.StageFetchingTransport: 3,
	}, rep.incs)
}

func TestDetails_NotFound(t *testing.T) {
	resorts, wx, sn, tr := fixture()
	o := New(resorts, wx, sn, tr)

	_, err := o.Details(context.Background(), "nope", "", time.Time{})
	assert.ErrorIs(t, err, ErrResortNotFound)

	_, err = o.Explain(context.Background(), "nope", time.Time{})
	assert.ErrorIs(t, err, ErrResortNotFound)
}

func TestExplain(t *testing.T) {
	resorts, wx, sn, tr := fixture()

	o := New(resorts, wx, sn, tr, WithSummarizer(&fakeSummarizer{}))
	text, err := o.Explain(context.Background(), "top", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "because Resort top", text)

	o = New(resorts, wx, sn, tr, WithSummarizer(&fakeSummarizer{err: errors.New("boom")}))
	text, err = o.Explain(context.Background(), "top", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Resort top looks excellent this weekend. with excellent snow conditions, easy access.", text)
}

func TestReasoning(t *testing.T) {
	assert.Equal(t, "X is a solid choice.", Reasoning("X", scoring.Breakdown{Total: 6.2, Weather: 5, Snow: 5, Transport: 5}))
	assert.Equal(t, "X may not be ideal this weekend. with challenging weather, limited snow, long travel time.",
		Reasoning("X", scoring.Breakdown{Total: 2, Weather: 3, Snow: 2.5, Transport: 3}))
	assert.Equal(t, "X is an option worth considering. with great weather.",
		Reasoning("X", scoring.Breakdown{Total: 4, Weather: 7, Snow: 5, Transport: 6.9}))
}

func TestFallbackSummary(t *testing.T) {
	assert.Equal(t, "Unable to generate recommendations at this time.", FallbackSummary(nil, "Geneva"))

	top := []Recommendation{{
		Resort:          resort.Resort{Name: "Leysin"},
		Score:           7.3,
		WeatherForecast: &weather.Forecast{Conditions: "Light snow"},
		Journey:         &transport.Journey{DurationMinutes: 130},
	}}
	assert.Equal(t,
		"Based on current conditions, Leysin looks like the best choice with a score of 7.3/10. Weather forecast shows Light snow. Travel time from Geneva is approximately 2h 10min.",
		FallbackSummary(top, ""))
}

func TestDates(t *testing.T) {
	sat := time.Date(2026, 1, 17, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC), UpcomingSaturday(sat))
	assert.Equal(t, time.Date(2026, 1, 24, 0, 0, 0, 0, time.UTC), UpcomingSaturday(sat.AddDate(0, 0, 1)))
	assert.Equal(t, time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC), UpcomingSaturday(wednesday))

	assert.Equal(t, "Jan 17 - Jan 18", WeekendLabel(time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Jan 31 - Feb 01", WeekendLabel(time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)))

	d, err := ParseDate("2026-03-07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("07/03/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
