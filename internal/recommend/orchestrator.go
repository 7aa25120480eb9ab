package recommend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/i474232898/resort-picker/internal/progress"
	"github.com/i474232898/resort-picker/internal/resort"
	"github.com/i474232898/resort-picker/internal/scoring"
	"github.com/i474232898/resort-picker/internal/snow"
	"github.com/i474232898/resort-picker/internal/transport"
	"github.com/i474232898/resort-picker/internal/weather"
)

var (
	ErrResortNotFound = errors.New("resort not found")
	ErrInvalidDate    = errors.New("invalid date format, use YYYY-MM-DD")
)

// DefaultOrigin is used when a request names no start location.
const DefaultOrigin = "Geneva"

// Orchestrator ranks resorts by combining weather, snow and transport data.
type Orchestrator struct {
	resorts    ResortSource
	weather    WeatherSource
	snow       SnowSource
	transport  TransportSource
	summarizer Summarizer
	engine     *scoring.Engine
	origin     string
	now        func() time.Time
}

type Option func(*Orchestrator)

// WithSummarizer sets the narrative writer. Without one the templated summary is used.
func WithSummarizer(s Summarizer) Option {
	return func(o *Orchestrator) {
		o.summarizer = s
	}
}

func WithDefaultOrigin(origin string) Option {
	return func(o *Orchestrator) {
		if origin != "" {
			o.origin = origin
		}
	}
}

func WithEngine(e *scoring.Engine) Option {
	return func(o *Orchestrator) {
		o.engine = e
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func New(resorts ResortSource, w WeatherSource, s SnowSource, t TransportSource, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resorts:   resorts,
		weather:   w,
		snow:      s,
		transport: t,
		engine:    scoring.NewEngine(scoring.DefaultWeights()),
		origin:    DefaultOrigin,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Origin is the default start location.
func (o *Orchestrator) Origin() string {
	return o.origin
}

// UpcomingSaturday is the default target date relative to the orchestrator clock.
func (o *Orchestrator) UpcomingSaturday() time.Time {
	return UpcomingSaturday(o.now())
}

type dataset struct {
	weather   map[string]*weather.Forecast
	snow      map[string]*snow.Conditions
	transport map[string]*transport.Journey
}

// Generate fetches data for every resort concurrently, scores and ranks them.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req = o.normalize(req)
	log.Printf("INFO: generating recommendations from %s for %s", req.Origin, req.Date.Format(weather.DateLayout))

	resorts := o.resorts.All()

	var data dataset
	var g errgroup.Group
	g.Go(func() error {
		data.weather = o.weather.GetForecastsBatch(ctx, resorts, req.Date, nil)
		return nil
	})
	g.Go(func() error {
		data.snow = o.snow.GetConditionsBatch(ctx, resorts, nil)
		return nil
	})
	g.Go(func() error {
		data.transport = o.transport.GetJourneysBatch(ctx, req.Origin, resorts, req.Date, nil)
		return nil
	})
	_ = g.Wait()
	logFetched(data)

	top := o.rank(resorts, data, req.Count)
	weekend := WeekendLabel(req.Date)

	return &Response{
		Recommendations: top,
		AISummary:       o.summarize(ctx, top, weekend, req.Origin),
		GeneratedAt:     o.now(),
		TargetWeekend:   weekend,
	}, nil
}

// GenerateWithProgress behaves like Generate but reports each stage to p.
// The three sources are fetched one after the other so stages stay linear.
func (o *Orchestrator) GenerateWithProgress(ctx context.Context, req Request, p progress.Reporter) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == nil {
		p = progress.Nop{}
	}
	req = o.normalize(req)
	log.Printf("INFO: generating recommendations with progress from %s for %s", req.Origin, req.Date.Format(weather.DateLayout))

	p.SetStage(progress.StageLoadingResorts, "Loading resort data...", 0)
	resorts := o.resorts.All()
	total := len(resorts)

	var data dataset

	p.SetStage(progress.StageFetchingWeather, progress.StartMessage(progress.StageFetchingWeather, total), total)
	data.weather = o.weather.GetForecastsBatch(ctx, resorts, req.Date, p.Increment)

	p.SetStage(progress.StageScrapingSnow, progress.StartMessage(progress.StageScrapingSnow, total), total)
	data.snow = o.snow.GetConditionsBatch(ctx, resorts, p.Increment)

	p.SetStage(progress.StageFetchingTransport, progress.StartMessage(progress.StageFetchingTransport, total), total)
	data.transport = o.transport.GetJourneysBatch(ctx, req.Origin, resorts, req.Date, p.Increment)
	logFetched(data)

	p.SetStage(progress.StageScoring, "Scoring resorts...", 0)
	top := o.rank(resorts, data, req.Count)
	weekend := WeekendLabel(req.Date)

	p.SetStage(progress.StageGeneratingAI, "Generating AI summary...", 0)
	summary := o.summarize(ctx, top, weekend, req.Origin)

	p.Complete()

	return &Response{
		Recommendations: top,
		AISummary:       summary,
		GeneratedAt:     o.now(),
		TargetWeekend:   weekend,
	}, nil
}

// Details scores a single resort. Highlights and concerns are not truncated.
func (o *Orchestrator) Details(ctx context.Context, resortID, origin string, date time.Time) (*Recommendation, error) {
	r, err := o.resorts.ByID(resortID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrResortNotFound, resortID)
	}
	req := o.normalize(Request{Origin: origin, Date: date})

	f := o.weather.GetForecast(ctx, r.Coordinates.Latitude, r.Coordinates.Longitude, req.Date)
	c := o.snow.GetConditions(ctx, r)
	j := o.transport.GetResortJourney(ctx, req.Origin, r, req.Date)

	rec := o.build(r, f, c, j, false)
	return &rec, nil
}

// Explain returns a narrative for one resort, falling back to its reasoning.
func (o *Orchestrator) Explain(ctx context.Context, resortID string, date time.Time) (string, error) {
	rec, err := o.Details(ctx, resortID, "", date)
	if err != nil {
		return "", err
	}

	if o.summarizer != nil {
		text, err := o.summarizer.Explain(ctx, *rec)
		if err == nil && text != "" {
			return text, nil
		}
		log.Printf("WARN: explanation for %s unavailable: %v", resortID, err)
	}

	if rec.Reasoning != "" {
		return rec.Reasoning, nil
	}
	return "Score based on weather, snow, and transport conditions.", nil
}

func (o *Orchestrator) normalize(req Request) Request {
	if req.Origin == "" {
		req.Origin = o.origin
	}
	if req.Date.IsZero() {
		req.Date = o.UpcomingSaturday()
	}
	if req.Count <= 0 {
		req.Count = DefaultCount
	}
	return req
}

// rank scores every resort, sorts by total (stable for ties) and keeps the top count.
func (o *Orchestrator) rank(resorts []resort.Resort, data dataset, count int) []Recommendation {
	recs := make([]Recommendation, 0, len(resorts))
	for _, r := range resorts {
		recs = append(recs, o.build(r, data.weather[r.ID], data.snow[r.ID], data.transport[r.ID], true))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	if len(recs) > count {
		recs = recs[:count]
	}
	return recs
}

func (o *Orchestrator) build(r resort.Resort, f *weather.Forecast, c *snow.Conditions, j *transport.Journey, truncate bool) Recommendation {
	b := o.engine.Score(f, c, j, &r)

	rec := Recommendation{
		Resort:          r,
		Score:           b.Total,
		WeatherScore:    b.Weather,
		SnowScore:       b.Snow,
		TransportScore:  b.Transport,
		SizeScore:       b.Size,
		WeatherForecast: f,
		SnowConditions:  c,
		Journey:         j,
		Highlights:      nonNil(b.Highlights),
		Concerns:        nonNil(b.Concerns),
		Reasoning:       Reasoning(r.Name, b),
	}
	if truncate {
		rec.Highlights = limit(rec.Highlights, MaxListed)
		rec.Concerns = limit(rec.Concerns, MaxListed)
	}
	return rec
}

func (o *Orchestrator) summarize(ctx context.Context, top []Recommendation, weekend, origin string) string {
	if o.summarizer != nil {
		text, err := o.summarizer.Summarize(ctx, top, weekend)
		if err == nil {
			return text
		}
		log.Printf("ERROR: generating summary: %v", err)
	}
	return FallbackSummary(top, origin)
}

func logFetched(d dataset) {
	log.Printf("INFO: data fetched - weather: %d, snow: %d, transport: %d",
		present(d.weather), present(d.snow), present(d.transport))
}

func present[V any](m map[string]*V) int {
	n := 0
	for _, v := range m {
		if v != nil {
			n++
		}
	}
	return n
}

func limit(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
