package recommend

import (
	"context"
	"time"

	"github.com/i474232898/resort-picker/internal/fetch"
	"github.com/i474232898/resort-picker/internal/resort"
	"github.com/i474232898/resort-picker/internal/snow"
	"github.com/i474232898/resort-picker/internal/transport"
	"github.com/i474232898/resort-picker/internal/weather"
)

// MaxListed caps highlights and concerns in ranked results.
const MaxListed = 5

// DefaultCount is the number of recommendations returned when none is requested.
const DefaultCount = 5

// Recommendation binds a resort to its scores and the data they came from.
type Recommendation struct {
	Resort         resort.Resort `json:"resort"`
	Score          float64       `json:"score"`
	WeatherScore   float64       `json:"weather_score"`
	SnowScore      float64       `json:"snow_score"`
	TransportScore float64       `json:"transport_score"`
	SizeScore      float64       `json:"size_score"`

	WeatherForecast *weather.Forecast  `json:"weather_forecast"`
	SnowConditions  *snow.Conditions   `json:"snow_conditions"`
	Journey         *transport.Journey `json:"journey"`

	Highlights []string `json:"highlights"`
	Concerns   []string `json:"concerns"`
	Reasoning  string   `json:"reasoning"`
}

// Response is a ranked recommendation list for one weekend.
type Response struct {
	Recommendations []Recommendation `json:"recommendations"`
	AISummary       string           `json:"ai_summary"`
	GeneratedAt     time.Time        `json:"generated_at"`
	TargetWeekend   string           `json:"target_weekend"`
}

// Request parameters. Zero values select the defaults.
type Request struct {
	Origin string
	Date   time.Time
	Count  int
}

type ResortSource interface {
	All() []resort.Resort
	ByID(id string) (resort.Resort, error)
}

type WeatherSource interface {
	GetForecast(ctx context.Context, lat, lon float64, date time.Time) *weather.Forecast
	GetForecastsBatch(ctx context.Context, resorts []resort.Resort, date time.Time, onProgress fetch.ProgressFunc) map[string]*weather.Forecast
}

type SnowSource interface {
	GetConditions(ctx context.Context, r resort.Resort) *snow.Conditions
	GetConditionsBatch(ctx context.Context, resorts []resort.Resort, onProgress fetch.ProgressFunc) map[string]*snow.Conditions
}

type TransportSource interface {
	GetResortJourney(ctx context.Context, origin string, r resort.Resort, date time.Time) *transport.Journey
	GetJourneysBatch(ctx context.Context, origin string, resorts []resort.Resort, date time.Time, onProgress fetch.ProgressFunc) map[string]*transport.Journey
}

// Summarizer writes narrative text. Errors are recovered by the orchestrator.
type Summarizer interface {
	Summarize(ctx context.Context, top []Recommendation, weekend string) (string, error)
	Explain(ctx context.Context, rec Recommendation) (string, error)
}
