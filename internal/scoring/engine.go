package scoring

import (
	"github.com/i474232898/resort-picker/internal/resort"
	"github.com/i474232898/resort-picker/internal/snow"
	"github.com/i474232898/resort-picker/internal/transport"
	"github.com/i474232898/resort-picker/internal/weather"
)

// Breakdown is the composite score of a resort with every sub-score.
// Highlights and concerns are in weather, snow, transport, size order and untruncated.
type Breakdown struct {
	Total      float64
	Weather    float64
	Snow       float64
	Transport  float64
	Size       float64
	Highlights []string
	Concerns   []string
}

// Engine combines sub-scores with fixed weights. It holds no mutable state.
type Engine struct {
	weights Weights
}

func NewEngine(w Weights) *Engine {
	return &Engine{weights: w}
}

// Total is the weighted sum of the sub-scores rounded to one decimal.
func (e *Engine) Total(weatherScore, snowScore, transportScore, sizeScore float64) float64 {
	return Round1(weatherScore*e.weights.Weather +
		snowScore*e.weights.Snow +
		transportScore*e.weights.Transport +
		sizeScore*e.weights.Size)
}

// Score runs every scorer over whatever data is available; any input may be nil.
func (e *Engine) Score(f *weather.Forecast, c *snow.Conditions, j *transport.Journey, r *resort.Resort) Breakdown {
	parts := []Result{Weather(f), Snow(c), Transport(j), Size(r)}

	b := Breakdown{
		Weather:   parts[0].Score,
		Snow:      parts[1].Score,
		Transport: parts[2].Score,
		Size:      parts[3].Score,
	}
	b.Total = e.Total(b.Weather, b.Snow, b.Transport, b.Size)

	for _, p := range parts {
		b.Highlights = append(b.Highlights, p.Highlights...)
		b.Concerns = append(b.Concerns, p.Concerns...)
	}
	return b
}
