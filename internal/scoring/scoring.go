package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/i474232898/resort-picker/internal/resort"
	"github.com/i474232898/resort-picker/internal/snow"
	"github.com/i474232898/resort-picker/internal/transport"
	"github.com/i474232898/resort-picker/internal/weather"
)

// Result is one sub-score in [0, 10] with the factors that moved it.
type Result struct {
	Score      float64
	Highlights []string
	Concerns   []string
}

func (r *Result) highlight(format string, args ...any) {
	r.Highlights = append(r.Highlights, fmt.Sprintf(format, args...))
}

func (r *Result) concern(format string, args ...any) {
	r.Concerns = append(r.Concerns, fmt.Sprintf(format, args...))
}

// Weather scores a daily forecast. Ideal: -12..-3C, fresh snowfall, clear sky, light wind.
func Weather(f *weather.Forecast) Result {
	if f == nil {
		return Result{Score: NeutralWeatherScore, Concerns: []string{"Weather data unavailable"}}
	}

	r := Result{}
	score := 5.0

	avg := f.AverageTemperature()
	switch {
	case avg >= -12 && avg <= -3:
		score += 2.0
		r.highlight("Perfect ski temperature (%.0fC)", avg)
	case (avg >= -15 && avg < -12) || (avg > -3 && avg <= 0):
		score += 1.0
		r.highlight("Good temperature (%.0fC)", avg)
	case avg > 2:
		score -= 2.0
		r.concern("Warm temperatures (%.0fC) - possible slushy snow", avg)
	case avg < -15:
		score -= 1.0
		r.concern("Very cold (%.0fC)", avg)
	}

	snowfall := f.Snowfall()
	switch {
	case snowfall >= 20:
		score += 3.5
		r.highlight("Heavy snowfall expected (%.0fcm)", snowfall)
	case snowfall >= 10:
		score += 2.5
		r.highlight("Good snowfall expected (%.0fcm)", snowfall)
	case snowfall >= 5:
		score += 1.0
		r.highlight("Some fresh snow expected (%.0fcm)", snowfall)
	}

	switch {
	case f.CloudCover < 30 && snowfall >= 5:
		score += 1.5
		r.highlight("Sunny conditions expected")
	case f.CloudCover < 30:
		score += 0.5
		r.highlight("Sunny conditions expected")
		r.concern("Dry conditions - no fresh snow forecast")
	case f.CloudCover < 50:
		score += 0.5
		r.highlight("Partly cloudy")
	case f.CloudCover > 80:
		score -= 1.0
		r.concern("Overcast conditions")
	}

	switch {
	case f.WindSpeed < 20:
		score += 0.5
	case f.WindSpeed > 50:
		score -= 2.0
		r.concern("Strong winds (%.0fkm/h)", f.WindSpeed)
	case f.WindSpeed > 35:
		score -= 1.0
		r.concern("Moderate winds (%.0fkm/h)", f.WindSpeed)
	}

	if f.PrecipitationMM > 0 && snowfall == 0 && avg > 0 {
		score -= 3.0
		r.concern("Rain expected")
	}

	r.Score = clamp(score)
	return r
}

// Snow scores reported snow conditions. Ideal: 150cm+ base, 20cm+ fresh, powder.
func Snow(c *snow.Conditions) Result {
	if c == nil {
		return Result{Score: SnowUnavailablePenalty, Concerns: []string{"Snow data unavailable - conditions unknown"}}
	}

	r := Result{}
	score := 5.0

	if c.SnowBase != nil {
		base := *c.SnowBase
		switch {
		case base >= 150:
			score += 2.5
			r.highlight("Excellent base depth (%dcm)", base)
		case base >= 100:
			score += 1.5
			r.highlight("Good base depth (%dcm)", base)
		case base >= 60:
			score += 0.5
		case base < 40:
			score -= 2.0
			r.concern("Low snow base (%dcm)", base)
		}
	}

	if c.NewSnow24h != nil {
		fresh := *c.NewSnow24h
		switch {
		case fresh >= 20:
			score += 3.0
			r.highlight("Fresh powder! (%dcm in 24h)", fresh)
		case fresh >= 10:
			score += 2.0
			r.highlight("Fresh snow (%dcm in 24h)", fresh)
		case fresh >= 5:
			score += 1.0
		}
	}

	if c.NewSnow7d != nil {
		week := *c.NewSnow7d
		switch {
		case week >= 50:
			score += 1.0
			r.highlight("Great week of snow (%dcm)", week)
		case week >= 20:
			score += 0.5
		}
	}

	switch strings.ToLower(c.SnowQuality) {
	case "powder", "fresh":
		score += 1.5
		r.highlight("Powder conditions")
	case "packed", "groomed":
		score += 0.5
		r.highlight("Well-groomed slopes")
	case "icy", "hard":
		score -= 2.0
		r.concern("Icy conditions reported")
	case "wet", "spring":
		score -= 1.0
		r.concern("Wet/spring snow")
	}

	r.Score = clamp(score)
	return r
}

// Transport scores a journey by duration band, adjusted for the number of changes.
func Transport(j *transport.Journey) Result {
	if j == nil {
		return Result{Score: TransportUnavailableScore, Concerns: []string{"Transport data unavailable"}}
	}

	r := Result{}
	var score float64

	hours := j.Hours()
	switch {
	case hours < 2:
		score = 10.0
		r.highlight("Quick journey (%.1fh)", hours)
	case hours < 2.5:
		score = 8.5
		r.highlight("Good travel time (%.1fh)", hours)
	case hours < 3:
		score = 7.0
		r.highlight("Reasonable travel time (%.1fh)", hours)
	case hours < 3.5:
		score = 5.5
	case hours < 4:
		score = 4.0
		r.concern("Long journey (%.1fh)", hours)
	default:
		score = 2.0
		r.concern("Very long journey (%.1fh)", hours)
	}

	switch {
	case j.Changes == 0:
		score += 0.5
		r.highlight("Direct connection")
	case j.Changes == 2:
		score -= 0.5
	case j.Changes >= 3:
		score -= 1.0
		r.concern("Multiple changes (%d)", j.Changes)
	}

	r.Score = clamp(score)
	return r
}

// Size scores the skiable terrain on a step scale from 2 (<5km) to 10 (200km+).
func Size(res *resort.Resort) Result {
	if res == nil || res.SkiableTerrainKm == nil {
		return Result{Score: NeutralSizeScore, Concerns: []string{"Resort size unknown"}}
	}

	r := Result{}
	km := *res.SkiableTerrainKm

	switch {
	case km >= 200:
		r.Score = 10.0
		r.highlight("Massive ski area (%.0fkm)", km)
	case km >= 150:
		r.Score = 9.0
		r.highlight("Very large ski area (%.0fkm)", km)
	case km >= 100:
		r.Score = 8.0
		r.highlight("Large ski area (%.0fkm)", km)
	case km >= 70:
		r.Score = 7.0
		r.highlight("Good-sized ski area (%.0fkm)", km)
	case km >= 50:
		r.Score = 6.0
	case km >= 30:
		r.Score = 5.0
	case km >= 15:
		r.Score = 4.0
		r.concern("Small ski area (%.0fkm)", km)
	case km >= 5:
		r.Score = 3.0
		r.concern("Very small ski area (%.0fkm)", km)
	default:
		r.Score = 2.0
		r.concern("Tiny ski area (%.0fkm)", km)
	}

	return r
}

func clamp(score float64) float64 {
	return Round1(math.Max(0, math.Min(10, score)))
}

// Round1 rounds to one decimal place, half to even on the exact binary
// value, so 2.25 becomes 2.2 and 2.05 (stored just below) becomes 2.0.
func Round1(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}
