package weather

import (
	"math"
	"time"
)

var compass = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// AggregateSlots combines the slots of a single day into one Forecast.
// Temperatures become min/max, rain and snow are summed (snow mm -> cm),
// wind and cloud cover are averaged and the condition is chosen by majority
// (first seen wins a tie). Returns nil when there are no slots.
func AggregateSlots(date time.Time, provider string, slots []Slot) *Forecast {
	if len(slots) == 0 {
		return nil
	}

	var (
		minTemp   = math.Inf(1)
		maxTemp   = math.Inf(-1)
		sumRain   float64
		sumSnow   float64
		sumWind   float64
		sumClouds float64
		icon      string
	)

	conditionCounts := make(map[string]int)
	var conditionOrder []string

	for _, s := range slots {
		minTemp = math.Min(minTemp, s.TemperatureC)
		maxTemp = math.Max(maxTemp, s.TemperatureC)
		sumRain += s.RainMM
		sumSnow += s.SnowMM
		sumWind += s.WindSpeedMS
		sumClouds += s.CloudPct

		if s.Condition != "" {
			if _, seen := conditionCounts[s.Condition]; !seen {
				conditionOrder = append(conditionOrder, s.Condition)
			}
			conditionCounts[s.Condition]++
			if icon == "" {
				icon = s.Icon
			}
		}
	}

	n := float64(len(slots))

	// Pick majority condition.
	best := "Unknown"
	bestCount := 0
	for _, cond := range conditionOrder {
		if conditionCounts[cond] > bestCount {
			bestCount = conditionCounts[cond]
			best = cond
		}
	}

	clouds := int(sumClouds / n)
	f := &Forecast{
		Date:            date.Format(DateLayout),
		TemperatureMin:  round1(minTemp),
		TemperatureMax:  round1(maxTemp),
		PrecipitationMM: round1(sumRain),
		WindSpeed:       round1(sumWind / n * 3.6),
		WindDirection:   DegreesToDirection(slots[0].WindDeg),
		CloudCover:      clouds,
		Visibility:      VisibilityFromClouds(clouds),
		Conditions:      best,
		Icon:            icon,
		Provider:        provider,
	}

	if snowCM := sumSnow / 10; snowCM > 0 {
		v := round1(snowCM)
		f.SnowfallCM = &v
	}

	return f
}

// DegreesToDirection converts a wind bearing to an 8-point compass direction.
func DegreesToDirection(deg float64) string {
	idx := int(math.Round(deg/45)) % 8
	if idx < 0 {
		idx += 8
	}
	return compass[idx]
}

// VisibilityFromClouds describes visibility from cloud cover percent.
func VisibilityFromClouds(cloudPct int) string {
	switch {
	case cloudPct < 30:
		return "Good"
	case cloudPct < 70:
		return "Moderate"
	default:
		return "Poor"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
