package recommend

import (
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/resort-picker/internal/scoring"
	"github.com/i474232898/resort-picker/internal/weather"
)

// Reasoning builds a one or two sentence explanation of a score.
func Reasoning(name string, b scoring.Breakdown) string {
	var overall string
	switch {
	case b.Total >= 8:
		overall = name + " looks excellent this weekend"
	case b.Total >= 6:
		overall = name + " is a solid choice"
	case b.Total >= 4:
		overall = name + " is an option worth considering"
	default:
		overall = name + " may not be ideal this weekend"
	}

	var factors []string
	switch {
	case b.Weather >= 7:
		factors = append(factors, "great weather")
	case b.Weather < 4:
		factors = append(factors, "challenging weather")
	}
	switch {
	case b.Snow >= 7:
		factors = append(factors, "excellent snow conditions")
	case b.Snow < 4:
		factors = append(factors, "limited snow")
	}
	switch {
	case b.Transport >= 7:
		factors = append(factors, "easy access")
	case b.Transport < 4:
		factors = append(factors, "long travel time")
	}

	if len(factors) == 0 {
		return overall + "."
	}
	return overall + ". with " + strings.Join(factors, ", ") + "."
}

// FallbackSummary is the templated summary used when no narrative is available.
func FallbackSummary(top []Recommendation, origin string) string {
	if len(top) == 0 {
		return "Unable to generate recommendations at this time."
	}
	if origin == "" {
		origin = DefaultOrigin
	}

	best := top[0]
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on current conditions, %s looks like the best choice with a score of %.1f/10.", best.Resort.Name, best.Score)

	if best.WeatherForecast != nil {
		fmt.Fprintf(&sb, " Weather forecast shows %s.", best.WeatherForecast.Conditions)
	}
	if best.Journey != nil {
		fmt.Fprintf(&sb, " Travel time from %s is approximately %dh %dmin.",
			origin, best.Journey.DurationMinutes/60, best.Journey.DurationMinutes%60)
	}
	return sb.String()
}

// UpcomingSaturday returns now's date if it is a Saturday, else the next Saturday.
func UpcomingSaturday(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	ahead := (int(time.Saturday) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, ahead)
}

// WeekendLabel formats the weekend containing date as "Jan 02 - Jan 03".
// A Sunday belongs to the Saturday before it; other days roll forward.
func WeekendLabel(date time.Time) string {
	sat := UpcomingSaturday(date)
	if date.Weekday() == time.Sunday {
		sat = UpcomingSaturday(date).AddDate(0, 0, -7)
	}
	sun := sat.AddDate(0, 0, 1)
	return sat.Format("Jan 02") + " - " + sun.Format("Jan 02")
}

// ParseDate parses a YYYY-MM-DD date. An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(weather.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
