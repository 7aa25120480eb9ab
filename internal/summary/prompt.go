package summary

import (
	"fmt"
	"strings"

	"github.com/i474232898/resort-picker/internal/recommend"
)

const guidelines = `Guidelines:
- Be conversational and enthusiastic but not over the top
- Focus on the top 1-2 recommendations with clear reasoning
- Mention weather conditions and what to expect
- Note travel times and any practical tips
- If conditions aren't great everywhere, be honest but still helpful
- Keep it concise and actionable
- Don't use excessive emojis`

func summaryPrompt(top []recommend.Recommendation, weekend, origin string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a friendly ski trip planning assistant helping someone plan their weekend snowboarding trip from %s.\n\n", origin)
	fmt.Fprintf(&sb, "Based on the following data for Magic Pass resorts this weekend (%s), provide a brief recommendation (2-3 paragraphs) on where to go.\n\n", weekend)
	sb.WriteString(formatRecommendations(top, origin))
	sb.WriteString("\n")
	sb.WriteString(guidelines)
	return sb.String()
}

// formatRecommendations lists at most five resorts with the data behind their scores.
func formatRecommendations(recs []recommend.Recommendation, origin string) string {
	if len(recs) > 5 {
		recs = recs[:5]
	}

	var lines []string
	for i, rec := range recs {
		lines = append(lines,
			fmt.Sprintf("%d. **%s** (Score: %.1f/10)", i+1, rec.Resort.Name, rec.Score),
			fmt.Sprintf("   Region: %s", rec.Resort.Region),
		)

		if wf := rec.WeatherForecast; wf != nil {
			lines = append(lines, fmt.Sprintf("   Weather: %s, %.0f to %.0fC", wf.Conditions, wf.TemperatureMin, wf.TemperatureMax))
			if wf.Snowfall() > 0 {
				lines = append(lines, fmt.Sprintf("   Expected snowfall: %.0fcm", wf.Snowfall()))
			}
			lines = append(lines, fmt.Sprintf("   Visibility: %s, Wind: %.0fkm/h", wf.Visibility, wf.WindSpeed))
		}

		if sc := rec.SnowConditions; sc != nil {
			if sc.SnowBase != nil && *sc.SnowBase > 0 {
				lines = append(lines, fmt.Sprintf("   Snow base: %dcm", *sc.SnowBase))
			}
			if sc.SnowSummit != nil && *sc.SnowSummit > 0 {
				lines = append(lines, fmt.Sprintf("   Snow summit: %dcm", *sc.SnowSummit))
			}
			if sc.NewSnow24h != nil && *sc.NewSnow24h > 0 {
				lines = append(lines, fmt.Sprintf("   Fresh snow (24h): %dcm", *sc.NewSnow24h))
			}
			lines = append(lines, fmt.Sprintf("   Snow quality: %s", sc.SnowQuality))
		}

		if j := rec.Journey; j != nil {
			lines = append(lines, fmt.Sprintf("   Travel from %s: %dh %dmin (%d changes)",
				origin, j.DurationMinutes/60, j.DurationMinutes%60, j.Changes))
		}

		if len(rec.Highlights) > 0 {
			lines = append(lines, "   Highlights: "+strings.Join(rec.Highlights, ", "))
		}
		if len(rec.Concerns) > 0 {
			lines = append(lines, "   Concerns: "+strings.Join(rec.Concerns, ", "))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func explainPrompt(rec recommend.Recommendation, origin string) string {
	return fmt.Sprintf(`Explain briefly why %s scored %.1f/10 for this weekend's snowboarding trip from %s.

Weather score: %.1f/10
Snow score: %.1f/10
Transport score: %.1f/10

Highlights: %s
Concerns: %s

Keep the explanation to 2-3 sentences, focusing on the most important factors.`,
		rec.Resort.Name, rec.Score, origin,
		rec.WeatherScore, rec.SnowScore, rec.TransportScore,
		joinOr(rec.Highlights, "None specific"),
		joinOr(rec.Concerns, "None specific"),
	)
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
