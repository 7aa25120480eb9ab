package snow

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/resort-picker/internal/fetch"
	"github.com/i474232898/resort-picker/internal/resort"
)

// OpenMeteoSource derives snow conditions from Open-Meteo daily snowfall and
// snow depth. It works from coordinates alone, so it covers every resort.
type OpenMeteoSource struct {
	baseURL string
	client  *fetch.Client
	now     func() time.Time
}

func NewOpenMeteoSource(client *http.Client) *OpenMeteoSource {
	return &OpenMeteoSource{
		baseURL: "https://api.open-meteo.com/v1/forecast",
		client:  fetch.NewClient("openmeteo-snow", client),
		now:     time.Now,
	}
}

// WithBaseURL overrides the API endpoint.
func (s *OpenMeteoSource) WithBaseURL(u string) *OpenMeteoSource {
	s.baseURL = u
	return s
}

func (s *OpenMeteoSource) Name() string {
	return "open-meteo"
}

type openMeteoSnowPayload struct {
	Daily struct {
		Snowfall  []*float64 `json:"snowfall_sum"`   // cm
		SnowDepth []*float64 `json:"snow_depth_max"` // m
	} `json:"daily"`
}

func (s *OpenMeteoSource) FetchConditions(ctx context.Context, r resort.Resort) (*Conditions, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", r.Coordinates.Latitude))
	values.Set("longitude", fmt.Sprintf("%f", r.Coordinates.Longitude))
	values.Set("daily", "snowfall_sum,snow_depth_max")
	values.Set("past_days", "7")
	values.Set("forecast_days", "1")
	values.Set("timezone", "auto")
	// Interpolate to the summit for mountain snow.
	if r.ElevationTop > 0 {
		values.Set("elevation", fmt.Sprintf("%d", r.ElevationTop))
	}

	var payload openMeteoSnowPayload
	if err := s.client.GetJSON(ctx, fmt.Sprintf("%s?%s", s.baseURL, values.Encode()), &payload); err != nil {
		return nil, err
	}

	c := parseOpenMeteoSnow(payload)
	if c == nil {
		return nil, fmt.Errorf("open-meteo returned no useful snow data for %s", r.ID)
	}
	c.ResortID = r.ID
	c.DateUpdated = s.now()
	c.Source = s.Name()
	return c, nil
}

func parseOpenMeteoSnow(p openMeteoSnowPayload) *Conditions {
	snowfall := compact(p.Daily.Snowfall)
	depth := compact(p.Daily.SnowDepth)

	var base, new24h, new7d int
	if len(depth) > 0 {
		base = int(math.Round(depth[len(depth)-1] * 100))
	}
	if len(snowfall) > 0 {
		new24h = int(math.Round(snowfall[len(snowfall)-1]))

		week := snowfall
		if len(week) > 7 {
			week = week[len(week)-7:]
		}
		var sum float64
		for _, v := range week {
			sum += v
		}
		new7d = int(math.Round(sum))
	}

	if base <= 0 && new24h <= 0 && new7d <= 0 {
		return nil
	}

	return &Conditions{
		SnowBase:    positive(base),
		NewSnow24h:  positive(new24h),
		NewSnow7d:   positive(new7d),
		SnowQuality: qualityFromSnowfall(base, new24h, new7d),
	}
}

// qualityFromSnowfall guesses a quality label when the source reports none.
func qualityFromSnowfall(base, new24h, new7d int) string {
	switch {
	case new24h >= 15:
		return QualityPowder
	case new24h >= 5, new7d >= 20:
		return QualityFresh
	case base >= 30 && new7d < 5:
		return QualityPacked
	case base > 0:
		return QualityVariable
	default:
		return QualityUnknown
	}
}

func compact(xs []*float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if x != nil {
			out = append(out, *x)
		}
	}
	return out
}
