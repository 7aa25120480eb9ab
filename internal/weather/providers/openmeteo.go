package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/resort-picker/internal/fetch"
	"github.com/i474232898/resort-picker/internal/weather"
)

// OpenMeteoProvider implements weather.Provider with the Open-Meteo daily
// forecast. It needs no API key, so it is the fallback when others are unconfigured.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *fetch.Client
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		client:  fetch.NewClient("openmeteo-forecast", client),
	}
}

// WithBaseURL overrides the API endpoint.
func (p *OpenMeteoProvider) WithBaseURL(u string) *OpenMeteoProvider {
	p.baseURL = u
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, lat, lon float64, date time.Time) (*weather.Forecast, error) {
	day := date.Format(weather.DateLayout)

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("daily", "temperature_2m_min,temperature_2m_max,rain_sum,snowfall_sum,wind_speed_10m_max,wind_direction_10m_dominant,cloud_cover_mean,weather_code")
	values.Set("start_date", day)
	values.Set("end_date", day)
	values.Set("timezone", "auto")

	var payload struct {
		Daily struct {
			Time       []string   `json:"time"`
			TempMin    []*float64 `json:"temperature_2m_min"`
			TempMax    []*float64 `json:"temperature_2m_max"`
			Rain       []*float64 `json:"rain_sum"`
			Snowfall   []*float64 `json:"snowfall_sum"`
			WindMax    []*float64 `json:"wind_speed_10m_max"`
			WindDir    []*float64 `json:"wind_direction_10m_dominant"`
			CloudCover []*float64 `json:"cloud_cover_mean"`
			Code       []*int     `json:"weather_code"`
		} `json:"daily"`
	}

	if err := p.client.GetJSON(ctx, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), &payload); err != nil {
		return nil, err
	}

	d := payload.Daily
	idx := -1
	for i, t := range d.Time {
		if t == day {
			idx = i
			break
		}
	}
	if idx < 0 || at(d.TempMin, idx) == nil || at(d.TempMax, idx) == nil {
		return nil, fmt.Errorf("no daily forecast for %s", day)
	}

	clouds := int(value(at(d.CloudCover, idx)))
	f := &weather.Forecast{
		Date:            day,
		TemperatureMin:  *at(d.TempMin, idx),
		TemperatureMax:  *at(d.TempMax, idx),
		PrecipitationMM: value(at(d.Rain, idx)),
		WindSpeed:       value(at(d.WindMax, idx)),
		WindDirection:   weather.DegreesToDirection(value(at(d.WindDir, idx))),
		CloudCover:      clouds,
		Visibility:      weather.VisibilityFromClouds(clouds),
		Conditions:      "unknown",
		Provider:        p.name,
	}
	if code := at(d.Code, idx); code != nil {
		f.Conditions = describeOpenMeteoCode(*code)
	}
	if snow := value(at(d.Snowfall, idx)); snow > 0 {
		f.SnowfallCM = &snow
	}

	return f, nil
}

func at[T any](xs []*T, i int) *T {
	if i < 0 || i >= len(xs) {
		return nil
	}
	return xs[i]
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func describeOpenMeteoCode(code int) string {
	// Mapping based on Open-Meteo WMO weather codes (simplified).
	switch {
	case code == 0:
		return "clear sky"
	case code >= 1 && code <= 3:
		return "partly cloudy"
	case code == 45 || code == 48:
		return "fog"
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return "rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "snow"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown"
	}
}
