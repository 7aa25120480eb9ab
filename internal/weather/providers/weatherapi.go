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

// WeatherAPIProvider implements weather.Provider for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *fetch.Client
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		client:  fetch.NewClient("weatherapi", client),
	}
}

// WithBaseURL overrides the API endpoint.
func (p *WeatherAPIProvider) WithBaseURL(u string) *WeatherAPIProvider {
	p.baseURL = u
	return p
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, lat, lon float64, date time.Time) (*weather.Forecast, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi api key is not configured")
	}

	day := date.Format(weather.DateLayout)

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location; it accepts "lat,lon".
	values.Set("q", fmt.Sprintf("%f,%f", lat, lon))
	values.Set("dt", day)

	var payload struct {
		Forecast struct {
			ForecastDay []struct {
				Date string `json:"date"`
				Day  struct {
					MinTempC    float64 `json:"mintemp_c"`
					MaxTempC    float64 `json:"maxtemp_c"`
					TotalPrecip float64 `json:"totalprecip_mm"`
					TotalSnowCM float64 `json:"totalsnow_cm"`
					MaxWindKph  float64 `json:"maxwind_kph"`
					Condition   struct {
						Text string `json:"text"`
						Icon string `json:"icon"`
					} `json:"condition"`
				} `json:"day"`
				Hour []struct {
					Cloud      float64 `json:"cloud"`
					WindDegree float64 `json:"wind_degree"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := p.client.GetJSON(ctx, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), &payload); err != nil {
		return nil, err
	}

	for _, fd := range payload.Forecast.ForecastDay {
		if fd.Date != day {
			continue
		}

		var sumCloud, firstDeg float64
		for i, h := range fd.Hour {
			sumCloud += h.Cloud
			if i == 0 {
				firstDeg = h.WindDegree
			}
		}
		clouds := 0
		if len(fd.Hour) > 0 {
			clouds = int(sumCloud / float64(len(fd.Hour)))
		}

		f := &weather.Forecast{
			Date:           day,
			TemperatureMin: fd.Day.MinTempC,
			TemperatureMax: fd.Day.MaxTempC,
			WindSpeed:      fd.Day.MaxWindKph,
			WindDirection:  weather.DegreesToDirection(firstDeg),
			CloudCover:     clouds,
			Visibility:     weather.VisibilityFromClouds(clouds),
			Conditions:     fd.Day.Condition.Text,
			Icon:           fd.Day.Condition.Icon,
			Provider:       p.name,
		}
		if snow := fd.Day.TotalSnowCM; snow > 0 {
			f.SnowfallCM = &snow
		} else {
			// totalprecip_mm includes snow water equivalent; only count it as rain when no snow.
			f.PrecipitationMM = fd.Day.TotalPrecip
		}
		return f, nil
	}

	return nil, fmt.Errorf("no forecast day %s", day)
}
