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

// OpenWeatherProvider implements weather.Provider with the OpenWeatherMap
// 5 day / 3 hour forecast.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *fetch.Client
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/forecast",
		client:  fetch.NewClient("openweather", client),
	}
}

// WithBaseURL overrides the API endpoint.
func (p *OpenWeatherProvider) WithBaseURL(u string) *OpenWeatherProvider {
	p.baseURL = u
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type openWeatherPayload struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Clouds struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Rain struct {
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
		Snow struct {
			ThreeH float64 `json:"3h"`
		} `json:"snow"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	} `json:"list"`
	City struct {
		// Timezone is the UTC offset of the location in seconds.
		Timezone int `json:"timezone"`
	} `json:"city"`
}

func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, lat, lon float64, date time.Time) (*weather.Forecast, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	var payload openWeatherPayload
	if err := p.client.GetJSON(ctx, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), &payload); err != nil {
		return nil, err
	}

	// Slots are bucketed by the resort's local calendar day.
	zone := time.FixedZone("local", payload.City.Timezone)
	want := date.Format(weather.DateLayout)

	var slots []weather.Slot
	for _, item := range payload.List {
		ts := time.Unix(item.Dt, 0).In(zone)
		if ts.Format(weather.DateLayout) != want {
			continue
		}

		s := weather.Slot{
			Timestamp:    ts,
			TemperatureC: item.Main.Temp,
			RainMM:       item.Rain.ThreeH,
			SnowMM:       item.Snow.ThreeH,
			WindSpeedMS:  item.Wind.Speed,
			WindDeg:      item.Wind.Deg,
			CloudPct:     item.Clouds.All,
		}
		if len(item.Weather) > 0 {
			s.Condition = item.Weather[0].Description
			s.Icon = item.Weather[0].Icon
		}
		slots = append(slots, s)
	}

	if len(slots) == 0 {
		return nil, fmt.Errorf("no forecast slots for %s", want)
	}

	return weather.AggregateSlots(date, p.name, slots), nil
}
