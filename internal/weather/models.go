package weather

import (
	"time"
)

// DateLayout is the calendar-date layout used in cache keys and payloads.
const DateLayout = "2006-01-02"

// Forecast is the daily weather outlook for one resort on one date.
// Values are never mutated once built.
type Forecast struct {
	Date            string  `json:"date"`
	TemperatureMin  float64 `json:"temperature_min"`
	TemperatureMax  float64 `json:"temperature_max"`
	PrecipitationMM float64 `json:"precipitation_mm"`

	// SnowfallCM is nil when no snowfall is forecast.
	SnowfallCM *float64 `json:"snowfall_cm"`

	WindSpeed     float64 `json:"wind_speed"` // km/h
	WindDirection string  `json:"wind_direction"`
	CloudCover    int     `json:"cloud_cover"` // percent
	Visibility    string  `json:"visibility"`
	Conditions    string  `json:"conditions"`
	Icon          string  `json:"icon,omitempty"`

	// Provider that produced this forecast.
	Provider string `json:"provider,omitempty"`
}

// AverageTemperature is the midpoint of the min/max temperature.
func (f *Forecast) AverageTemperature() float64 {
	return (f.TemperatureMin + f.TemperatureMax) / 2
}

// Snowfall returns the forecast snowfall in cm, zero when none.
func (f *Forecast) Snowfall() float64 {
	if f.SnowfallCM == nil {
		return 0
	}
	return *f.SnowfallCM
}

// Slot is a single provider time slot (e.g. a 3-hour step) that can be
// aggregated into a daily Forecast.
type Slot struct {
	Timestamp    time.Time
	TemperatureC float64
	RainMM       float64
	SnowMM       float64
	WindSpeedMS  float64
	WindDeg      float64
	CloudPct     float64
	Condition    string
	Icon         string
}
