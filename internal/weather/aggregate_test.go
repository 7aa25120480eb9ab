package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateSlots(t *testing.T) {
	day := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	slots := []Slot{
		{TemperatureC: -8, SnowMM: 20, WindSpeedMS: 2, WindDeg: 270, CloudPct: 90, Condition: "light snow", Icon: "13d"},
		{TemperatureC: -4, SnowMM: 30, WindSpeedMS: 4, WindDeg: 0, CloudPct: 70, Condition: "light snow"},
		{TemperatureC: -2, RainMM: 0.5, WindSpeedMS: 3, CloudPct: 20, Condition: "broken clouds"},
	}

	f := AggregateSlots(day, "test", slots)
	require.NotNil(t, f)

	assert.Equal(t, "2026-01-10", f.Date)
	assert.Equal(t, -8.0, f.TemperatureMin)
	assert.Equal(t, -2.0, f.TemperatureMax)
	assert.Equal(t, 0.5, f.PrecipitationMM)
	require.NotNil(t, f.SnowfallCM)
	assert.Equal(t, 5.0, *f.SnowfallCM)
	assert.Equal(t, 10.8, f.WindSpeed) // 3 m/s average
	assert.Equal(t, "W", f.WindDirection)
	assert.Equal(t, 60, f.CloudCover)
	assert.Equal(t, "Moderate", f.Visibility)
	assert.Equal(t, "light snow", f.Conditions)
	assert.Equal(t, "13d", f.Icon)
	assert.Equal(t, "test", f.Provider)
}

func TestAggregateSlotsNoSnow(t *testing.T) {
	f := AggregateSlots(time.Now(), "test", []Slot{{TemperatureC: 3, CloudPct: 10}})
	require.NotNil(t, f)
	assert.Nil(t, f.SnowfallCM)
	assert.Equal(t, 0.0, f.Snowfall())
	assert.Equal(t, "Unknown", f.Conditions)
	assert.Equal(t, "Good", f.Visibility)
}

func TestAggregateSlotsEmpty(t *testing.T) {
	assert.Nil(t, AggregateSlots(time.Now(), "test", nil))
}

func TestAggregateSlotsConditionTieKeepsFirstSeen(t *testing.T) {
	f := AggregateSlots(time.Now(), "test", []Slot{
		{Condition: "overcast clouds"},
		{Condition: "light snow"},
	})
	assert.Equal(t, "overcast clouds", f.Conditions)
}

func TestDegreesToDirection(t *testing.T) {
	assert.Equal(t, "N", DegreesToDirection(0))
	assert.Equal(t, "NE", DegreesToDirection(40))
	assert.Equal(t, "S", DegreesToDirection(180))
	assert.Equal(t, "N", DegreesToDirection(350))
}

func TestVisibilityFromClouds(t *testing.T) {
	assert.Equal(t, "Good", VisibilityFromClouds(29))
	assert.Equal(t, "Moderate", VisibilityFromClouds(30))
	assert.Equal(t, "Poor", VisibilityFromClouds(70))
}
