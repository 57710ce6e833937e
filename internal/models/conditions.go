package models

import (
	"fmt"
	"time"
)

// Compass is one of the 16 compass points
type Compass string

// CompassPoints lists the 16 points clockwise from north, 22.5 degrees apart
var CompassPoints = [16]Compass{
	"N", "NNE", "NE", "ENE",
	"E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW",
	"W", "WNW", "NW", "NNW",
}

func (c Compass) Valid() bool {
	for _, p := range CompassPoints {
		if p == c {
			return true
		}
	}
	return false
}

// DataSource records whether a branch of a reading came from the upstream or the fallback generator
type DataSource string

const (
	SourceLive      DataSource = "live"
	SourceSynthetic DataSource = "synthetic"
)

type Sources struct {
	Weather DataSource `json:"weather"`
	Marine  DataSource `json:"marine"`
}

// Degraded reports whether any part of the reading was synthesized
func (s Sources) Degraded() bool {
	return s.Weather != SourceLive || s.Marine != SourceLive
}

// NormalizedConditions is a point-in-time reading in imperial units.
// Heights are feet, speeds mph, temperatures Fahrenheit, precipitation inches.
type NormalizedConditions struct {
	SwellHeight    float64 `json:"swellHeight"`
	SwellPeriod    float64 `json:"swellPeriod"`
	SwellDirection Compass `json:"swellDirection"`

	WaveHeight        float64 `json:"waveHeight"`
	WavePeriod        float64 `json:"wavePeriod"`
	WaveDirection     Compass `json:"waveDirection"`
	WindWaveHeight    float64 `json:"windWaveHeight"`
	WindWavePeriod    float64 `json:"windWavePeriod"`
	WindWaveDirection Compass `json:"windWaveDirection"`

	WindSpeed     float64  `json:"windSpeed"`
	WindDirection Compass  `json:"windDirection"`
	WindGusts     *float64 `json:"windGusts,omitempty"`

	WaterTemp float64 `json:"waterTemp"`
	AirTemp   float64 `json:"airTemp"`
	FeelsLike float64 `json:"feelsLike"`

	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	Visibility    float64 `json:"visibility"`
	UVIndex       float64 `json:"uvIndex"`
	CloudCover    float64 `json:"cloudCover"`
	Precipitation float64 `json:"precipitation"`
	WeatherCode   int     `json:"weatherCode"`
	Conditions    string  `json:"conditions"`

	Tide *TideState `json:"tide,omitempty"`

	Timestamp time.Time `json:"timestamp"`
	Sources   Sources   `json:"sources"`
}

// Degraded reports whether the reading contains synthesized data
func (c NormalizedConditions) Degraded() bool {
	return c.Sources.Degraded()
}

// Clone returns a deep copy
func (c NormalizedConditions) Clone() NormalizedConditions {
	out := c
	if c.WindGusts != nil {
		g := *c.WindGusts
		out.WindGusts = &g
	}
	if c.Tide != nil {
		t := *c.Tide
		out.Tide = &t
	}
	return out
}

// Validate checks the invariants every normalized reading must hold
func (c *NormalizedConditions) Validate() error {
	if c.SwellHeight < 0 {
		return fmt.Errorf("invalid swell height: %f", c.SwellHeight)
	}
	if c.SwellPeriod < 0 {
		return fmt.Errorf("invalid swell period: %f", c.SwellPeriod)
	}
	if c.WindSpeed < 0 {
		return fmt.Errorf("invalid wind speed: %f", c.WindSpeed)
	}
	if !c.SwellDirection.Valid() {
		return fmt.Errorf("invalid swell direction: %s", c.SwellDirection)
	}
	if !c.WindDirection.Valid() {
		return fmt.Errorf("invalid wind direction: %s", c.WindDirection)
	}
	if c.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

// ForecastDay is one day of a multi-day forecast, in the same units as NormalizedConditions
type ForecastDay struct {
	Date string `json:"date"` // YYYY-MM-DD

	SwellHeight    float64 `json:"swellHeight"`
	SwellPeriod    float64 `json:"swellPeriod"`
	SwellDirection Compass `json:"swellDirection"`
	WaveHeight     float64 `json:"waveHeight"`
	WavePeriod     float64 `json:"wavePeriod"`
	WaveDirection  Compass `json:"waveDirection"`

	WindSpeed     float64  `json:"windSpeed"`
	WindDirection Compass  `json:"windDirection"`
	WindGusts     *float64 `json:"windGusts,omitempty"`

	AirTempHigh float64 `json:"airTempHigh"`
	AirTempLow  float64 `json:"airTempLow"`
	WaterTemp   float64 `json:"waterTemp"`

	Precipitation       float64 `json:"precipitation"`
	PrecipitationChance float64 `json:"precipitationChance"`
	CloudCover          float64 `json:"cloudCover"`
	WeatherCode         int     `json:"weatherCode"`
	Conditions          string  `json:"conditions"`

	Sources Sources `json:"sources"`
}

// Clone returns a deep copy
func (d ForecastDay) Clone() ForecastDay {
	out := d
	if d.WindGusts != nil {
		g := *d.WindGusts
		out.WindGusts = &g
	}
	return out
}

// CloneForecast deep copies a forecast slice
func CloneForecast(days []ForecastDay) []ForecastDay {
	if days == nil {
		return nil
	}
	out := make([]ForecastDay, len(days))
	for i, d := range days {
		out[i] = d.Clone()
	}
	return out
}
