package conditions

import (
	"errors"

	"github.com/bbernstein/swellcheck/internal/models"
	"github.com/bbernstein/swellcheck/internal/units"
)

var errNoWaveData = errors.New("marine reading has no wave data")

// applyWeather copies a live weather reading into c, converting to imperial units
func applyWeather(c *models.NormalizedConditions, w *WeatherReading) {
	c.AirTemp = units.FahrenheitFromCelsius(w.Temperature)
	c.FeelsLike = units.FahrenheitFromCelsius(w.ApparentTemperature)
	c.Humidity = w.RelativeHumidity
	c.Pressure = w.PressureMSL
	c.WindSpeed = units.MphFromMetersPerSecond(w.WindSpeed)
	c.WindDirection = units.CompassOf(w.WindDirection)
	if w.WindGusts != nil {
		gust := units.MphFromMetersPerSecond(*w.WindGusts)
		c.WindGusts = &gust
	}
	if w.Visibility != nil {
		c.Visibility = units.MilesFromMeters(*w.Visibility)
	}
	if w.UVIndex != nil {
		c.UVIndex = units.Round(*w.UVIndex, 1)
	}
	c.CloudCover = w.CloudCover
	c.Precipitation = units.InchesFromMillimeters(w.Precipitation)
	c.WeatherCode = w.WeatherCode
	c.Conditions = units.DescribeWeatherCode(w.WeatherCode)
	c.Sources.Weather = models.SourceLive
}

// applyMarine copies a live marine reading into c. Swell falls back to the
// combined sea when the swell partition is missing. It returns the measured sea
// surface temperature in °F, or nil when there is none.
func applyMarine(c *models.NormalizedConditions, m *MarineReading) (*float64, error) {
	swellHeight, swellPeriod, swellDir := m.SwellWaveHeight, m.SwellWavePeriod, m.SwellWaveDirection
	if swellHeight == nil {
		swellHeight, swellPeriod, swellDir = m.WaveHeight, m.WavePeriod, m.WaveDirection
	}
	if swellHeight == nil {
		return nil, errNoWaveData
	}

	c.SwellHeight = units.FeetFromMeters(*swellHeight)
	c.SwellPeriod = units.Round(valueOr(swellPeriod, 0), 1)
	c.SwellDirection = units.CompassOf(valueOr(swellDir, 0))

	c.WaveHeight = units.FeetFromMeters(valueOr(m.WaveHeight, *swellHeight))
	c.WavePeriod = units.Round(valueOr(m.WavePeriod, c.SwellPeriod), 1)
	c.WaveDirection = units.CompassOf(valueOr(m.WaveDirection, valueOr(swellDir, 0)))

	c.WindWaveHeight = units.FeetFromMeters(valueOr(m.WindWaveHeight, 0))
	c.WindWavePeriod = units.Round(valueOr(m.WindWavePeriod, 0), 1)
	c.WindWaveDirection = units.CompassOf(valueOr(m.WindWaveDirection, 0))

	c.Sources.Marine = models.SourceLive

	if m.SeaSurfaceTemperature == nil {
		return nil, nil
	}
	sst := units.FahrenheitFromCelsius(*m.SeaSurfaceTemperature)
	return &sst, nil
}

// applyDailyWeather copies day i of a daily weather block into d. It reports
// false when the block has no temperature or wind for that day.
func applyDailyWeather(d *models.ForecastDay, w *DailyWeather, i int) bool {
	if w == nil || i >= len(w.Time) {
		return false
	}
	high, low := at(w.TemperatureMax, i), at(w.TemperatureMin, i)
	wind, windDir := at(w.WindSpeedMax, i), at(w.WindDirectionDominant, i)
	if high == nil || low == nil || wind == nil || windDir == nil {
		return false
	}

	d.Date = w.Time[i]
	d.AirTempHigh = units.FahrenheitFromCelsius(*high)
	d.AirTempLow = units.FahrenheitFromCelsius(*low)
	d.WindSpeed = units.MphFromMetersPerSecond(*wind)
	d.WindDirection = units.CompassOf(*windDir)
	if gust := at(w.WindGustsMax, i); gust != nil {
		g := units.MphFromMetersPerSecond(*gust)
		d.WindGusts = &g
	}
	d.Precipitation = units.InchesFromMillimeters(valueOr(at(w.PrecipitationSum, i), 0))
	d.PrecipitationChance = valueOr(at(w.PrecipitationProbabilityMax, i), 0)
	d.CloudCover = valueOr(at(w.CloudCoverMean, i), 0)
	if i < len(w.WeatherCode) && w.WeatherCode[i] != nil {
		d.WeatherCode = *w.WeatherCode[i]
	}
	d.Conditions = units.DescribeWeatherCode(d.WeatherCode)
	d.Sources.Weather = models.SourceLive
	return true
}

// applyDailyMarine copies day i of a daily marine block into d. Swell falls
// back to the combined sea; with neither height present the day is not covered.
func applyDailyMarine(d *models.ForecastDay, m *DailyMarine, i int) bool {
	if m == nil || i >= len(m.Time) {
		return false
	}

	swellHeight, swellPeriod, swellDir := at(m.SwellWaveHeightMax, i), at(m.SwellWavePeriodMax, i), at(m.SwellWaveDirectionDominant, i)
	waveHeight, wavePeriod, waveDir := at(m.WaveHeightMax, i), at(m.WavePeriodMax, i), at(m.WaveDirectionDominant, i)
	if swellHeight == nil {
		swellHeight, swellPeriod, swellDir = waveHeight, wavePeriod, waveDir
	}
	if swellHeight == nil {
		return false
	}
	if waveHeight == nil {
		waveHeight, wavePeriod, waveDir = swellHeight, swellPeriod, swellDir
	}

	if d.Date == "" {
		d.Date = m.Time[i]
	}

	d.WaveHeight = units.FeetFromMeters(*waveHeight)
	d.WavePeriod = units.Round(valueOr(wavePeriod, 0), 1)
	d.WaveDirection = units.CompassOf(valueOr(waveDir, 0))

	d.SwellHeight = units.FeetFromMeters(*swellHeight)
	d.SwellPeriod = units.Round(valueOr(swellPeriod, valueOr(wavePeriod, 0)), 1)
	d.SwellDirection = units.CompassOf(valueOr(swellDir, valueOr(waveDir, 0)))

	d.Sources.Marine = models.SourceLive
	return true
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// at returns values[i], or nil when the array is too short or the entry is null
func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}
