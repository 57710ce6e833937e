package conditions

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/swellcheck/internal/models"
)

const (
	dailyWeatherJSON = `{"daily":{"time":["2024-06-01","2024-06-02"],` +
		`"temperature_2m_max":[22,24],"temperature_2m_min":[15,16],` +
		`"wind_speed_10m_max":[4,8],"wind_gusts_10m_max":[9,12],"wind_direction_10m_dominant":[270,315],` +
		`"precipitation_sum":[0,12.7],"precipitation_probability_max":[5,80],"cloud_cover_mean":[10,90],` +
		`"weather_code":[0,63]}}`
	dailyMarineJSON = `{"daily":{"time":["2024-06-01","2024-06-02"],` +
		`"wave_height_max":[2,1.2],"wave_direction_dominant":[280,290],"wave_period_max":[12,10],` +
		`"swell_wave_height_max":[1.6,1],"swell_wave_direction_dominant":[275,300],"swell_wave_period_max":[15,11]}}`
)

func TestFetchForecastLive(t *testing.T) {
	t.Parallel()

	upstream := newUpstreamServer(t)
	upstream.weatherBody = dailyWeatherJSON
	upstream.marineBody = dailyMarineJSON
	c := upstream.newClient(t)

	days, err := c.FetchForecast(context.Background(), trestlesLat, trestlesLng, 2)
	require.NoError(t, err)
	require.Len(t, days, 2)

	first := days[0]
	assert.Equal(t, "2024-06-01", first.Date)
	assert.Equal(t, 71.6, first.AirTempHigh)
	assert.Equal(t, 59.0, first.AirTempLow)
	assert.Equal(t, 8.9, first.WindSpeed)
	assert.Equal(t, models.Compass("W"), first.WindDirection)
	assert.Equal(t, 5.2, first.SwellHeight)
	assert.Equal(t, 15.0, first.SwellPeriod)
	assert.Equal(t, 6.6, first.WaveHeight)
	assert.Equal(t, "Clear Sky", first.Conditions)
	assert.Equal(t, models.Sources{Weather: models.SourceLive, Marine: models.SourceLive}, first.Sources)

	second := days[1]
	assert.Equal(t, 0.5, second.Precipitation)
	assert.Equal(t, 80.0, second.PrecipitationChance)
	assert.Equal(t, 90.0, second.CloudCover)
	assert.Equal(t, models.Compass("NW"), second.WindDirection)
	assert.Equal(t, "Moderate Rain", second.Conditions)

	// second call is served from cache
	_, err = c.FetchForecast(context.Background(), trestlesLat, trestlesLng, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(1), upstream.weatherCalls.Load())

	// a different length is a different cache entry
	_, err = c.FetchForecast(context.Background(), trestlesLat, trestlesLng, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), upstream.weatherCalls.Load())
}

func TestFetchForecastFallsBackPerDay(t *testing.T) {
	t.Parallel()

	upstream := newUpstreamServer(t)
	upstream.weatherBody = dailyWeatherJSON
	upstream.marineStatus = http.StatusInternalServerError
	c := upstream.newClient(t)

	days, err := c.FetchForecast(context.Background(), trestlesLat, trestlesLng, 3)
	require.NoError(t, err)
	require.Len(t, days, 3)

	for i, d := range days {
		assert.Equal(t, models.SourceSynthetic, d.Sources.Marine, "day %d", i)
		assert.GreaterOrEqual(t, d.SwellHeight, 3.0)
		assert.LessOrEqual(t, d.SwellHeight, 8.0)
	}

	assert.Equal(t, models.SourceLive, days[0].Sources.Weather)
	assert.Equal(t, models.SourceLive, days[1].Sources.Weather)
	// upstream only had two days
	assert.Equal(t, models.SourceSynthetic, days[2].Sources.Weather)
	assert.Equal(t, "2024-06-03", days[2].Date)
}

func TestFetchForecastNullDailyValues(t *testing.T) {
	t.Parallel()

	const (
		nullWeather = `{"daily":{"time":["2024-06-01","2024-06-02"],` +
			`"temperature_2m_max":[null,24],"temperature_2m_min":[null,16],` +
			`"wind_speed_10m_max":[null,8],"wind_gusts_10m_max":[null,null],"wind_direction_10m_dominant":[null,315],` +
			`"precipitation_sum":[null,null],"precipitation_probability_max":[null,null],"cloud_cover_mean":[null,null],` +
			`"weather_code":[null,null]}}`
		partialMarine = `{"daily":{"time":["2024-06-01","2024-06-02"],` +
			`"wave_height_max":[null,1.2],"wave_direction_dominant":[null,290],"wave_period_max":[null,10],` +
			`"swell_wave_height_max":[null,null],"swell_wave_direction_dominant":[null,null],"swell_wave_period_max":[null,null]}}`
	)

	upstream := newUpstreamServer(t)
	upstream.weatherBody = nullWeather
	upstream.marineBody = partialMarine
	c := upstream.newClient(t)

	days, err := c.FetchForecast(context.Background(), trestlesLat, trestlesLng, 2)
	require.NoError(t, err)
	require.Len(t, days, 2)

	var want models.ForecastDay
	gen := NewFallbackGenerator(42)
	gen.FillForecastWeather(&want, trestlesLat, trestlesLng, 0)
	gen.FillForecastMarine(&want, trestlesLat, trestlesLng, 0)

	first := days[0]
	assert.Equal(t, models.Sources{Weather: models.SourceSynthetic, Marine: models.SourceSynthetic}, first.Sources)
	assert.Equal(t, want.AirTempHigh, first.AirTempHigh)
	assert.Equal(t, want.WindSpeed, first.WindSpeed)
	assert.Equal(t, want.SwellHeight, first.SwellHeight)
	assert.Equal(t, want.SwellPeriod, first.SwellPeriod)
	assert.Equal(t, "2024-06-01", first.Date)

	// swell is missing but the combined sea is there
	second := days[1]
	assert.Equal(t, models.Sources{Weather: models.SourceLive, Marine: models.SourceLive}, second.Sources)
	assert.Equal(t, 3.9, second.SwellHeight)
	assert.Equal(t, 10.0, second.SwellPeriod)
	assert.Equal(t, models.Compass("WNW"), second.SwellDirection)
	assert.Equal(t, 3.9, second.WaveHeight)
	assert.Equal(t, 75.2, second.AirTempHigh)
	assert.Nil(t, second.WindGusts)
	assert.Equal(t, 0.0, second.Precipitation)
	assert.Equal(t, "Clear Sky", second.Conditions)
}

func TestFetchForecastAllNullMarineIsSynthesized(t *testing.T) {
	t.Parallel()

	upstream := newUpstreamServer(t)
	upstream.weatherBody = dailyWeatherJSON
	upstream.marineBody = `{"daily":{"time":["2024-06-01","2024-06-02"],` +
		`"wave_height_max":[null,null],"wave_direction_dominant":[null,null],"wave_period_max":[null,null],` +
		`"swell_wave_height_max":[null,null],"swell_wave_direction_dominant":[null,null],"swell_wave_period_max":[null,null]}}`
	c := upstream.newClient(t)

	days, err := c.FetchForecast(context.Background(), trestlesLat, trestlesLng, 2)
	require.NoError(t, err)
	require.Len(t, days, 2)

	gen := NewFallbackGenerator(42)
	for i, d := range days {
		var want models.ForecastDay
		gen.FillForecastMarine(&want, trestlesLat, trestlesLng, i)

		assert.Equal(t, models.SourceLive, d.Sources.Weather, "day %d", i)
		assert.Equal(t, models.SourceSynthetic, d.Sources.Marine, "day %d", i)
		assert.Equal(t, want.SwellHeight, d.SwellHeight, "day %d", i)
		assert.Equal(t, want.WaveHeight, d.WaveHeight, "day %d", i)
		assert.Greater(t, d.SwellHeight, 0.0, "day %d", i)
	}
}

func TestFetchForecastAllSyntheticIsDeterministic(t *testing.T) {
	t.Parallel()

	upstream := newUpstreamServer(t)
	upstream.weatherStatus = http.StatusInternalServerError
	upstream.marineStatus = http.StatusInternalServerError
	c := upstream.newClient(t)

	first, err := c.FetchForecast(context.Background(), 21.665, -158.053, 5)
	require.NoError(t, err)
	second, err := c.FetchForecast(context.Background(), 21.665, -158.053, 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), upstream.weatherCalls.Load(), "synthetic forecasts are not cached")
	day0, day1 := first[0], first[1]
	day0.Date, day1.Date = "", ""
	assert.NotEqual(t, day0, day1, "each day has its own jitter")
	for _, d := range first {
		assert.GreaterOrEqual(t, d.AirTempHigh, 78.0)
	}
}

func TestFetchForecastRejectsBadRange(t *testing.T) {
	t.Parallel()

	upstream := newUpstreamServer(t)
	c := upstream.newClient(t)

	for _, days := range []int{0, -1, MaxForecastDays + 1} {
		_, err := c.FetchForecast(context.Background(), trestlesLat, trestlesLng, days)
		var rangeErr *InvalidRangeError
		assert.True(t, errors.As(err, &rangeErr), "days %d", days)
	}

	_, err := c.FetchForecast(context.Background(), 95, 0, 3)
	var coordErr *InvalidCoordinateError
	assert.True(t, errors.As(err, &coordErr))

	assert.Equal(t, int32(0), upstream.weatherCalls.Load())
}
