package conditions

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/swellcheck/internal/cache"
	"github.com/bbernstein/swellcheck/internal/models"
	"github.com/bbernstein/swellcheck/internal/units"
)

const (
	MinForecastDays     = 1
	MaxForecastDays     = 16
	DefaultForecastDays = 7
)

// FetchForecast returns one record per day starting today. Each day's weather
// and sea state are synthesized independently when the upstream cannot supply them.
func (c *Client) FetchForecast(ctx context.Context, lat, lng float64, days int) ([]models.ForecastDay, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	if days < MinForecastDays || days > MaxForecastDays {
		return nil, &InvalidRangeError{
			Message: fmt.Sprintf("forecast days must be between %d and %d, got %d", MinForecastDays, MaxForecastDays, days),
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cache.ForecastKey(lat, lng, days)
	if cached, ok := c.forecastCache.Get(key); ok {
		log.Debug().Str("key", key).Msg("Forecast cache hit")
		return cached, nil
	}

	v, shared, err := c.shared(ctx, "forecast:"+key, func(fetchCtx context.Context) (interface{}, error) {
		if cached, ok := c.forecastCache.Get(key); ok {
			return cached, nil
		}

		forecast, allSynthetic, err := c.fetchForecastLive(fetchCtx, lat, lng, days)
		if err != nil {
			return nil, err
		}
		if !allSynthetic {
			c.forecastCache.Put(key, forecast)
		}
		return forecast, nil
	})
	if err != nil {
		return nil, err
	}

	forecast := v.([]models.ForecastDay)
	if shared {
		forecast = models.CloneForecast(forecast)
	}
	return forecast, nil
}

func (c *Client) fetchForecastLive(ctx context.Context, lat, lng float64, days int) ([]models.ForecastDay, bool, error) {
	var (
		weather    *DailyWeather
		marine     *DailyMarine
		weatherErr error
		marineErr  error
		wg         sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		weather, weatherErr = c.weather.Daily(ctx, lat, lng, days)
	}()
	go func() {
		defer wg.Done()
		marine, marineErr = c.marine.Daily(ctx, lat, lng, days)
	}()
	wg.Wait()

	if weatherErr != nil {
		logUpstreamUnavailable(weatherErr, endpointWeather, lat, lng)
		weather = nil
	}
	if marineErr != nil {
		logUpstreamUnavailable(marineErr, endpointMarine, lat, lng)
		marine = nil
	}

	today := c.now().UTC()
	allSynthetic := true
	forecast := make([]models.ForecastDay, days)
	for i := range forecast {
		d := &forecast[i]

		if !applyDailyWeather(d, weather, i) {
			c.fallback.FillForecastWeather(d, lat, lng, i)
		}
		if !applyDailyMarine(d, marine, i) {
			c.fallback.FillForecastMarine(d, lat, lng, i)
		}
		if d.Date == "" {
			d.Date = today.AddDate(0, 0, i).Format("2006-01-02")
		}
		d.WaterTemp = units.EstimateWaterTemp(lat, (d.AirTempHigh+d.AirTempLow)/2)

		if d.Sources.Weather == models.SourceLive || d.Sources.Marine == models.SourceLive {
			allSynthetic = false
		}
	}

	log.Info().
		Float64("lat", lat).
		Float64("lng", lng).
		Int("days", days).
		Bool("synthetic", allSynthetic).
		Msg("Fetched forecast")

	return forecast, allSynthetic, nil
}
