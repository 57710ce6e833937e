// Package conditions fetches, normalizes and caches live weather and sea state
// for a coordinate, and rates surf spots against it.
package conditions

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/bbernstein/swellcheck/internal/cache"
	"github.com/bbernstein/swellcheck/internal/config"
	"github.com/bbernstein/swellcheck/internal/models"
	"github.com/bbernstein/swellcheck/internal/quality"
	"github.com/bbernstein/swellcheck/internal/units"
)

// Scorer rates conditions against a spot's preference profile
type Scorer interface {
	Score(conditions models.NormalizedConditions, profile models.SpotPreferenceProfile) models.QualityResult
}

type Options struct {
	Weather       WeatherFetcher
	Marine        MarineFetcher
	Cache         *cache.ResultCache[models.NormalizedConditions]
	ForecastCache *cache.ResultCache[[]models.ForecastDay]
	Fallback      *FallbackGenerator
	// Tide is optional. Without it spots are scored with an unknown tide.
	Tide   models.TideProvider
	Scorer Scorer
	Now    func() time.Time
	// FetchTimeout bounds one shared upstream fetch, 0 means DefaultFetchTimeout
	FetchTimeout time.Duration
}

// DefaultFetchTimeout bounds a shared fetch once it no longer follows any caller's context
const DefaultFetchTimeout = 30 * time.Second

// Client serves normalized conditions and forecasts, calling the upstreams
// only when the cache has nothing fresh for the rounded coordinate.
type Client struct {
	weather       WeatherFetcher
	marine        MarineFetcher
	cache         *cache.ResultCache[models.NormalizedConditions]
	forecastCache *cache.ResultCache[[]models.ForecastDay]
	fallback      *FallbackGenerator
	tide          models.TideProvider
	scorer        Scorer
	now           func() time.Time
	fetchTimeout  time.Duration
	group         singleflight.Group
}

// NewClient builds a client. Missing caches are created with the default
// configuration, a missing scorer uses quality.DefaultWeights.
func NewClient(opts Options) (*Client, error) {
	cacheConfig := config.GetCacheConfig()

	if opts.Cache == nil {
		c, err := cache.NewConditionsCache(cacheConfig)
		if err != nil {
			return nil, err
		}
		opts.Cache = c
	}
	if opts.ForecastCache == nil {
		c, err := cache.NewForecastCache(cacheConfig)
		if err != nil {
			return nil, err
		}
		opts.ForecastCache = c
	}
	if opts.Fallback == nil {
		opts.Fallback = NewFallbackGenerator(1)
	}
	if opts.Scorer == nil {
		opts.Scorer = quality.NewScorer(quality.DefaultWeights)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}

	return &Client{
		weather:       opts.Weather,
		marine:        opts.Marine,
		cache:         opts.Cache,
		forecastCache: opts.ForecastCache,
		fallback:      opts.Fallback,
		tide:          opts.Tide,
		scorer:        opts.Scorer,
		now:           opts.Now,
		fetchTimeout:  opts.FetchTimeout,
	}, nil
}

// FetchConditions returns the current conditions at a coordinate. Upstream
// failures never surface: the failed half is synthesized and the result's
// Sources say so. Only invalid coordinates and context cancellation are errors.
func (c *Client) FetchConditions(ctx context.Context, lat, lng float64) (models.NormalizedConditions, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return models.NormalizedConditions{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.NormalizedConditions{}, err
	}

	key := cache.CoordinateKey(lat, lng)
	if cached, ok := c.cache.Get(key); ok {
		log.Debug().Str("key", key).Msg("Conditions cache hit")
		return cached, nil
	}

	v, shared, err := c.shared(ctx, "conditions:"+key, func(fetchCtx context.Context) (interface{}, error) {
		// another caller may have filled the cache while we waited
		if cached, ok := c.cache.Get(key); ok {
			return cached, nil
		}

		result, err := c.fetchLive(fetchCtx, lat, lng)
		if err != nil {
			return nil, err
		}

		if result.Sources.Weather == models.SourceSynthetic && result.Sources.Marine == models.SourceSynthetic {
			log.Warn().Str("key", key).Msg("Both upstreams unavailable, not caching synthetic conditions")
		} else {
			c.cache.Put(key, result)
		}
		return result, nil
	})
	if err != nil {
		return models.NormalizedConditions{}, err
	}

	result := v.(models.NormalizedConditions)
	if shared {
		result = result.Clone()
	}
	return result, nil
}

// shared runs fn once for all concurrent callers of key. fn runs under a
// context that ignores any one caller's cancellation and is bounded by
// fetchTimeout; each caller stops waiting as soon as its own ctx is done.
func (c *Client) shared(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, bool, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		return fn(fetchCtx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// fetchLive issues the weather and marine requests concurrently and merges
// them. A branch that fails or runs out of time is synthesized.
func (c *Client) fetchLive(ctx context.Context, lat, lng float64) (models.NormalizedConditions, error) {
	var (
		weather    *WeatherReading
		marine     *MarineReading
		weatherErr error
		marineErr  error
		wg         sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		weather, weatherErr = c.weather.Current(ctx, lat, lng)
	}()
	go func() {
		defer wg.Done()
		marine, marineErr = c.marine.Current(ctx, lat, lng)
	}()
	wg.Wait()

	result := models.NormalizedConditions{Timestamp: c.now().UTC()}

	if weatherErr != nil {
		logUpstreamUnavailable(weatherErr, endpointWeather, lat, lng)
		c.fallback.FillWeather(&result, lat, lng, 0)
	} else {
		applyWeather(&result, weather)
	}

	var seaTemp *float64
	if marineErr == nil {
		seaTemp, marineErr = applyMarine(&result, marine)
	}
	if marineErr != nil {
		logUpstreamUnavailable(marineErr, endpointMarine, lat, lng)
		c.fallback.FillMarine(&result, lat, lng, 0)
	}

	if seaTemp != nil {
		result.WaterTemp = *seaTemp
	} else {
		result.WaterTemp = units.EstimateWaterTemp(lat, result.AirTemp)
	}

	log.Info().
		Float64("lat", lat).
		Float64("lng", lng).
		Str("weather", string(result.Sources.Weather)).
		Str("marine", string(result.Sources.Marine)).
		Msg("Fetched conditions")

	return result, nil
}

// Refresh drops every cached result so the next request goes upstream
func (c *Client) Refresh() {
	c.cache.Clear()
	c.forecastCache.Clear()
	log.Info().Msg("Cleared conditions and forecast caches")
}

// CacheStats reports hit and miss counters per cache
func (c *Client) CacheStats() map[string]map[string]uint64 {
	return map[string]map[string]uint64{
		c.cache.Name():         c.cache.Stats(),
		c.forecastCache.Name(): c.forecastCache.Stats(),
	}
}

func logUpstreamUnavailable(err error, endpoint string, lat, lng float64) {
	log.Warn().
		Err(err).
		Str("endpoint", endpoint).
		Float64("lat", lat).
		Float64("lng", lng).
		Msg("Upstream unavailable, using synthetic data")
}
