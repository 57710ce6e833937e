package cache

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2"

	"github.com/bbernstein/swellcheck/internal/config"
	"github.com/bbernstein/swellcheck/internal/models"
)

// CoordinatePrecision is the number of decimal places coordinates are rounded to in cache keys
const CoordinatePrecision = 3

// DefaultFreshness is how long a cached result is served before it is treated as a miss
const DefaultFreshness = 10 * time.Minute

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// resultEntry wraps a cached value with the time it was stored
type resultEntry[V any] struct {
	Value     V
	CreatedAt time.Time
}

// ResultCache is a bounded, time-aware cache of computed results. An entry is
// only returned while it is younger than the freshness window. Stale entries are
// reported as misses and left in place until they are overwritten or evicted.
type ResultCache[V any] struct {
	name      string
	lru       *lru.Cache[string, *resultEntry[V]]
	freshness time.Duration
	clock     clock
	clone     func(V) V

	hits   atomic.Uint64
	misses atomic.Uint64
	stale  atomic.Uint64
}

// ResultCacheOption configures a ResultCache
type ResultCacheOption[V any] func(*ResultCache[V])

// WithClone sets the function used to copy values going into and out of the cache
func WithClone[V any](fn func(V) V) ResultCacheOption[V] {
	return func(c *ResultCache[V]) {
		c.clone = fn
	}
}

// WithName labels the cache in log output and stats
func WithName[V any](name string) ResultCacheOption[V] {
	return func(c *ResultCache[V]) {
		c.name = name
	}
}

// NewResultCache creates a cache holding at most size entries, each fresh for the given window
func NewResultCache[V any](size int, freshness time.Duration, opts ...ResultCacheOption[V]) (*ResultCache[V], error) {
	lruCache, err := lru.New[string, *resultEntry[V]](size)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	c := &ResultCache[V]{
		name:      "results",
		lru:       lruCache,
		freshness: freshness,
		clock:     systemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the value for key if one was stored less than the freshness window ago
func (c *ResultCache[V]) Get(key string) (V, bool) {
	var zero V

	entry, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}

	if c.clock.Now().Sub(entry.CreatedAt) >= c.freshness {
		c.stale.Add(1)
		c.misses.Add(1)
		return zero, false
	}

	c.hits.Add(1)
	return c.copy(entry.Value), true
}

// Put stores value under key, replacing any previous entry and resetting its age
func (c *ResultCache[V]) Put(key string, value V) {
	c.lru.Add(key, &resultEntry[V]{
		Value:     c.copy(value),
		CreatedAt: c.clock.Now(),
	})
}

// Clear removes every entry
func (c *ResultCache[V]) Clear() {
	c.lru.Purge()
}

func (c *ResultCache[V]) Len() int {
	return c.lru.Len()
}

func (c *ResultCache[V]) Name() string {
	return c.name
}

// Stats returns hit and miss counters. Stale reads are counted as misses too.
func (c *ResultCache[V]) Stats() map[string]uint64 {
	return map[string]uint64{
		"hits":   c.hits.Load(),
		"misses": c.misses.Load(),
		"stale":  c.stale.Load(),
	}
}

func (c *ResultCache[V]) copy(v V) V {
	if c.clone == nil {
		return v
	}
	return c.clone(v)
}

// CoordinateKey builds the cache key for a coordinate pair rounded to CoordinatePrecision places
func CoordinateKey(lat, lng float64) string {
	return fmt.Sprintf("%.*f,%.*f", CoordinatePrecision, roundCoordinate(lat), CoordinatePrecision, roundCoordinate(lng))
}

// ForecastKey extends CoordinateKey with the number of forecast days
func ForecastKey(lat, lng float64, days int) string {
	return fmt.Sprintf("%s:%d", CoordinateKey(lat, lng), days)
}

func roundCoordinate(v float64) float64 {
	p := math.Pow(10, CoordinatePrecision)
	r := math.Round(v*p) / p
	if r == 0 {
		// avoid "-0.000"
		return 0
	}
	return r
}

// freshnessFor returns ttl, or zero when LRU caching is disabled so every read misses
func freshnessFor(cfg *config.CacheConfig, ttl time.Duration) time.Duration {
	if !cfg.EnableLRUCache {
		return 0
	}
	return ttl
}

// NewConditionsCache creates the cache for normalized live conditions
func NewConditionsCache(cfg *config.CacheConfig) (*ResultCache[models.NormalizedConditions], error) {
	return NewResultCache[models.NormalizedConditions](cfg.ConditionsLRUSize, freshnessFor(cfg, cfg.GetConditionsTTL()),
		WithName[models.NormalizedConditions]("conditions"),
		WithClone(models.NormalizedConditions.Clone),
	)
}

// NewForecastCache creates the cache for multi-day forecasts
func NewForecastCache(cfg *config.CacheConfig) (*ResultCache[[]models.ForecastDay], error) {
	return NewResultCache[[]models.ForecastDay](cfg.ForecastLRUSize, freshnessFor(cfg, cfg.GetForecastTTL()),
		WithName[[]models.ForecastDay]("forecast"),
		WithClone(models.CloneForecast),
	)
}

// NewTideCache creates the cache for tide extremes keyed by station and day
func NewTideCache(cfg *config.CacheConfig) (*ResultCache[[]models.TideExtreme], error) {
	return NewResultCache[[]models.TideExtreme](cfg.TideLRUSize, freshnessFor(cfg, cfg.GetTideTTL()),
		WithName[[]models.TideExtreme]("tide"),
		WithClone(cloneExtremes),
	)
}

// TideKey builds the cache key for a station's extremes on a given day
func TideKey(stationID string, date time.Time) string {
	return fmt.Sprintf("%s:%s", stationID, date.Format("2006-01-02"))
}

func cloneExtremes(in []models.TideExtreme) []models.TideExtreme {
	if in == nil {
		return nil
	}
	out := make([]models.TideExtreme, len(in))
	copy(out, in)
	return out
}
