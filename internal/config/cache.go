package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// Live conditions cache
	ConditionsLRUSize    int
	ConditionsTTLMinutes int

	// Multi-day forecast cache
	ForecastLRUSize    int
	ForecastTTLMinutes int

	// Tide extremes per station and day
	TideLRUSize    int
	TideTTLMinutes int

	StationListTTLHours   int
	SpotCatalogTTLMinutes int

	EnableLRUCache bool
}

const (
	// Default values
	defaultConditionsLRUSize     = 1000
	defaultConditionsTTLMinutes  = 10
	defaultForecastLRUSize       = 500
	defaultForecastTTLMinutes    = 10
	defaultTideLRUSize           = 500
	defaultTideTTLMinutes        = 60
	defaultStationListTTLHours   = 24
	defaultSpotCatalogTTLMinutes = 60
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		ConditionsLRUSize:     getEnvInt("CACHE_CONDITIONS_LRU_SIZE", defaultConditionsLRUSize),
		ConditionsTTLMinutes:  getEnvInt("CACHE_CONDITIONS_TTL_MINUTES", defaultConditionsTTLMinutes),
		ForecastLRUSize:       getEnvInt("CACHE_FORECAST_LRU_SIZE", defaultForecastLRUSize),
		ForecastTTLMinutes:    getEnvInt("CACHE_FORECAST_TTL_MINUTES", defaultForecastTTLMinutes),
		TideLRUSize:           getEnvInt("CACHE_TIDE_LRU_SIZE", defaultTideLRUSize),
		TideTTLMinutes:        getEnvInt("CACHE_TIDE_TTL_MINUTES", defaultTideTTLMinutes),
		StationListTTLHours:   getEnvInt("CACHE_STATION_LIST_TTL_HOURS", defaultStationListTTLHours),
		SpotCatalogTTLMinutes: getEnvInt("CACHE_SPOT_CATALOG_TTL_MINUTES", defaultSpotCatalogTTLMinutes),
		EnableLRUCache:        getEnvBool("CACHE_ENABLE_LRU", true),
	}

	log.Debug().
		Int("ConditionsLRUSize", config.ConditionsLRUSize).
		Int("ConditionsTTLMinutes", config.ConditionsTTLMinutes).
		Int("ForecastLRUSize", config.ForecastLRUSize).
		Int("ForecastTTLMinutes", config.ForecastTTLMinutes).
		Int("TideLRUSize", config.TideLRUSize).
		Int("TideTTLMinutes", config.TideTTLMinutes).
		Int("StationListTTLHours", config.StationListTTLHours).
		Int("SpotCatalogTTLMinutes", config.SpotCatalogTTLMinutes).
		Bool("EnableLRUCache", config.EnableLRUCache).
		Msg("Cache configuration loaded")

	return config
}

// Helper methods for the CacheConfig struct
func (c *CacheConfig) GetConditionsTTL() time.Duration {
	return time.Duration(c.ConditionsTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetForecastTTL() time.Duration {
	return time.Duration(c.ForecastTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetTideTTL() time.Duration {
	return time.Duration(c.TideTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetStationListTTL() time.Duration {
	return time.Duration(c.StationListTTLHours) * time.Hour
}

func (c *CacheConfig) GetSpotCatalogTTL() time.Duration {
	return time.Duration(c.SpotCatalogTTLMinutes) * time.Minute
}
