// Package app wires the upstream clients, caches and services shared by the
// Lambda handlers and the HTTP server.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/swellcheck/internal/cache"
	"github.com/bbernstein/swellcheck/internal/conditions"
	"github.com/bbernstein/swellcheck/internal/config"
	"github.com/bbernstein/swellcheck/internal/models"
	"github.com/bbernstein/swellcheck/internal/spots"
	"github.com/bbernstein/swellcheck/internal/station"
	"github.com/bbernstein/swellcheck/internal/tide"
	"github.com/bbernstein/swellcheck/pkg/http/client"
)

type Services struct {
	Config     *config.Config
	Conditions *conditions.Client
	Tides      *tide.Service
	Catalog    models.SpotCatalog
	// Publisher is nil unless a spot bucket is configured
	Publisher *spots.S3Catalog
}

// New builds every service from cfg. Each upstream gets its own HTTP client
// so one failing API cannot trip the breaker of another.
func New(ctx context.Context, cfg *config.Config) (*Services, error) {
	cacheConfig := config.GetCacheConfig()

	weatherHTTP := newHTTPClient(cfg, "open-meteo-weather", cfg.WeatherBaseURL)
	marineHTTP := newHTTPClient(cfg, "open-meteo-marine", cfg.MarineBaseURL)
	noaaHTTP := newHTTPClient(cfg, "noaa", cfg.NOAABaseURL)

	stationFinder, err := station.NewNOAAStationFinder(noaaHTTP, cache.NewStationCache(cacheConfig.GetStationListTTL()))
	if err != nil {
		return nil, fmt.Errorf("initializing station finder: %w", err)
	}

	tideCache, err := cache.NewTideCache(cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("initializing tide cache: %w", err)
	}
	tideService := tide.NewService(noaaHTTP, stationFinder, tideCache)

	conditionsCache, err := cache.NewConditionsCache(cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("initializing conditions cache: %w", err)
	}
	forecastCache, err := cache.NewForecastCache(cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("initializing forecast cache: %w", err)
	}

	conditionsClient, err := conditions.NewClient(conditions.Options{
		Weather:       conditions.NewOpenMeteoWeather(weatherHTTP),
		Marine:        conditions.NewOpenMeteoMarine(marineHTTP),
		Cache:         conditionsCache,
		ForecastCache: forecastCache,
		Fallback:      conditions.NewFallbackGenerator(cfg.FallbackSeed),
		Tide:          tideService,
		FetchTimeout:  fetchTimeout(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("initializing conditions client: %w", err)
	}

	static, err := spots.NewStaticCatalog()
	if err != nil {
		return nil, fmt.Errorf("loading embedded spot catalog: %w", err)
	}

	svc := &Services{
		Config:     cfg,
		Conditions: conditionsClient,
		Tides:      tideService,
		Catalog:    static,
	}

	if cfg.SpotBucket != "" {
		s3Client, err := spots.NewS3Client(ctx, cfg.S3Endpoint, cfg.S3Region)
		if err != nil {
			return nil, fmt.Errorf("initializing S3 client: %w", err)
		}
		s3Catalog := spots.NewS3Catalog(s3Client, cfg.SpotBucket, cacheConfig.GetSpotCatalogTTL(), static)
		svc.Catalog = s3Catalog
		svc.Publisher = s3Catalog
		log.Info().Str("bucket", cfg.SpotBucket).Msg("Serving spot catalog from S3")
	}

	return svc, nil
}

// BatchOptions returns the refresh throttle from the configuration
func (s *Services) BatchOptions() conditions.BatchOptions {
	return conditions.BatchOptions{
		Size:  s.Config.BatchSize,
		Delay: s.Config.BatchDelay,
	}
}

func newHTTPClient(cfg *config.Config, name, baseURL string) *client.Client {
	return client.New(httpOptions(cfg, name, baseURL))
}

func httpOptions(cfg *config.Config, name, baseURL string) client.Options {
	retries := cfg.MaxRetries
	// the client treats 0 as "use the default", a configured 0 means none
	if retries <= 0 {
		retries = -1
	}
	return client.Options{
		Name:       name,
		BaseURL:    baseURL,
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: retries,
	}
}

// fetchTimeout leaves room for every attempt of one upstream call plus backoff
func fetchTimeout(cfg *config.Config) time.Duration {
	attempts := 1
	if cfg.MaxRetries > 0 {
		attempts += cfg.MaxRetries
	}
	return cfg.HTTPTimeout*time.Duration(attempts) + 5*time.Second
}
