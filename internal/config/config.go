package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPTimeout time.Duration
	MaxRetries  int

	WeatherBaseURL string
	MarineBaseURL  string
	NOAABaseURL    string

	// Seed for the synthetic fallback generator
	FallbackSeed int64

	SpotBucket string
	S3Endpoint string
	S3Region   string

	ServerPort      string
	RefreshInterval time.Duration
	BatchSize       int
	BatchDelay      time.Duration
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the per-request upstream timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

func WithMaxRetries(retries int) Option {
	return func(c *Config) {
		c.MaxRetries = retries
	}
}

func WithFallbackSeed(seed int64) Option {
	return func(c *Config) {
		c.FallbackSeed = seed
	}
}

// WithUpstreams overrides the Open-Meteo and NOAA base URLs, empty values are ignored
func WithUpstreams(weatherURL, marineURL, noaaURL string) Option {
	return func(c *Config) {
		if weatherURL != "" {
			c.WeatherBaseURL = weatherURL
		}
		if marineURL != "" {
			c.MarineBaseURL = marineURL
		}
		if noaaURL != "" {
			c.NOAABaseURL = noaaURL
		}
	}
}

func WithSpotBucket(bucket, endpoint, region string) Option {
	return func(c *Config) {
		c.SpotBucket = bucket
		c.S3Endpoint = endpoint
		if region != "" {
			c.S3Region = region
		}
	}
}

func WithServerPort(port string) Option {
	return func(c *Config) {
		c.ServerPort = port
	}
}

// WithRefresh sets the periodic refresh cadence and the batch throttle used by it
func WithRefresh(interval time.Duration, batchSize int, batchDelay time.Duration) Option {
	return func(c *Config) {
		if interval > 0 {
			c.RefreshInterval = interval
		}
		if batchSize > 0 {
			c.BatchSize = batchSize
		}
		if batchDelay >= 0 {
			c.BatchDelay = batchDelay
		}
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:     "production",
		LogLevel:        zerolog.InfoLevel,
		HTTPTimeout:     10 * time.Second,
		MaxRetries:      2,
		WeatherBaseURL:  "https://api.open-meteo.com",
		MarineBaseURL:   "https://marine-api.open-meteo.com",
		NOAABaseURL:     "https://api.tidesandcurrents.noaa.gov",
		FallbackSeed:    1,
		S3Region:        "us-east-1",
		ServerPort:      "8080",
		RefreshInterval: 10 * time.Minute,
		BatchSize:       3,
		BatchDelay:      time.Second,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.IsLocal() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

func (c *Config) IsLocal() bool {
	return c.Environment == "local" || c.Environment == "development"
}

// LoadFromEnv loads configuration from a .env file (if present) and the environment
func LoadFromEnv() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	return New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithMaxRetries(getEnvInt("HTTP_MAX_RETRIES", 2)),
		WithFallbackSeed(int64(getEnvInt("FALLBACK_SEED", 1))),
		WithUpstreams(
			os.Getenv("WEATHER_BASE_URL"),
			os.Getenv("MARINE_BASE_URL"),
			os.Getenv("NOAA_BASE_URL"),
		),
		WithSpotBucket(
			os.Getenv("SPOT_BUCKET"),
			os.Getenv("S3_ENDPOINT"),
			os.Getenv("AWS_REGION"),
		),
		WithServerPort(getEnvOrDefault("PORT", "8080")),
		WithRefresh(
			getDurationEnvOrDefault("REFRESH_INTERVAL", 10*time.Minute),
			getEnvInt("REFRESH_BATCH_SIZE", 3),
			getDurationEnvOrDefault("REFRESH_BATCH_DELAY", time.Second),
		),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Warn().Str("key", key).Msg("Invalid duration value in environment variable, using default")
	}
	return defaultValue
}

// Helper functions to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
