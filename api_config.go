package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// This file assembles the application's configuration and wiring: environment
// parsing, logger setup, external connections and the construction of the
// services the handlers depend on.

type apiConfig struct {
	dbURL           string
	newDBClientFunc func(driverName, dataSourceName string) (*sql.DB, error)
	dbQueries       dbQuerier
	redisURL        string
	cache           Cache

	owmWeatherURL string
	owmKey        string
	geocodeURL    string
	searchLimit   int
	httpClient    *http.Client

	weather     WeatherService
	suggestions SuggestionService
	identity    IdentityProvider
	repo        CityRepository
	profiles    *ProfileStore
	engines     *engineRegistry

	refreshInterval time.Duration
	port            string
	devMode         bool
	logger          *slog.Logger
}

// getRequiredEnv retrieves an environment variable by key, and fatals if it's not set.
func getRequiredEnv(key string, logger *slog.Logger) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		logger.Error("environment variable must be set", "key", key)
		os.Exit(1)
	}
	return val
}

// getEnv retrieves an environment variable by key, with a fallback value.
func getEnv(key, fallback string, logger *slog.Logger) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer, with a fallback value.
func getEnvAsInt(key string, fallback int, logger *slog.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		logger.Warn("invalid integer value for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}

func config() *apiConfig {
	devModeStr := os.Getenv("DEV_MODE")
	devMode, err := strconv.ParseBool(devModeStr)
	if err != nil {
		devMode = false
	}

	var logger *slog.Logger
	if devMode {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment variables")
	}

	refreshIntervalMin := getEnvAsInt("REFRESH_INTERVAL_MIN", 30, logger)

	cfg := apiConfig{
		dbURL:           getRequiredEnv("DB_URL", logger),
		newDBClientFunc: sql.Open,
		redisURL:        getRequiredEnv("REDIS_URL", logger),
		owmWeatherURL:   getRequiredEnv("OWM_WEATHER_URL", logger),
		owmKey:          getRequiredEnv("OWM_KEY", logger),
		geocodeURL:      getRequiredEnv("GEOCODE_URL", logger),
		searchLimit:     getEnvAsInt("SEARCH_LIMIT", 20, logger),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		refreshInterval: time.Duration(refreshIntervalMin) * time.Minute,
		port:            getEnv("PORT", "8080", logger),
		devMode:         devMode,
		logger:          logger,
	}

	return &cfg
}

// ConnectRedis establishes the Redis connection and initializes the cache.
func (cfg *apiConfig) ConnectRedis() error {
	opt, err := redis.ParseURL(cfg.redisURL)
	if err != nil {
		cfg.logger.Error("could not parse Redis URL", "error", err)
		return err
	}
	redisClient := redis.NewClient(opt)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		cfg.logger.Error("could not connect to Redis", "error", err)
		return err
	}
	cfg.cache = NewRedisCache(redisClient)
	cfg.logger.Info("connected to redis")
	return nil
}

// wireServices constructs the providers, repository, profile store and the
// per-user engine registry. ConnectDB and ConnectRedis must have run first.
func (cfg *apiConfig) wireServices() {
	cfg.weather = NewOWMWeatherService(cfg.owmKey, cfg.owmWeatherURL, cfg.httpClient)
	cfg.suggestions = NewOpenMeteoGeocodingService(cfg.geocodeURL, cfg.searchLimit, cfg.httpClient)
	cfg.identity = NewContextIdentity()
	cfg.repo = NewPostgresCityRepository(cfg.dbQueries, cfg.cache, cfg.identity, cfg.logger)
	cfg.profiles = NewProfileStore(cfg.dbQueries, cfg.logger)
	cfg.engines = newEngineRegistry(func() *CitySyncEngine {
		return NewCitySyncEngine(cfg.repo, cfg.weather, cfg.logger)
	})
}
