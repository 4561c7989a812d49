package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwiatrak/cityweather/internal/database"
	"github.com/redis/go-redis/v9"
)

// This file implements the city repository: the per-user persistence boundary
// for tracked cities. The canonical store is PostgreSQL; a Redis entry per
// user caches the full list for the common read path and is invalidated on
// every write. All operations resolve the user from the request context and
// fail with ErrNotAuthenticated when no identity is bound.

// cityListCacheTTL bounds how long a cached city list may serve reads before
// falling back to the database.
const cityListCacheTTL = 5 * time.Minute

// CityRepository is the persistence contract for a user's tracked cities.
//
// UpsertCity is a whole-record replace: callers pass a fully-formed City.
// UpdateWeather is a read-modify-write that touches only the weather fields
// of an existing record. DeleteCity is idempotent. A zero-city user gets an
// empty list from ListCities, not an error.
type CityRepository interface {
	ListCities(ctx context.Context) ([]City, error)
	UpsertCity(ctx context.Context, city City) error
	UpdateWeather(ctx context.Context, cityName string, snapshot WeatherSnapshot) error
	DeleteCity(ctx context.Context, cityID string) error
}

// PostgresCityRepository is a CityRepository backed by PostgreSQL with a
// Redis list cache in front of reads.
type PostgresCityRepository struct {
	db       dbQuerier
	cache    Cache
	identity IdentityProvider
	logger   *slog.Logger
	now      func() time.Time
}

// NewPostgresCityRepository creates a new PostgresCityRepository.
func NewPostgresCityRepository(db dbQuerier, cache Cache, identity IdentityProvider, logger *slog.Logger) *PostgresCityRepository {
	return &PostgresCityRepository{
		db:       db,
		cache:    cache,
		identity: identity,
		logger:   logger,
		now:      time.Now,
	}
}

func cityListCacheKey(userID string) string {
	return "cities:" + userID
}

// ListCities returns every city tracked by the current user, ordered by
// date added (records without one first). Serves from the Redis cache when a
// fresh entry exists.
func (r *PostgresCityRepository) ListCities(ctx context.Context) ([]City, error) {
	userID, err := r.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}

	cacheKey := cityListCacheKey(userID)
	cachedData, err := r.cache.Get(ctx, cacheKey)
	if err == nil {
		var cities []City
		if jsonErr := json.Unmarshal([]byte(cachedData), &cities); jsonErr == nil {
			r.logger.Debug("city list cache hit", "key", cacheKey)
			return cities, nil
		} else {
			r.logger.Warn("invalid city list cache entry", "key", cacheKey, "error", jsonErr)
		}
	} else if err != redis.Nil {
		r.logger.Warn("error getting city list from redis", "key", cacheKey, "error", err)
	}

	dbCities, err := r.db.ListCitiesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("database error when listing cities: %w", err)
	}

	cities := make([]City, 0, len(dbCities))
	for _, dbCity := range dbCities {
		city, convErr := databaseCityToCity(dbCity)
		if convErr != nil {
			// An undecodable record must not take the rest of the list down.
			r.logger.Warn("skipping undecodable city record", "user", userID, "city", dbCity.ID, "error", convErr)
			continue
		}
		cities = append(cities, city)
	}

	if cacheErr := r.cache.Set(ctx, cacheKey, cities, cityListCacheTTL); cacheErr != nil {
		r.logger.Warn("error setting city list to redis", "key", cacheKey, "error", cacheErr)
	}

	return cities, nil
}

// UpsertCity inserts or fully overwrites the record with the city's id.
func (r *PostgresCityRepository) UpsertCity(ctx context.Context, city City) error {
	userID, err := r.identity.UserID(ctx)
	if err != nil {
		return err
	}

	params, err := cityToUpsertCityParams(userID, city)
	if err != nil {
		return err
	}
	if _, err := r.db.UpsertCity(ctx, params); err != nil {
		return fmt.Errorf("failed to save city %q: %w", city.Name, err)
	}

	r.invalidate(ctx, userID)
	return nil
}

// UpdateWeather stores a fresh snapshot on the record matching cityName,
// preserving every other field of the existing record. When no record exists
// it falls back to creating one stamped with the current time as its date
// added; the refresh flow can race the add flow here, so the synthesized
// record is logged.
func (r *PostgresCityRepository) UpdateWeather(ctx context.Context, cityName string, snapshot WeatherSnapshot) error {
	userID, err := r.identity.UserID(ctx)
	if err != nil {
		return err
	}

	id, err := cityID(cityName)
	if err != nil {
		return err
	}

	now := r.now().UTC()
	city := City{
		ID:          id,
		Name:        cityName,
		LastWeather: &snapshot,
		LastUpdated: now,
		DateAdded:   now,
	}

	existing, err := r.db.GetCity(ctx, database.GetCityParams{UserID: userID, ID: id})
	switch {
	case err == nil:
		existingCity, convErr := databaseCityToCity(existing)
		if convErr != nil {
			r.logger.Warn("existing city record undecodable, overwriting", "user", userID, "city", id, "error", convErr)
		} else {
			existingCity.LastWeather = &snapshot
			existingCity.LastUpdated = now
			city = existingCity
		}
	case errors.Is(err, sql.ErrNoRows):
		r.logger.Warn("weather update for untracked city, synthesizing record", "user", userID, "city", id)
	default:
		return fmt.Errorf("database error when fetching city %q before update: %w", id, err)
	}

	params, err := cityToUpsertCityParams(userID, city)
	if err != nil {
		return err
	}
	if _, err := r.db.UpsertCity(ctx, params); err != nil {
		return fmt.Errorf("failed to update weather for city %q: %w", cityName, err)
	}

	r.invalidate(ctx, userID)
	return nil
}

// DeleteCity removes the record with the given id. Deleting an id that does
// not exist is not an error.
func (r *PostgresCityRepository) DeleteCity(ctx context.Context, cityID string) error {
	userID, err := r.identity.UserID(ctx)
	if err != nil {
		return err
	}

	if err := r.db.DeleteCity(ctx, database.DeleteCityParams{UserID: userID, ID: cityID}); err != nil {
		return fmt.Errorf("failed to delete city %q: %w", cityID, err)
	}

	r.invalidate(ctx, userID)
	return nil
}

func (r *PostgresCityRepository) invalidate(ctx context.Context, userID string) {
	key := cityListCacheKey(userID)
	if err := r.cache.Del(ctx, key); err != nil {
		r.logger.Warn("error invalidating city list cache", "key", key, "error", err)
	}
}
