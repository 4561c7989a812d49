package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// This file contains the city synchronization engine: the single owner of a
// user's in-memory city list. It orchestrates the repository and the weather
// service for loading, adding, refreshing and deleting cities, and exposes
// the observable state (sorted list, loading flag, last error) the UI renders.
//
// All state mutations go through the engine's mutex; network calls run with
// the mutex released, so concurrently issued operations interleave at the
// granularity of individual provider calls. Operations are not queued.

// errCityNotTracked is returned by single-city operations when the given id
// is not in the in-memory list.
var errCityNotTracked = errors.New("city is not tracked")

// CitySyncEngine reconciles the persisted city list with live weather data.
type CitySyncEngine struct {
	repo    CityRepository
	weather WeatherService
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	cities    []City
	loaded    bool
	isLoading bool
	lastError string
}

// NewCitySyncEngine creates a new CitySyncEngine with an empty list.
func NewCitySyncEngine(repo CityRepository, weather WeatherService, logger *slog.Logger) *CitySyncEngine {
	return &CitySyncEngine{
		repo:    repo,
		weather: weather,
		logger:  logger,
		now:     time.Now,
	}
}

// sortCitiesByDateAdded orders cities ascending by the time they were added.
// A record without a date added sorts before all dated ones; ties keep their
// relative input order.
func sortCitiesByDateAdded(cities []City) {
	sort.SliceStable(cities, func(i, j int) bool {
		return cities[i].DateAdded.Before(cities[j].DateAdded)
	})
}

// State returns a copy of the engine's observable state.
func (e *CitySyncEngine) State() CityListResponse {
	e.mu.Lock()
	defer e.mu.Unlock()
	cities := make([]City, len(e.cities))
	copy(cities, e.cities)
	return CityListResponse{
		Cities:    cities,
		IsLoading: e.isLoading,
		LastError: e.lastError,
	}
}

func (e *CitySyncEngine) beginOperation() {
	e.mu.Lock()
	e.isLoading = true
	e.mu.Unlock()
}

func (e *CitySyncEngine) failOperation(msg string) {
	e.mu.Lock()
	e.isLoading = false
	e.lastError = msg
	e.mu.Unlock()
}

// Load replaces the in-memory list with the repository's contents, sorted by
// date added. On failure the previous list is kept so a transient error never
// blanks an already loaded view.
func (e *CitySyncEngine) Load(ctx context.Context) error {
	e.beginOperation()

	cities, err := e.repo.ListCities(ctx)
	if err != nil {
		e.logger.Error("failed to load cities", "error", err)
		e.failOperation("could not load your cities")
		return err
	}

	sortCitiesByDateAdded(cities)

	e.mu.Lock()
	e.cities = cities
	e.loaded = true
	e.isLoading = false
	e.lastError = ""
	e.mu.Unlock()
	return nil
}

// EnsureLoaded performs the initial load from the repository if the engine
// has never loaded successfully. Subsequent calls are no-ops.
func (e *CitySyncEngine) EnsureLoaded(ctx context.Context) error {
	e.mu.Lock()
	loaded := e.loaded
	e.mu.Unlock()
	if loaded {
		return nil
	}
	return e.Load(ctx)
}

// AddCity fetches current weather for the named city, persists a fully
// populated record and reloads the list so the view reflects canonical
// store state (this also collapses id collisions between spellings).
// An empty or whitespace-only name is a no-op.
func (e *CitySyncEngine) AddCity(ctx context.Context, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil
	}

	id, err := cityID(trimmed)
	if err != nil {
		e.failOperation(fmt.Sprintf("invalid city name %q", name))
		return err
	}

	e.beginOperation()

	snapshot, err := e.weather.FetchCurrent(ctx, trimmed)
	if err != nil {
		e.logger.Warn("failed to fetch weather for new city", "city", trimmed, "error", err)
		e.failOperation(fmt.Sprintf("could not fetch weather for %q", trimmed))
		return err
	}

	now := e.now().UTC()
	city := City{
		ID:          id,
		Name:        trimmed,
		LastWeather: &snapshot,
		LastUpdated: now,
		DateAdded:   now,
	}

	if err := e.repo.UpsertCity(ctx, city); err != nil {
		e.logger.Error("failed to save new city", "city", trimmed, "error", err)
		e.failOperation(fmt.Sprintf("could not save %q", trimmed))
		return err
	}

	return e.Load(ctx)
}

// RefreshAll fetches fresh weather for every tracked city, one city at a
// time. A city whose fetch fails keeps its previous snapshot; the batch
// always runs to completion and the loading flag clears only after the full
// pass. Saves are fire-and-forget: the store catches up in the background
// and reconverges on the next load.
func (e *CitySyncEngine) RefreshAll(ctx context.Context) {
	e.mu.Lock()
	if len(e.cities) == 0 {
		e.mu.Unlock()
		return
	}
	e.isLoading = true
	snapshot := make([]City, len(e.cities))
	copy(snapshot, e.cities)
	e.mu.Unlock()

	updated := make([]City, 0, len(snapshot))
	failureMsg := ""
	for _, city := range snapshot {
		fresh, err := e.weather.FetchCurrent(ctx, city.Name)
		if err != nil {
			e.logger.Warn("failed to refresh weather", "city", city.Name, "error", err)
			failureMsg = fmt.Sprintf("could not refresh weather for %q", city.Name)
			updated = append(updated, city)
			continue
		}

		next := city
		next.LastWeather = &fresh
		next.LastUpdated = e.now().UTC()
		updated = append(updated, next)

		persistCtx := context.WithoutCancel(ctx)
		go func(c City) {
			if err := e.repo.UpsertCity(persistCtx, c); err != nil {
				e.logger.Error("failed to save refreshed city", "city", c.Name, "error", err)
			}
		}(next)
	}

	sortCitiesByDateAdded(updated)

	e.mu.Lock()
	e.cities = updated
	e.isLoading = false
	e.lastError = failureMsg
	e.mu.Unlock()
}

// RefreshCity fetches fresh weather for a single tracked city (the detail
// screen's pull-to-refresh) and persists it through the field-preserving
// update path.
func (e *CitySyncEngine) RefreshCity(ctx context.Context, cityID string) error {
	e.mu.Lock()
	var name string
	for _, city := range e.cities {
		if city.ID == cityID {
			name = city.Name
			break
		}
	}
	e.mu.Unlock()

	if name == "" {
		return fmt.Errorf("city %q: %w", cityID, errCityNotTracked)
	}

	e.beginOperation()

	fresh, err := e.weather.FetchCurrent(ctx, name)
	if err != nil {
		e.logger.Warn("failed to refresh weather", "city", name, "error", err)
		e.failOperation(fmt.Sprintf("could not refresh weather for %q", name))
		return err
	}

	now := e.now().UTC()
	e.mu.Lock()
	for i := range e.cities {
		if e.cities[i].ID == cityID {
			e.cities[i].LastWeather = &fresh
			e.cities[i].LastUpdated = now
			break
		}
	}
	e.isLoading = false
	e.lastError = ""
	e.mu.Unlock()

	persistCtx := context.WithoutCancel(ctx)
	go func() {
		if err := e.repo.UpdateWeather(persistCtx, name, fresh); err != nil {
			e.logger.Error("failed to save refreshed weather", "city", name, "error", err)
		}
	}()
	return nil
}

// Delete removes the city from the in-memory list immediately and issues the
// store delete in the background. A failed store delete is logged but never
// rolls the removal back; the store reconverges on the next load.
func (e *CitySyncEngine) Delete(ctx context.Context, cityID string) {
	e.mu.Lock()
	kept := e.cities[:0:0]
	for _, city := range e.cities {
		if city.ID != cityID {
			kept = append(kept, city)
		}
	}
	e.cities = kept
	e.lastError = ""
	e.mu.Unlock()

	persistCtx := context.WithoutCancel(ctx)
	go func() {
		if err := e.repo.DeleteCity(persistCtx, cityID); err != nil {
			e.logger.Error("failed to delete city", "city", cityID, "error", err)
		}
	}()
}
