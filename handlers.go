package main

import (
	"encoding/json"
	"errors"
	"net/http"
)

// This file contains the main HTTP handlers for the application. Each handler
// resolves the caller's identity, grabs that user's sync engine from the
// registry, runs the requested operation and writes the engine's observable
// state back as JSON. The state payload is the same for every city endpoint
// so clients render list, loading flag and last error from a single shape.

// engineForRequest resolves the authenticated user's sync engine. The auth
// middleware guarantees a user id is present, so a miss here means the
// handler was mounted outside the authenticated chain.
func (cfg *apiConfig) engineForRequest(r *http.Request) (*CitySyncEngine, error) {
	uid, err := cfg.identity.UserID(r.Context())
	if err != nil {
		return nil, err
	}
	return cfg.engines.engineFor(uid), nil
}

// @Summary      List tracked cities
// @Description  Returns the caller's tracked cities sorted by the time they were added,
// @Description  together with the loading flag and the most recent operation error.
// @Description  The list is loaded from the store on the first request of a session.
// @Tags         cities
// @Produce      json
// @Success      200  {object}  CityListResponse
// @Failure      401  {object}  ErrorResponse "Unauthorized - missing bearer token"
// @Failure      500  {object}  ErrorResponse "Internal Server Error - initial load failed"
// @Router       /api/cities [get]
// @Security     BearerAuth
func (cfg *apiConfig) handlerListCities(w http.ResponseWriter, r *http.Request) {
	engine, err := cfg.engineForRequest(r)
	if err != nil {
		cfg.respondWithError(w, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	if err := engine.EnsureLoaded(r.Context()); err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error loading cities", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, engine.State())
}

// @Summary      Track a new city
// @Description  Fetches current weather for the given city name, saves the city and
// @Description  returns the updated list. Adding a different spelling of an already
// @Description  tracked city overwrites the existing record.
// @Tags         cities
// @Accept       json
// @Produce      json
// @Param        city body      AddCityRequest true "City to track"
// @Success      201  {object}  CityListResponse
// @Failure      400  {object}  ErrorResponse "Bad Request - empty or invalid city name"
// @Failure      404  {object}  ErrorResponse "Not Found - no such city at the weather source"
// @Failure      502  {object}  ErrorResponse "Bad Gateway - weather source unavailable"
// @Router       /api/cities [post]
// @Security     BearerAuth
func (cfg *apiConfig) handlerAddCity(w http.ResponseWriter, r *http.Request) {
	engine, err := cfg.engineForRequest(r)
	if err != nil {
		cfg.respondWithError(w, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	var req AddCityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		cfg.respondWithError(w, http.StatusBadRequest, "City name is required", nil)
		return
	}
	cfg.logger.Debug("add city request", "city", req.Name)

	if err := engine.EnsureLoaded(r.Context()); err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error loading cities", err)
		return
	}

	if err := engine.AddCity(r.Context(), req.Name); err != nil {
		switch {
		case errors.Is(err, ErrCityNotFound):
			cfg.respondWithError(w, http.StatusNotFound, "No such city at the weather source", err)
		case errors.Is(err, ErrMalformedResponse):
			cfg.respondWithError(w, http.StatusBadGateway, "Weather source returned an unusable response", err)
		default:
			cfg.respondWithError(w, http.StatusBadGateway, "Could not add city", err)
		}
		return
	}

	cfg.respondWithJSON(w, http.StatusCreated, engine.State())
}

// @Summary      Stop tracking a city
// @Description  Removes the city from the caller's list immediately. The store delete
// @Description  runs in the background; deleting an untracked city is a no-op.
// @Tags         cities
// @Produce      json
// @Param        id   path      string true "Canonical city id"
// @Success      200  {object}  CityListResponse
// @Failure      401  {object}  ErrorResponse "Unauthorized - missing bearer token"
// @Router       /api/cities/{id} [delete]
// @Security     BearerAuth
func (cfg *apiConfig) handlerDeleteCity(w http.ResponseWriter, r *http.Request) {
	engine, err := cfg.engineForRequest(r)
	if err != nil {
		cfg.respondWithError(w, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	id := r.PathValue("id")
	cfg.logger.Debug("delete city request", "city_id", id)
	engine.Delete(r.Context(), id)

	cfg.respondWithJSON(w, http.StatusOK, engine.State())
}

// @Summary      Refresh weather for all tracked cities
// @Description  Fetches fresh weather for every tracked city sequentially. Cities whose
// @Description  fetch fails keep their previous snapshot; the response reports the last
// @Description  failure while still carrying the refreshed list.
// @Tags         cities
// @Produce      json
// @Success      200  {object}  CityListResponse
// @Failure      401  {object}  ErrorResponse "Unauthorized - missing bearer token"
// @Failure      500  {object}  ErrorResponse "Internal Server Error - initial load failed"
// @Router       /api/cities/refresh [post]
// @Security     BearerAuth
func (cfg *apiConfig) handlerRefreshAll(w http.ResponseWriter, r *http.Request) {
	engine, err := cfg.engineForRequest(r)
	if err != nil {
		cfg.respondWithError(w, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	if err := engine.EnsureLoaded(r.Context()); err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error loading cities", err)
		return
	}

	engine.RefreshAll(r.Context())
	cfg.respondWithJSON(w, http.StatusOK, engine.State())
}

// @Summary      Refresh weather for one tracked city
// @Description  Fetches fresh weather for a single tracked city and persists it without
// @Description  touching the record's name or date added.
// @Tags         cities
// @Produce      json
// @Param        id   path      string true "Canonical city id"
// @Success      200  {object}  CityListResponse
// @Failure      404  {object}  ErrorResponse "Not Found - city is not tracked"
// @Failure      502  {object}  ErrorResponse "Bad Gateway - weather source unavailable"
// @Router       /api/cities/{id}/refresh [post]
// @Security     BearerAuth
func (cfg *apiConfig) handlerRefreshCity(w http.ResponseWriter, r *http.Request) {
	engine, err := cfg.engineForRequest(r)
	if err != nil {
		cfg.respondWithError(w, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	if err := engine.EnsureLoaded(r.Context()); err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error loading cities", err)
		return
	}

	id := r.PathValue("id")
	if err := engine.RefreshCity(r.Context(), id); err != nil {
		if errors.Is(err, errCityNotTracked) {
			cfg.respondWithError(w, http.StatusNotFound, "City is not tracked", err)
			return
		}
		cfg.respondWithError(w, http.StatusBadGateway, "Could not refresh weather", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, engine.State())
}

// @Summary      Search for cities
// @Description  Returns city name suggestions for a free-text query. A blank query
// @Description  yields an empty list without contacting the geocoding source.
// @Tags         search
// @Produce      json
// @Param        q    query     string true "Partial city name (e.g., 'Par')"
// @Success      200  {object}  SuggestionsResponse
// @Failure      502  {object}  ErrorResponse "Bad Gateway - geocoding source unavailable"
// @Router       /api/citysearch [get]
// @Security     BearerAuth
func (cfg *apiConfig) handlerCitySearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	cfg.logger.Debug("city search request", "query", query)

	suggestions, err := cfg.suggestions.Search(r.Context(), query)
	if err != nil {
		cfg.respondWithError(w, http.StatusBadGateway, "Error searching for cities", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

// @Summary      Get the caller's profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  UserProfile
// @Failure      404  {object}  ErrorResponse "Not Found - no profile saved yet"
// @Router       /api/profile [get]
// @Security     BearerAuth
func (cfg *apiConfig) handlerGetProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := cfg.identity.UserID(r.Context())
	if err != nil {
		cfg.respondWithError(w, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	profile, err := cfg.profiles.Get(r.Context(), uid)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			cfg.respondWithError(w, http.StatusNotFound, "Profile not found", nil)
			return
		}
		cfg.respondWithError(w, http.StatusInternalServerError, "Error loading profile", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, profile)
}

// @Summary      Save the caller's profile
// @Description  Creates or replaces the caller's profile. The profile's uid always
// @Description  comes from the bearer token, never from the request body.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        profile body  UserProfile true "Profile to save"
// @Success      200  {object}  UserProfile
// @Failure      400  {object}  ErrorResponse "Bad Request - invalid body"
// @Router       /api/profile [put]
// @Security     BearerAuth
func (cfg *apiConfig) handlerPutProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := cfg.identity.UserID(r.Context())
	if err != nil {
		cfg.respondWithError(w, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	var profile UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	profile.UID = uid

	if err := cfg.profiles.Save(r.Context(), profile); err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error saving profile", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, profile)
}

// handlerResetDB is a development-only endpoint that completely wipes the
// database and the Redis cache. Useful between manual test runs.

// @Summary      Reset database and cache (development only)
// @Description  Completely wipes the cities and profiles tables and the Redis cache.
// @Description  This endpoint is intended for development and testing purposes only.
// @Description  It should not be enabled in production environments.
// @Tags         development
// @Produce      json
// @Success	 	 200  {object}  map[string]string "Confirmation of reset. Example: `{\"status\":\"database and cache reset\"}`"
// @Failure	     500  {object}  ErrorResponse "Internal Server Error - Failed to reset database or cache"
// @Router       /dev/reset-db [post]
func (cfg *apiConfig) handlerResetDB(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}
	cfg.logger.Debug("database reset request received")

	ctx := r.Context()

	err := cfg.dbQueries.DeleteAllCities(ctx)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	err = cfg.cache.Flush(ctx)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Failed to flush cache", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, map[string]string{"status": "database and cache reset"})
}
