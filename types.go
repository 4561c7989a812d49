package main

import (
	"time"
)

// This file defines the domain types shared across the application: the
// tracked City, the weather snapshot cached on it, the ephemeral search
// suggestion and the user profile document.

// City is one tracked city in a user's list. The zero time.Time in
// LastUpdated or DateAdded means "not set"; LastWeather is nil exactly when
// LastUpdated is zero, since both are written together on every fetch.
type City struct {
	// ID is the case-folded form of Name and acts as the storage key.
	// Two spellings that fold to the same ID refer to the same record.
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	LastWeather *WeatherSnapshot `json:"last_weather,omitempty"`
	LastUpdated time.Time        `json:"last_updated,omitzero"`
	DateAdded   time.Time        `json:"date_added,omitzero"`
}

// WeatherSnapshot holds one set of current conditions as reported by the
// weather source. All temperatures are Celsius, pressure is hPa, wind speed
// is m/s. Sunrise and Sunset are unix seconds; TimezoneOffset is the
// location's offset from UTC in seconds and is authoritative for localizing
// any of the snapshot's times.
type WeatherSnapshot struct {
	CityName    string `json:"city_name"`
	CountryCode string `json:"country_code"`

	Temperature float64 `json:"temperature_c"`
	FeelsLike   float64 `json:"feels_like_c"`
	TempMin     float64 `json:"temp_min_c"`
	TempMax     float64 `json:"temp_max_c"`

	Humidity  int     `json:"humidity"`
	Pressure  int     `json:"pressure"`
	WindSpeed float64 `json:"wind_speed_ms"`

	Condition   string `json:"condition"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	Sunrise        int64 `json:"sunrise"`
	Sunset         int64 `json:"sunset"`
	TimezoneOffset int   `json:"timezone_offset"`

	// Visibility in metres, advisory only. Zero means not reported.
	Visibility int `json:"visibility,omitempty"`
}

// IsDaytime reports whether the given instant falls between the snapshot's
// sunrise and sunset.
func (w WeatherSnapshot) IsDaytime(at time.Time) bool {
	unix := at.Unix()
	return unix >= w.Sunrise && unix < w.Sunset
}

// CitySuggestion is a single geocoding candidate shown while the user types
// a city name. Suggestions are never persisted.
type CitySuggestion struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Region  string `json:"region,omitempty"`
}

// DisplayName renders the suggestion for a pick list, e.g.
// "Springfield, Illinois, US".
func (s CitySuggestion) DisplayName() string {
	if s.Region != "" {
		return s.Name + ", " + s.Region + ", " + s.Country
	}
	return s.Name + ", " + s.Country
}

// UserProfile is the per-user profile document.
type UserProfile struct {
	UID      string `json:"uid"`
	FullName string `json:"full_name"`
	HomeCity string `json:"home_city"`
	Email    string `json:"email"`
}

// CityListResponse is the JSON shape returned by the city list endpoint. It
// mirrors the engine's observable state.
type CityListResponse struct {
	Cities    []City `json:"cities"`
	IsLoading bool   `json:"is_loading"`
	LastError string `json:"last_error,omitempty"`
}

// SuggestionsResponse is the JSON shape returned by the city search endpoint.
type SuggestionsResponse struct {
	Suggestions []CitySuggestion `json:"suggestions"`
}

// AddCityRequest is the JSON body accepted when tracking a new city.
type AddCityRequest struct {
	Name string `json:"name"`
}

// ErrorResponse mirrors the payload written by respondWithError. It exists
// for API documentation purposes.
type ErrorResponse struct {
	Error string `json:"error"`
}
