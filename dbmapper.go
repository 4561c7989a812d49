package main

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cwiatrak/cityweather/internal/database"
)

// This file converts between the domain City and its database representation.
// The weather snapshot travels as a JSONB document; the optional timestamps
// map onto sql.NullTime, with the zero time.Time standing in for NULL on the
// domain side.

// databaseCityToCity converts a database.City to a City.
func databaseCityToCity(dbCity database.City) (City, error) {
	city := City{
		ID:   dbCity.ID,
		Name: dbCity.Name,
	}
	if dbCity.LastUpdated.Valid {
		city.LastUpdated = dbCity.LastUpdated.Time
	}
	if dbCity.DateAdded.Valid {
		city.DateAdded = dbCity.DateAdded.Time
	}
	if len(dbCity.LastWeather) > 0 && string(dbCity.LastWeather) != "null" {
		var snapshot WeatherSnapshot
		if err := json.Unmarshal(dbCity.LastWeather, &snapshot); err != nil {
			return City{}, fmt.Errorf("failed to decode stored weather for city %q: %w", dbCity.ID, err)
		}
		city.LastWeather = &snapshot
	}
	return city, nil
}

// cityToUpsertCityParams converts a City to database.UpsertCityParams scoped
// to the given user.
func cityToUpsertCityParams(userID string, city City) (database.UpsertCityParams, error) {
	params := database.UpsertCityParams{
		UserID: userID,
		ID:     city.ID,
		Name:   city.Name,
		LastUpdated: sql.NullTime{
			Time:  city.LastUpdated,
			Valid: !city.LastUpdated.IsZero(),
		},
		DateAdded: sql.NullTime{
			Time:  city.DateAdded,
			Valid: !city.DateAdded.IsZero(),
		},
	}
	// Cities without a snapshot store the jsonb null literal rather than a
	// SQL NULL, which json.RawMessage cannot scan.
	params.LastWeather = json.RawMessage("null")
	if city.LastWeather != nil {
		raw, err := json.Marshal(city.LastWeather)
		if err != nil {
			return database.UpsertCityParams{}, fmt.Errorf("failed to encode weather for city %q: %w", city.ID, err)
		}
		params.LastWeather = raw
	}
	return params, nil
}

// databaseProfileToUserProfile converts a database.Profile to a UserProfile.
func databaseProfileToUserProfile(dbProfile database.Profile) UserProfile {
	return UserProfile{
		UID:      dbProfile.Uid,
		FullName: dbProfile.FullName,
		HomeCity: dbProfile.HomeCity,
		Email:    dbProfile.Email,
	}
}

// userProfileToUpsertProfileParams converts a UserProfile to
// database.UpsertProfileParams.
func userProfileToUpsertProfileParams(profile UserProfile) database.UpsertProfileParams {
	return database.UpsertProfileParams{
		Uid:      profile.UID,
		FullName: profile.FullName,
		HomeCity: profile.HomeCity,
		Email:    profile.Email,
	}
}
