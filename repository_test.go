package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cwiatrak/cityweather/internal/database"
)

func newTestRepository(t *testing.T, uid string) (*PostgresCityRepository, *mockQuerier, *mockCache) {
	t.Helper()
	mockDB := &mockQuerier{t: t}
	cache := &mockCache{}
	repo := NewPostgresCityRepository(mockDB, cache, staticIdentity{uid: uid}, newTestLogger())
	return repo, mockDB, cache
}

func mustCityRow(t *testing.T, userID, id, name string, snapshot *WeatherSnapshot, dateAdded time.Time) database.City {
	t.Helper()
	row := database.City{
		UserID: userID,
		ID:     id,
		Name:   name,
		DateAdded: sql.NullTime{
			Time:  dateAdded,
			Valid: !dateAdded.IsZero(),
		},
	}
	if snapshot != nil {
		raw, err := json.Marshal(snapshot)
		if err != nil {
			t.Fatalf("failed to encode snapshot: %v", err)
		}
		row.LastWeather = raw
		row.LastUpdated = sql.NullTime{Time: dateAdded, Valid: true}
	}
	return row
}

func TestListCities_Unauthenticated(t *testing.T) {
	mockDB := &mockQuerier{t: t}
	repo := NewPostgresCityRepository(mockDB, &mockCache{}, staticIdentity{err: ErrNotAuthenticated}, newTestLogger())

	_, err := repo.ListCities(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

func TestListCities_CacheHit(t *testing.T) {
	repo, _, cache := newTestRepository(t, "user-1")

	cached := []City{{ID: "oslo", Name: "Oslo"}}
	cachedJSON, _ := json.Marshal(cached)
	cache.getFunc = func(ctx context.Context, key string) (string, error) {
		if key != "cities:user-1" {
			t.Errorf("Expected cache key 'cities:user-1', got %q", key)
		}
		return string(cachedJSON), nil
	}

	cities, err := repo.ListCities(context.Background())
	if err != nil {
		t.Fatalf("ListCities() returned an unexpected error: %v", err)
	}
	if len(cities) != 1 || cities[0].ID != "oslo" {
		t.Errorf("Expected the cached list, got %+v", cities)
	}
}

func TestListCities_CacheMissFallsBackToDB(t *testing.T) {
	repo, mockDB, cache := newTestRepository(t, "user-1")

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	snapshot := testSnapshot("Oslo")
	mockDB.ListCitiesByUserFunc = func(ctx context.Context, userID string) ([]database.City, error) {
		if userID != "user-1" {
			t.Errorf("Expected user id 'user-1', got %q", userID)
		}
		return []database.City{
			mustCityRow(t, userID, "oslo", "Oslo", &snapshot, base),
			mustCityRow(t, userID, "lima", "Lima", nil, time.Time{}),
		}, nil
	}

	var setKey string
	var setValue any
	cache.setFunc = func(ctx context.Context, key string, value any, expiration time.Duration) error {
		setKey = key
		setValue = value
		if expiration != cityListCacheTTL {
			t.Errorf("Expected TTL %v, got %v", cityListCacheTTL, expiration)
		}
		return nil
	}

	cities, err := repo.ListCities(context.Background())
	if err != nil {
		t.Fatalf("ListCities() returned an unexpected error: %v", err)
	}
	if len(cities) != 2 {
		t.Fatalf("Expected 2 cities, got %d", len(cities))
	}
	if cities[0].LastWeather == nil || cities[0].LastWeather.CityName != "Oslo" {
		t.Errorf("Expected the snapshot to round-trip, got %+v", cities[0].LastWeather)
	}
	if cities[1].LastWeather != nil {
		t.Errorf("Expected no snapshot on a weatherless record, got %+v", cities[1].LastWeather)
	}
	if !cities[1].DateAdded.IsZero() {
		t.Errorf("Expected a NULL date added to map to the zero time, got %v", cities[1].DateAdded)
	}

	if setKey != "cities:user-1" {
		t.Errorf("Expected the result to be cached under 'cities:user-1', got %q", setKey)
	}
	if setValue == nil {
		t.Error("Expected the fetched list to be written to the cache")
	}
}

func TestListCities_UndecodableRecordSkipped(t *testing.T) {
	repo, mockDB, _ := newTestRepository(t, "user-1")

	mockDB.ListCitiesByUserFunc = func(ctx context.Context, userID string) ([]database.City, error) {
		good := mustCityRow(t, userID, "oslo", "Oslo", nil, time.Time{})
		bad := database.City{UserID: userID, ID: "paris", Name: "Paris", LastWeather: json.RawMessage(`{broken`)}
		return []database.City{bad, good}, nil
	}

	cities, err := repo.ListCities(context.Background())
	if err != nil {
		t.Fatalf("ListCities() returned an unexpected error: %v", err)
	}
	if len(cities) != 1 || cities[0].ID != "oslo" {
		t.Errorf("Expected the undecodable record to be skipped, got %+v", cities)
	}
}

func TestUpsertCity_InvalidatesCache(t *testing.T) {
	repo, mockDB, cache := newTestRepository(t, "user-1")

	var gotParams database.UpsertCityParams
	mockDB.UpsertCityFunc = func(ctx context.Context, arg database.UpsertCityParams) (database.City, error) {
		gotParams = arg
		return database.City{}, nil
	}
	delCalled := false
	cache.delFunc = func(ctx context.Context, key string) error {
		delCalled = true
		if key != "cities:user-1" {
			t.Errorf("Expected invalidation of 'cities:user-1', got %q", key)
		}
		return nil
	}

	snapshot := testSnapshot("Paris")
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	city := City{ID: "paris", Name: "Paris", LastWeather: &snapshot, LastUpdated: now, DateAdded: now}

	if err := repo.UpsertCity(context.Background(), city); err != nil {
		t.Fatalf("UpsertCity() returned an unexpected error: %v", err)
	}

	if gotParams.UserID != "user-1" || gotParams.ID != "paris" || gotParams.Name != "Paris" {
		t.Errorf("Unexpected upsert params: %+v", gotParams)
	}
	if !gotParams.DateAdded.Valid || !gotParams.DateAdded.Time.Equal(now) {
		t.Errorf("Expected date added %v, got %+v", now, gotParams.DateAdded)
	}
	if len(gotParams.LastWeather) == 0 {
		t.Error("Expected the snapshot to be stored as JSON")
	}
	if !delCalled {
		t.Error("Expected the list cache to be invalidated")
	}
}

func TestUpdateWeather_PreservesExistingFields(t *testing.T) {
	repo, mockDB, cache := newTestRepository(t, "user-1")
	cache.delFunc = func(ctx context.Context, key string) error { return nil }

	dateAdded := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	oldSnapshot := testSnapshot("Paris")
	oldSnapshot.Temperature = 5

	mockDB.GetCityFunc = func(ctx context.Context, arg database.GetCityParams) (database.City, error) {
		if arg.UserID != "user-1" || arg.ID != "paris" {
			t.Errorf("Unexpected GetCity params: %+v", arg)
		}
		return mustCityRow(t, arg.UserID, "paris", "Paris", &oldSnapshot, dateAdded), nil
	}

	var gotParams database.UpsertCityParams
	mockDB.UpsertCityFunc = func(ctx context.Context, arg database.UpsertCityParams) (database.City, error) {
		gotParams = arg
		return database.City{}, nil
	}

	fixed := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	fresh := testSnapshot("Paris")
	fresh.Temperature = 28
	if err := repo.UpdateWeather(context.Background(), "Paris", fresh); err != nil {
		t.Fatalf("UpdateWeather() returned an unexpected error: %v", err)
	}

	if !gotParams.DateAdded.Valid || !gotParams.DateAdded.Time.Equal(dateAdded) {
		t.Errorf("Expected date added to be preserved as %v, got %+v", dateAdded, gotParams.DateAdded)
	}
	if !gotParams.LastUpdated.Valid || !gotParams.LastUpdated.Time.Equal(fixed) {
		t.Errorf("Expected last updated %v, got %+v", fixed, gotParams.LastUpdated)
	}
	var storedSnapshot WeatherSnapshot
	if err := json.Unmarshal(gotParams.LastWeather, &storedSnapshot); err != nil {
		t.Fatalf("Stored snapshot does not decode: %v", err)
	}
	if storedSnapshot.Temperature != 28 {
		t.Errorf("Expected the fresh snapshot to be stored, got %+v", storedSnapshot)
	}
}

func TestUpdateWeather_SynthesizesMissingRecord(t *testing.T) {
	repo, mockDB, cache := newTestRepository(t, "user-1")
	cache.delFunc = func(ctx context.Context, key string) error { return nil }

	mockDB.GetCityFunc = func(ctx context.Context, arg database.GetCityParams) (database.City, error) {
		return database.City{}, sql.ErrNoRows
	}

	var gotParams database.UpsertCityParams
	mockDB.UpsertCityFunc = func(ctx context.Context, arg database.UpsertCityParams) (database.City, error) {
		gotParams = arg
		return database.City{}, nil
	}

	fixed := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	if err := repo.UpdateWeather(context.Background(), "Paris", testSnapshot("Paris")); err != nil {
		t.Fatalf("UpdateWeather() returned an unexpected error: %v", err)
	}

	if gotParams.ID != "paris" || gotParams.Name != "Paris" {
		t.Errorf("Unexpected synthesized record: %+v", gotParams)
	}
	if !gotParams.DateAdded.Valid || !gotParams.DateAdded.Time.Equal(fixed) {
		t.Errorf("Expected the synthesized record to be stamped %v, got %+v", fixed, gotParams.DateAdded)
	}
}

func TestDeleteCity(t *testing.T) {
	repo, mockDB, cache := newTestRepository(t, "user-1")

	var gotParams database.DeleteCityParams
	mockDB.DeleteCityFunc = func(ctx context.Context, arg database.DeleteCityParams) error {
		gotParams = arg
		return nil
	}
	delCalled := false
	cache.delFunc = func(ctx context.Context, key string) error {
		delCalled = true
		return nil
	}

	if err := repo.DeleteCity(context.Background(), "oslo"); err != nil {
		t.Fatalf("DeleteCity() returned an unexpected error: %v", err)
	}
	if gotParams.UserID != "user-1" || gotParams.ID != "oslo" {
		t.Errorf("Unexpected delete params: %+v", gotParams)
	}
	if !delCalled {
		t.Error("Expected the list cache to be invalidated")
	}
}
