package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cwiatrak/cityweather/internal/database"
	"github.com/redis/go-redis/v9"
)

// --- Mocks ---

// mockWeatherService is a mock for the WeatherService interface.
type mockWeatherService struct {
	FetchCurrentFunc func(ctx context.Context, cityName string) (WeatherSnapshot, error)
}

func (m *mockWeatherService) FetchCurrent(ctx context.Context, cityName string) (WeatherSnapshot, error) {
	if m.FetchCurrentFunc != nil {
		return m.FetchCurrentFunc(ctx, cityName)
	}
	return WeatherSnapshot{}, errors.New("FetchCurrentFunc not implemented in mock")
}

// mockSuggestionService is a mock for the SuggestionService interface.
type mockSuggestionService struct {
	SearchFunc func(ctx context.Context, query string) ([]CitySuggestion, error)
}

func (m *mockSuggestionService) Search(ctx context.Context, query string) ([]CitySuggestion, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return nil, errors.New("SearchFunc not implemented in mock")
}

// mockCityRepository is a mock for the CityRepository interface.
type mockCityRepository struct {
	ListCitiesFunc    func(ctx context.Context) ([]City, error)
	UpsertCityFunc    func(ctx context.Context, city City) error
	UpdateWeatherFunc func(ctx context.Context, cityName string, snapshot WeatherSnapshot) error
	DeleteCityFunc    func(ctx context.Context, cityID string) error
}

func (m *mockCityRepository) ListCities(ctx context.Context) ([]City, error) {
	if m.ListCitiesFunc != nil {
		return m.ListCitiesFunc(ctx)
	}
	return nil, errors.New("ListCitiesFunc not implemented in mock")
}

func (m *mockCityRepository) UpsertCity(ctx context.Context, city City) error {
	if m.UpsertCityFunc != nil {
		return m.UpsertCityFunc(ctx, city)
	}
	return nil
}

func (m *mockCityRepository) UpdateWeather(ctx context.Context, cityName string, snapshot WeatherSnapshot) error {
	if m.UpdateWeatherFunc != nil {
		return m.UpdateWeatherFunc(ctx, cityName, snapshot)
	}
	return nil
}

func (m *mockCityRepository) DeleteCity(ctx context.Context, cityID string) error {
	if m.DeleteCityFunc != nil {
		return m.DeleteCityFunc(ctx, cityID)
	}
	return nil
}

// mockCache is a mock for the Cache interface.
type mockCache struct {
	getFunc   func(ctx context.Context, key string) (string, error)
	setFunc   func(ctx context.Context, key string, value any, expiration time.Duration) error
	delFunc   func(ctx context.Context, key string) error
	flushFunc func(ctx context.Context) error
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	return "", redis.Nil
}

func (m *mockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, key, value, expiration)
	}
	return nil
}

func (m *mockCache) Del(ctx context.Context, key string) error {
	if m.delFunc != nil {
		return m.delFunc(ctx, key)
	}
	return nil
}

func (m *mockCache) Flush(ctx context.Context) error {
	if m.flushFunc != nil {
		return m.flushFunc(ctx)
	}
	return nil
}

// staticIdentity is an IdentityProvider that always resolves to a fixed user.
type staticIdentity struct {
	uid string
	err error
}

func (s staticIdentity) UserID(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.uid, nil
}

// mockQuerier is a comprehensive, safe mock for the dbQuerier interface.
// It fails the test if any unexpected method is called.
type mockQuerier struct {
	t *testing.T

	DeleteAllCitiesFunc  func(ctx context.Context) error
	DeleteCityFunc       func(ctx context.Context, arg database.DeleteCityParams) error
	GetCityFunc          func(ctx context.Context, arg database.GetCityParams) (database.City, error)
	GetProfileFunc       func(ctx context.Context, uid string) (database.Profile, error)
	ListCitiesByUserFunc func(ctx context.Context, userID string) ([]database.City, error)
	UpsertCityFunc       func(ctx context.Context, arg database.UpsertCityParams) (database.City, error)
	UpsertProfileFunc    func(ctx context.Context, arg database.UpsertProfileParams) (database.Profile, error)
}

func (m *mockQuerier) fail(method string) {
	m.t.Fatalf("unexpected call to mockQuerier method: %s", method)
}

func (m *mockQuerier) DeleteAllCities(ctx context.Context) error {
	if m.DeleteAllCitiesFunc != nil {
		return m.DeleteAllCitiesFunc(ctx)
	}
	m.fail("DeleteAllCities")
	return nil
}

func (m *mockQuerier) DeleteCity(ctx context.Context, arg database.DeleteCityParams) error {
	if m.DeleteCityFunc != nil {
		return m.DeleteCityFunc(ctx, arg)
	}
	m.fail("DeleteCity")
	return nil
}

func (m *mockQuerier) GetCity(ctx context.Context, arg database.GetCityParams) (database.City, error) {
	if m.GetCityFunc != nil {
		return m.GetCityFunc(ctx, arg)
	}
	m.fail("GetCity")
	return database.City{}, nil
}

func (m *mockQuerier) GetProfile(ctx context.Context, uid string) (database.Profile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, uid)
	}
	m.fail("GetProfile")
	return database.Profile{}, nil
}

func (m *mockQuerier) ListCitiesByUser(ctx context.Context, userID string) ([]database.City, error) {
	if m.ListCitiesByUserFunc != nil {
		return m.ListCitiesByUserFunc(ctx, userID)
	}
	m.fail("ListCitiesByUser")
	return nil, nil
}

func (m *mockQuerier) UpsertCity(ctx context.Context, arg database.UpsertCityParams) (database.City, error) {
	if m.UpsertCityFunc != nil {
		return m.UpsertCityFunc(ctx, arg)
	}
	m.fail("UpsertCity")
	return database.City{}, nil
}

func (m *mockQuerier) UpsertProfile(ctx context.Context, arg database.UpsertProfileParams) (database.Profile, error) {
	if m.UpsertProfileFunc != nil {
		return m.UpsertProfileFunc(ctx, arg)
	}
	m.fail("UpsertProfile")
	return database.Profile{}, nil
}

// --- Test fixtures ---

// testAPIConfig bundles an apiConfig wired to mocks for handler tests.
type testAPIConfig struct {
	apiConfig *apiConfig
	mockDB    *mockQuerier
	mockCache *mockCache
	mockRepo  *mockCityRepository
	weather   *mockWeatherService
	search    *mockSuggestionService
}

func newTestAPIConfig(t *testing.T) *testAPIConfig {
	t.Helper()

	mockDB := &mockQuerier{t: t}
	cache := &mockCache{}
	repo := &mockCityRepository{}
	weather := &mockWeatherService{}
	search := &mockSuggestionService{}

	cfg := &apiConfig{
		dbQueries:   mockDB,
		cache:       cache,
		weather:     weather,
		suggestions: search,
		identity:    NewContextIdentity(),
		repo:        repo,
		logger:      newTestLogger(),
	}
	cfg.profiles = NewProfileStore(mockDB, cfg.logger)
	cfg.engines = newEngineRegistry(func() *CitySyncEngine {
		return NewCitySyncEngine(repo, weather, cfg.logger)
	})

	return &testAPIConfig{
		apiConfig: cfg,
		mockDB:    mockDB,
		mockCache: cache,
		mockRepo:  repo,
		weather:   weather,
		search:    search,
	}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testSnapshot returns a populated snapshot for the given city name.
func testSnapshot(cityName string) WeatherSnapshot {
	return WeatherSnapshot{
		CityName:       cityName,
		CountryCode:    "FR",
		Temperature:    21.3,
		FeelsLike:      21.0,
		TempMin:        19.9,
		TempMax:        22.8,
		Humidity:       57,
		Pressure:       1016,
		WindSpeed:      4.1,
		Condition:      "Clouds",
		Description:    "broken clouds",
		Icon:           "04d",
		Sunrise:        1756614392,
		Sunset:         1756662744,
		TimezoneOffset: 7200,
		Visibility:     10000,
	}
}
