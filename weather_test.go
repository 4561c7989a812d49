package main

import (
	"context"
	"embed"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

//go:embed testdata/*.json
var testData embed.FS

func setupMockServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}

func TestFetchCurrent(t *testing.T) {
	var gotQuery map[string]string
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"q":     r.URL.Query().Get("q"),
			"appid": r.URL.Query().Get("appid"),
			"units": r.URL.Query().Get("units"),
		}
		data, err := testData.ReadFile("testdata/current_weather_owm.json")
		if err != nil {
			t.Fatalf("Failed to read test data: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})
	defer server.Close()

	service := NewOWMWeatherService("dummy-key", server.URL+"/", server.Client())

	snapshot, err := service.FetchCurrent(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("FetchCurrent() returned an unexpected error: %v", err)
	}

	if gotQuery["q"] != "Paris" {
		t.Errorf("Expected query param q 'Paris', got '%s'", gotQuery["q"])
	}
	if gotQuery["appid"] != "dummy-key" {
		t.Errorf("Expected query param appid 'dummy-key', got '%s'", gotQuery["appid"])
	}
	if gotQuery["units"] != "metric" {
		t.Errorf("Expected query param units 'metric', got '%s'", gotQuery["units"])
	}

	if snapshot.CityName != "Paris" {
		t.Errorf("Expected city name 'Paris', got '%s'", snapshot.CityName)
	}
	if snapshot.CountryCode != "FR" {
		t.Errorf("Expected country code 'FR', got '%s'", snapshot.CountryCode)
	}
	if math.Abs(snapshot.Temperature-21.34) > 0.0001 {
		t.Errorf("Expected temperature 21.34, got %f", snapshot.Temperature)
	}
	if math.Abs(snapshot.FeelsLike-21.05) > 0.0001 {
		t.Errorf("Expected feels-like 21.05, got %f", snapshot.FeelsLike)
	}
	if snapshot.Humidity != 57 {
		t.Errorf("Expected humidity 57, got %d", snapshot.Humidity)
	}
	if snapshot.Pressure != 1016 {
		t.Errorf("Expected pressure 1016, got %d", snapshot.Pressure)
	}
	if snapshot.Condition != "Clouds" {
		t.Errorf("Expected condition 'Clouds', got '%s'", snapshot.Condition)
	}
	if snapshot.Description != "broken clouds" {
		t.Errorf("Expected description 'broken clouds', got '%s'", snapshot.Description)
	}
	if snapshot.Icon != "04d" {
		t.Errorf("Expected icon '04d', got '%s'", snapshot.Icon)
	}
	if snapshot.Sunrise != 1756614392 {
		t.Errorf("Expected sunrise 1756614392, got %d", snapshot.Sunrise)
	}
	if snapshot.Sunset != 1756662744 {
		t.Errorf("Expected sunset 1756662744, got %d", snapshot.Sunset)
	}
	if snapshot.TimezoneOffset != 7200 {
		t.Errorf("Expected timezone offset 7200, got %d", snapshot.TimezoneOffset)
	}
	if snapshot.Visibility != 10000 {
		t.Errorf("Expected visibility 10000, got %d", snapshot.Visibility)
	}
}

func TestFetchCurrent_CityNotFound(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})
	defer server.Close()

	service := NewOWMWeatherService("dummy-key", server.URL+"/", server.Client())

	_, err := service.FetchCurrent(context.Background(), "nonexistentcity")
	if !errors.Is(err, ErrCityNotFound) {
		t.Errorf("Expected ErrCityNotFound, but got %v", err)
	}
}

func TestFetchCurrent_APIError(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	service := NewOWMWeatherService("dummy-key", server.URL+"/", server.Client())

	_, err := service.FetchCurrent(context.Background(), "Paris")
	if err == nil {
		t.Fatal("Expected an error, but got nil")
	}
	if errors.Is(err, ErrCityNotFound) {
		t.Errorf("A 500 must not map to ErrCityNotFound, but got %v", err)
	}
}

func TestFetchCurrent_MalformedJSON(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"weather": [invalid]`))
	})
	defer server.Close()

	service := NewOWMWeatherService("dummy-key", server.URL+"/", server.Client())

	_, err := service.FetchCurrent(context.Background(), "Paris")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, but got %v", err)
	}
}

func TestFetchCurrent_EmptyConditions(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"name":"Paris","weather":[],"main":{"temp":20}}`))
	})
	defer server.Close()

	service := NewOWMWeatherService("dummy-key", server.URL+"/", server.Client())

	_, err := service.FetchCurrent(context.Background(), "Paris")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, but got %v", err)
	}
}
