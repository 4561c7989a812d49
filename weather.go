package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// This file provides the application's weather-fetching capability: current
// conditions for a free-text city name, retrieved from OpenWeatherMap. The
// concrete client sits behind the WeatherService interface so the sync engine
// can be tested against a double and the source can be swapped out.
//
// The service performs exactly one request per call. It does not retry and it
// does not cache; freshness policy belongs to the caller and caching belongs
// to the repository.

// ErrCityNotFound is returned when the weather source has no match for the
// requested city name.
var ErrCityNotFound = errors.New("no matching city at the weather source")

// ErrMalformedResponse is returned when the weather source answers with a
// body that does not match the expected shape. Unlike a transport failure it
// is not worth retrying until the source format has been re-verified.
var ErrMalformedResponse = errors.New("unexpected weather response shape")

// WeatherService defines the contract for fetching current conditions by
// city name.
type WeatherService interface {
	FetchCurrent(ctx context.Context, cityName string) (WeatherSnapshot, error)
}

// OWMWeatherService is a WeatherService backed by OpenWeatherMap's current
// weather API.
type OWMWeatherService struct {
	owmKey        string
	owmWeatherURL string
	httpClient    *http.Client
}

// NewOWMWeatherService creates a new OWMWeatherService.
func NewOWMWeatherService(owmKey, owmWeatherURL string, httpClient *http.Client) *OWMWeatherService {
	return &OWMWeatherService{
		owmKey:        owmKey,
		owmWeatherURL: owmWeatherURL,
		httpClient:    httpClient,
	}
}

// FetchCurrent requests current conditions for cityName with metric units and
// maps the response onto a WeatherSnapshot.
func (s *OWMWeatherService) FetchCurrent(ctx context.Context, cityName string) (WeatherSnapshot, error) {
	baseURL, err := url.Parse(s.owmWeatherURL)
	if err != nil {
		return WeatherSnapshot{}, fmt.Errorf("failed to parse base weather URL: %w", err)
	}

	q := baseURL.Query()
	q.Set("q", cityName)
	q.Set("appid", s.owmKey)
	q.Set("units", "metric")
	baseURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return WeatherSnapshot{}, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		weatherFetchesTotal.WithLabelValues("transport_error").Inc()
		return WeatherSnapshot{}, fmt.Errorf("weather API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		weatherFetchesTotal.WithLabelValues("not_found").Inc()
		return WeatherSnapshot{}, fmt.Errorf("city %q: %w", cityName, ErrCityNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		weatherFetchesTotal.WithLabelValues("api_error").Inc()
		return WeatherSnapshot{}, fmt.Errorf("weather API request returned non-200 status: %s", resp.Status)
	}

	var responseJSON owmCurrentResponse
	if err := json.NewDecoder(resp.Body).Decode(&responseJSON); err != nil {
		weatherFetchesTotal.WithLabelValues("malformed").Inc()
		return WeatherSnapshot{}, fmt.Errorf("failed to decode weather response: %w: %w", ErrMalformedResponse, err)
	}
	if len(responseJSON.Weather) == 0 {
		weatherFetchesTotal.WithLabelValues("malformed").Inc()
		return WeatherSnapshot{}, fmt.Errorf("weather response carries no condition entry: %w", ErrMalformedResponse)
	}
	weatherFetchesTotal.WithLabelValues("ok").Inc()

	snapshot := WeatherSnapshot{
		CityName:       responseJSON.Name,
		CountryCode:    responseJSON.Sys.Country,
		Temperature:    responseJSON.Main.Temp,
		FeelsLike:      responseJSON.Main.FeelsLike,
		TempMin:        responseJSON.Main.TempMin,
		TempMax:        responseJSON.Main.TempMax,
		Humidity:       responseJSON.Main.Humidity,
		Pressure:       responseJSON.Main.Pressure,
		WindSpeed:      responseJSON.Wind.Speed,
		Condition:      responseJSON.Weather[0].Main,
		Description:    responseJSON.Weather[0].Description,
		Icon:           responseJSON.Weather[0].Icon,
		Sunrise:        responseJSON.Sys.Sunrise,
		Sunset:         responseJSON.Sys.Sunset,
		TimezoneOffset: responseJSON.Timezone,
		Visibility:     responseJSON.Visibility,
	}

	return snapshot, nil
}

// The following structs represent the structure of the OpenWeatherMap current
// weather JSON response. Field renames like "feels_like" are mapped
// explicitly here, at the decode boundary.
type owmCurrentResponse struct {
	Name       string          `json:"name"`
	Sys        owmSys          `json:"sys"`
	Main       owmMain         `json:"main"`
	Weather    []owmCondition  `json:"weather"`
	Wind       owmWind         `json:"wind"`
	Visibility int             `json:"visibility"`
	Timezone   int             `json:"timezone"`
}

type owmSys struct {
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Humidity  int     `json:"humidity"`
	Pressure  int     `json:"pressure"`
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmWind struct {
	Speed float64 `json:"speed"`
}
