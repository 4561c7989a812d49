package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// This file provides city-name suggestions for the add-city search box,
// backed by the Open-Meteo geocoding API. The concrete client sits behind
// the SuggestionService interface, which keeps the search flow testable and
// the provider replaceable.

// SuggestionService defines the contract for geocoding a partial query into
// candidate cities. Implementations must honor ctx cancellation so a
// superseded search can be abandoned mid-flight.
type SuggestionService interface {
	Search(ctx context.Context, query string) ([]CitySuggestion, error)
}

// OpenMeteoGeocodingService is a SuggestionService that uses the Open-Meteo
// geocoding search endpoint.
type OpenMeteoGeocodingService struct {
	geocodeURL string
	limit      int
	httpClient *http.Client
}

// NewOpenMeteoGeocodingService creates a new OpenMeteoGeocodingService
// returning at most limit candidates per query.
func NewOpenMeteoGeocodingService(geocodeURL string, limit int, httpClient *http.Client) *OpenMeteoGeocodingService {
	return &OpenMeteoGeocodingService{
		geocodeURL: geocodeURL,
		limit:      limit,
		httpClient: httpClient,
	}
}

// Search returns candidate cities for the query, ordered as ranked by the
// source. An empty or whitespace-only query yields an empty result without
// touching the network.
func (s *OpenMeteoGeocodingService) Search(ctx context.Context, query string) ([]CitySuggestion, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []CitySuggestion{}, nil
	}

	baseURL, err := url.Parse(s.geocodeURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base geocode URL: %w", err)
	}

	q := baseURL.Query()
	q.Set("name", trimmed)
	q.Set("count", strconv.Itoa(s.limit))
	q.Set("language", "en")
	q.Set("format", "json")
	baseURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API request returned non-200 status: %s", resp.Status)
	}

	var responseJSON geocodeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&responseJSON); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	// The source omits "results" entirely for unknown names.
	suggestions := make([]CitySuggestion, 0, len(responseJSON.Results))
	for _, result := range responseJSON.Results {
		suggestions = append(suggestions, CitySuggestion{
			Name:    result.Name,
			Country: result.Country,
			Region:  result.Admin1,
		})
	}

	return suggestions, nil
}

// The following structs represent the structure of the Open-Meteo geocoding
// JSON response.
type geocodeSearchResponse struct {
	Results []geocodeResult `json:"results"`
}

type geocodeResult struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Admin1  string `json:"admin1"`
}
