package main

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSchedulerStartAndStop(t *testing.T) {
	testCfg := newTestAPIConfig(t)

	s := NewScheduler(testCfg.apiConfig, 1*time.Hour)

	tick := make(chan time.Time)
	ran := make(chan struct{}, 1)
	s.refreshChan = tick
	s.refreshJobs = func() {
		ran <- struct{}{}
	}

	s.Start()

	tick <- time.Now()
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the refresh jobs to run")
	}

	s.Stop()
	time.Sleep(50 * time.Millisecond)

	// A tick after Stop must not trigger another run.
	select {
	case tick <- time.Now():
		select {
		case <-ran:
			t.Error("refresh jobs ran after Stop")
		case <-time.After(100 * time.Millisecond):
		}
	case <-time.After(100 * time.Millisecond):
		// The loop already exited and nobody is receiving; that's fine too.
	}
}

func TestRunRefreshJobs_RefreshesEveryActiveUser(t *testing.T) {
	testCfg := newTestAPIConfig(t)

	var mu sync.Mutex
	fetched := make(map[string]int)
	testCfg.weather.FetchCurrentFunc = func(ctx context.Context, cityName string) (WeatherSnapshot, error) {
		mu.Lock()
		fetched[cityName]++
		mu.Unlock()
		return testSnapshot(cityName), nil
	}
	testCfg.mockRepo.UpsertCityFunc = func(ctx context.Context, city City) error {
		return nil
	}

	// Two users with loaded lists, one city each.
	lists := map[string][]City{
		"user-a": {{ID: "oslo", Name: "Oslo"}},
		"user-b": {{ID: "tokyo", Name: "Tokyo"}},
	}
	for uid, cities := range lists {
		testCfg.mockRepo.ListCitiesFunc = func(ctx context.Context) ([]City, error) {
			return cities, nil
		}
		engine := testCfg.apiConfig.engines.engineFor(uid)
		if err := engine.Load(withUserID(context.Background(), uid)); err != nil {
			t.Fatalf("Load() for %s returned an unexpected error: %v", uid, err)
		}
	}

	s := NewScheduler(testCfg.apiConfig, 1*time.Hour)
	s.runRefreshJobs()

	mu.Lock()
	defer mu.Unlock()
	if fetched["Oslo"] != 1 || fetched["Tokyo"] != 1 {
		t.Errorf("expected one fetch per tracked city across users, got %v", fetched)
	}
}
