package main

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Scheduler drives periodic background weather refreshes: on every tick it
// walks the active engines and runs a bulk refresh for each user's list.
type Scheduler struct {
	cfg         *apiConfig
	refreshChan <-chan time.Time
	stop        chan struct{}
	ticker      *time.Ticker
	refreshJobs func()
}

func NewScheduler(cfg *apiConfig, refreshInterval time.Duration) *Scheduler {
	ticker := time.NewTicker(refreshInterval)
	s := &Scheduler{
		cfg:         cfg,
		refreshChan: ticker.C,
		stop:        make(chan struct{}),
		ticker:      ticker,
	}
	s.refreshJobs = s.runRefreshJobs
	return s
}

func (s *Scheduler) Start() {
	go func() {
		for {
			select {
			case <-s.refreshChan:
				s.cfg.logger.Info("scheduler: running refresh jobs")
				s.refreshJobs()
			case <-s.stop:
				s.cfg.logger.Info("scheduler: stopping")
				s.ticker.Stop()
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	// TODO: Wait for a running refresh pass to finish before returning.
	close(s.stop)
}

// runRefreshJobs refreshes every active user's list sequentially, so the
// total load on the weather source stays bounded no matter how many users
// have live sessions. Each run is tagged with a request id for correlation.
func (s *Scheduler) runRefreshJobs() {
	runID := uuid.NewString()
	users := s.cfg.engines.activeUsers()
	s.cfg.logger.Debug("scheduler: refreshing users", "run_id", runID, "users", len(users))

	for _, userID := range users {
		ctx := withUserID(context.Background(), userID)
		engine := s.cfg.engines.engineFor(userID)
		engine.RefreshAll(ctx)
	}

	s.cfg.logger.Debug("scheduler: refresh pass complete", "run_id", runID)
}
