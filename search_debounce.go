package main

import (
	"context"
	"sync"
	"time"
)

// This file implements the debounce that sits between a search box and the
// SuggestionService. Every keystroke restarts a quiet-period timer; only
// after the input has been stable for the full period does a search go out,
// and only the results of the most recent query are ever delivered. A
// response that arrives for a query the user has already typed past is
// dropped, and its in-flight request is cancelled.

const defaultSearchDebounce = 350 * time.Millisecond

// SuggestionDebouncer coalesces rapid query updates into at most one search
// per quiet period. Results (or the error of the newest search) are handed to
// the apply callback; apply is never invoked for a superseded query.
type SuggestionDebouncer struct {
	service SuggestionService
	delay   time.Duration
	apply   func(query string, suggestions []CitySuggestion, err error)

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

// NewSuggestionDebouncer creates a debouncer delivering results through
// apply. A non-positive delay falls back to the default quiet period.
func NewSuggestionDebouncer(service SuggestionService, delay time.Duration, apply func(string, []CitySuggestion, error)) *SuggestionDebouncer {
	if delay <= 0 {
		delay = defaultSearchDebounce
	}
	return &SuggestionDebouncer{
		service: service,
		delay:   delay,
		apply:   apply,
	}
}

// Update registers the latest query text. Any pending not-yet-dispatched
// search is cancelled, as is any search still in flight.
func (d *SuggestionDebouncer) Update(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.run(gen, query)
	})
}

// Cancel stops any pending or in-flight search without delivering results.
func (d *SuggestionDebouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *SuggestionDebouncer) run(gen uint64, query string) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.mu.Unlock()

	suggestions, err := d.service.Search(ctx, query)

	d.mu.Lock()
	stale := gen != d.gen
	if !stale {
		d.cancel = nil
	}
	d.mu.Unlock()
	cancel()

	if stale {
		return
	}
	d.apply(query, suggestions, err)
}
