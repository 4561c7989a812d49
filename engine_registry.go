package main

import (
	"sync"
)

// engineRegistry hands out one CitySyncEngine per user id, creating it on
// first use. Engines hold per-session view state only; the repository they
// share resolves the user from each request's context.
type engineRegistry struct {
	mu        sync.Mutex
	engines   map[string]*CitySyncEngine
	newEngine func() *CitySyncEngine
}

func newEngineRegistry(newEngine func() *CitySyncEngine) *engineRegistry {
	return &engineRegistry{
		engines:   make(map[string]*CitySyncEngine),
		newEngine: newEngine,
	}
}

// engineFor returns the engine bound to the given user, creating one if the
// user has none yet.
func (r *engineRegistry) engineFor(userID string) *CitySyncEngine {
	r.mu.Lock()
	defer r.mu.Unlock()
	engine, ok := r.engines[userID]
	if !ok {
		engine = r.newEngine()
		r.engines[userID] = engine
	}
	return engine
}

// activeUsers lists the ids of every user with a live engine.
func (r *engineRegistry) activeUsers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]string, 0, len(r.engines))
	for userID := range r.engines {
		users = append(users, userID)
	}
	return users
}
