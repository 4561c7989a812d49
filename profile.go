package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// This file implements the profile document store: one whole-document
// record per user, last write wins.

// ErrProfileNotFound is returned when a user has no profile document yet.
var ErrProfileNotFound = errors.New("no profile for user")

// ProfileStore reads and writes per-user profile documents.
type ProfileStore struct {
	db     dbQuerier
	logger *slog.Logger
}

// NewProfileStore creates a new ProfileStore.
func NewProfileStore(db dbQuerier, logger *slog.Logger) *ProfileStore {
	return &ProfileStore{
		db:     db,
		logger: logger,
	}
}

// Get fetches the profile document for the given user.
func (s *ProfileStore) Get(ctx context.Context, userID string) (UserProfile, error) {
	dbProfile, err := s.db.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserProfile{}, fmt.Errorf("user %q: %w", userID, ErrProfileNotFound)
		}
		return UserProfile{}, fmt.Errorf("database error when fetching profile: %w", err)
	}
	return databaseProfileToUserProfile(dbProfile), nil
}

// Save creates or fully overwrites the user's profile document.
func (s *ProfileStore) Save(ctx context.Context, profile UserProfile) error {
	if _, err := s.db.UpsertProfile(ctx, userProfileToUpsertProfileParams(profile)); err != nil {
		return fmt.Errorf("failed to save profile for %q: %w", profile.UID, err)
	}
	s.logger.Debug("profile saved", "uid", profile.UID)
	return nil
}
