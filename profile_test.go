package main

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/cwiatrak/cityweather/internal/database"
)

func TestProfileStoreGet(t *testing.T) {
	mockDB := &mockQuerier{t: t}
	mockDB.GetProfileFunc = func(ctx context.Context, uid string) (database.Profile, error) {
		return database.Profile{Uid: uid, FullName: "Ada Lovelace", HomeCity: "London", Email: "ada@example.com"}, nil
	}

	store := NewProfileStore(mockDB, newTestLogger())
	profile, err := store.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get() returned an unexpected error: %v", err)
	}
	if profile.UID != "user-1" || profile.FullName != "Ada Lovelace" || profile.HomeCity != "London" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestProfileStoreGet_NotFound(t *testing.T) {
	mockDB := &mockQuerier{t: t}
	mockDB.GetProfileFunc = func(ctx context.Context, uid string) (database.Profile, error) {
		return database.Profile{}, sql.ErrNoRows
	}

	store := NewProfileStore(mockDB, newTestLogger())
	_, err := store.Get(context.Background(), "user-1")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileStoreSave(t *testing.T) {
	mockDB := &mockQuerier{t: t}
	var saved database.UpsertProfileParams
	mockDB.UpsertProfileFunc = func(ctx context.Context, arg database.UpsertProfileParams) (database.Profile, error) {
		saved = arg
		return database.Profile{Uid: arg.Uid}, nil
	}

	store := NewProfileStore(mockDB, newTestLogger())
	profile := UserProfile{UID: "user-1", FullName: "Ada Lovelace", HomeCity: "London", Email: "ada@example.com"}
	if err := store.Save(context.Background(), profile); err != nil {
		t.Fatalf("Save() returned an unexpected error: %v", err)
	}
	if saved.Uid != "user-1" || saved.FullName != "Ada Lovelace" || saved.Email != "ada@example.com" {
		t.Errorf("unexpected saved params: %+v", saved)
	}
}

func TestProfileStoreSave_DBError(t *testing.T) {
	mockDB := &mockQuerier{t: t}
	mockDB.UpsertProfileFunc = func(ctx context.Context, arg database.UpsertProfileParams) (database.Profile, error) {
		return database.Profile{}, errors.New("db error")
	}

	store := NewProfileStore(mockDB, newTestLogger())
	if err := store.Save(context.Background(), UserProfile{UID: "user-1"}); err == nil {
		t.Fatal("Expected an error, got nil")
	}
}
